package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadSettle is how long the file must stay quiet before it is reloaded.
// Editors and os.WriteFile emit several events per save (truncate, write,
// rename); they collapse into one reload.
const reloadSettle = 100 * time.Millisecond

// Watch monitors opts.ConfigPath and calls onChange with the freshly loaded
// Config once a burst of writes has settled. It runs until ctx is cancelled.
//
// onChange is not called when the file content is unchanged since the last
// successful load, or when the new content fails to parse or validate; in the
// latter case the error is logged and the caller keeps its previous Config.
func Watch(ctx context.Context, opts Options, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(opts.ConfigPath); err != nil {
		return err
	}

	// Content at watch start counts as already applied.
	last, _ := os.ReadFile(opts.ConfigPath)

	settle := time.NewTimer(reloadSettle)
	if !settle.Stop() {
		<-settle.C
	}
	defer settle.Stop()

	slog.Info("config: watching for changes", "path", opts.ConfigPath)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Atomic saves show up as Create, not Write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			settle.Reset(reloadSettle)

		case <-settle.C:
			// The inode may have been replaced.
			_ = watcher.Add(opts.ConfigPath)

			data, err := os.ReadFile(opts.ConfigPath)
			if err != nil {
				slog.Error("config: reload failed, keeping previous config",
					"path", opts.ConfigPath, "err", err)
				continue
			}
			if bytes.Equal(data, last) {
				slog.Debug("config: content unchanged, skipping reload", "path", opts.ConfigPath)
				continue
			}

			cfg, err := Load(opts)
			if err != nil {
				slog.Error("config: reload failed, keeping previous config",
					"path", opts.ConfigPath, "err", err)
				continue
			}

			last = data
			slog.Info("config: reloaded", "path", opts.ConfigPath)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}
