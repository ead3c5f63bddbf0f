package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/obsidianstack/hostpulse/server/internal/api"
	"github.com/obsidianstack/hostpulse/server/internal/config"
	"github.com/obsidianstack/hostpulse/server/internal/exposition"
	"github.com/obsidianstack/hostpulse/server/internal/hostmetrics"
	"github.com/obsidianstack/hostpulse/server/internal/probe"
	"github.com/obsidianstack/hostpulse/server/internal/summarizer"
	"github.com/obsidianstack/hostpulse/server/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before environment overrides; missing is fine")
	flag.Parse()

	var level slog.LevelVar
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: &level}))
	slog.SetDefault(logger)

	slog.Info("hostpulse starting", "config", *configPath)

	opts := config.Options{ConfigPath: *configPath, EnvFile: *envFile}
	cfg, err := config.Load(opts)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	level.Set(parseLevel(cfg.Log.Level))

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"grpc_port", cfg.Server.GRPCPort,
		"service", cfg.Server.ServiceName,
		"version", cfg.Server.AppVersion,
		"disk_path", cfg.Server.DiskPath,
		"model", cfg.Summarizer.Model,
		"summarizer_configured", cfg.Summarizer.HasAPIKey(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Only the log level is applied live; everything else needs a restart.
	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, opts, func(next *config.Config) {
				level.Set(parseLevel(next.Log.Level))
				slog.Info("log level updated", "level", next.Log.Level)
			})
			if err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	sampler := hostmetrics.New(cfg.Server.DiskPath, cfg.StartedAt)
	explainer := summarizer.New(cfg.Summarizer)

	hub := ws.New(sampler, cfg.Stream.Interval)
	go hub.Run(ctx)

	var grpcSrv *grpc.Server
	if cfg.Server.GRPCPort != 0 {
		monitor := probe.NewMonitor(sampler, cfg.Server.ServiceName, cfg.Probe.Interval)
		grpcSrv = grpc.NewServer()
		monitor.Register(grpcSrv)
		go monitor.Run(ctx)

		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
		if err != nil {
			slog.Error("failed to listen on gRPC port",
				"port", cfg.Server.GRPCPort, "err", err)
			os.Exit(1)
		}

		go func() {
			slog.Info("gRPC health listening", "port", cfg.Server.GRPCPort)
			if err := grpcSrv.Serve(lis); err != nil {
				slog.Error("gRPC server stopped", "err", err)
			}
		}()
	}

	httpMux := http.NewServeMux()
	httpMux.Handle("/", api.New(cfg, sampler, explainer))
	httpMux.Handle("/metrics", exposition.Handler(sampler))
	httpMux.Handle("/ws/health", hub)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           api.Chain(httpMux, api.RequestID, api.Logging, api.Recovery),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("hostpulse shutting down")

	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
}

// parseLevel maps a validated config level onto slog.
func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
