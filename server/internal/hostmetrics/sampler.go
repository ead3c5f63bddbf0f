// Package hostmetrics reads the host resource metrics that feed the health
// scorer. Readings come from gopsutil; uptime is the process uptime.
package hostmetrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/obsidianstack/hostpulse/server/internal/health"
)

// Sampler takes point-in-time snapshots of load, memory and disk usage.
// It holds no mutable state and is safe for concurrent use.
type Sampler struct {
	diskPath  string
	startedAt time.Time
	now       func() time.Time

	// Readers are fields so tests can replace the gopsutil calls.
	load1    func(ctx context.Context) (float64, error)
	memUsed  func(ctx context.Context) (float64, error)
	diskUsed func(ctx context.Context, path string) (float64, error)
}

// New returns a Sampler for the mount point at diskPath. Uptime is measured
// from startedAt.
func New(diskPath string, startedAt time.Time) *Sampler {
	return &Sampler{
		diskPath:  diskPath,
		startedAt: startedAt,
		now:       time.Now,
		load1:     readLoad1,
		memUsed:   readMemUsed,
		diskUsed:  readDiskUsed,
	}
}

// Sample reads every metric once. A metric that cannot be read is logged and
// reported as zero; Sample itself never fails.
func (s *Sampler) Sample(ctx context.Context) health.Snapshot {
	snap := health.Snapshot{
		UptimeSeconds: int64(s.now().Sub(s.startedAt).Seconds()),
	}
	if snap.UptimeSeconds < 0 {
		snap.UptimeSeconds = 0
	}

	if v, err := s.load1(ctx); err != nil {
		slog.Warn("hostmetrics: load average unavailable", "err", err)
	} else {
		snap.Load1m = v
	}

	if v, err := s.memUsed(ctx); err != nil {
		slog.Warn("hostmetrics: memory usage unavailable", "err", err)
	} else {
		snap.MemUsedPercent = v
	}

	if v, err := s.diskUsed(ctx, s.diskPath); err != nil {
		slog.Warn("hostmetrics: disk usage unavailable", "path", s.diskPath, "err", err)
	} else {
		snap.DiskUsedPercent = v
	}

	return snap
}

// Report samples the host and scores the result.
func (s *Sampler) Report(ctx context.Context) health.Report {
	return health.Evaluate(s.Sample(ctx), s.now())
}

func readLoad1(ctx context.Context) (float64, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return avg.Load1, nil
}

func readMemUsed(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

func readDiskUsed(ctx context.Context, path string) (float64, error) {
	u, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, err
	}
	return u.UsedPercent, nil
}
