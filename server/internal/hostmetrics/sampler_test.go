package hostmetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/obsidianstack/hostpulse/server/internal/health"
)

var start = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func fixed(v float64) func(context.Context) (float64, error) {
	return func(context.Context) (float64, error) { return v, nil }
}

func failing(context.Context) (float64, error) { return 0, errors.New("boom") }

func newFake(load, memPct, diskPct float64, elapsed time.Duration) *Sampler {
	s := New("/", start)
	s.now = func() time.Time { return start.Add(elapsed) }
	s.load1 = fixed(load)
	s.memUsed = fixed(memPct)
	s.diskUsed = func(context.Context, string) (float64, error) { return diskPct, nil }
	return s
}

func TestSample_FromReaders(t *testing.T) {
	s := newFake(1.25, 42.5, 61.3, 90*time.Second)

	got := s.Sample(context.Background())

	assert.Equal(t, health.Snapshot{
		UptimeSeconds:   90,
		Load1m:          1.25,
		MemUsedPercent:  42.5,
		DiskUsedPercent: 61.3,
	}, got)
}

func TestSample_NoRounding(t *testing.T) {
	s := newFake(2.123456, 90.04999, 85.00001, 0)
	got := s.Sample(context.Background())
	assert.Equal(t, 2.123456, got.Load1m)
	assert.Equal(t, 90.04999, got.MemUsedPercent)
	assert.Equal(t, 85.00001, got.DiskUsedPercent)
}

func TestSample_FailedReadingIsZero(t *testing.T) {
	s := newFake(3, 50, 50, time.Minute)
	s.load1 = failing
	s.diskUsed = func(context.Context, string) (float64, error) { return 0, errors.New("no mount") }

	got := s.Sample(context.Background())

	assert.Zero(t, got.Load1m)
	assert.Zero(t, got.DiskUsedPercent)
	assert.Equal(t, 50.0, got.MemUsedPercent)
	assert.Equal(t, int64(60), got.UptimeSeconds)
}

func TestSample_DiskPathPassedThrough(t *testing.T) {
	s := newFake(0, 0, 0, 0)
	s.diskPath = "/var/lib/data"
	var seen string
	s.diskUsed = func(_ context.Context, p string) (float64, error) {
		seen = p
		return 10, nil
	}

	s.Sample(context.Background())
	assert.Equal(t, "/var/lib/data", seen)
}

func TestSample_UptimeNeverNegative(t *testing.T) {
	s := newFake(0, 0, 0, -5*time.Second)
	assert.Zero(t, s.Sample(context.Background()).UptimeSeconds)
}

func TestReport_ScoresSample(t *testing.T) {
	s := newFake(2.5, 50, 50, time.Hour)

	r := s.Report(context.Background())

	assert.Equal(t, health.StatusWarning, r.Status)
	assert.Equal(t, 80, r.Score)
	assert.Equal(t, int64(3600), r.Checks.UptimeSeconds)
	assert.Equal(t, start.Add(time.Hour), r.Timestamp)
}

func TestNew_RealReaders(t *testing.T) {
	s := New("/", time.Now())
	got := s.Sample(context.Background())
	assert.GreaterOrEqual(t, got.MemUsedPercent, 0.0)
	assert.LessOrEqual(t, got.MemUsedPercent, 100.0)
	assert.GreaterOrEqual(t, got.DiskUsedPercent, 0.0)
}
