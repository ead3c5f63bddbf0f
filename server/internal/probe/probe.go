// Package probe exposes the health report through the standard gRPC health
// checking protocol (grpc.health.v1.Health).
package probe

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/obsidianstack/hostpulse/server/internal/health"
)

// Reporter samples and scores the host.
type Reporter interface {
	Report(ctx context.Context) health.Report
}

// Monitor keeps the gRPC serving status in step with the health report.
// Both the configured service name and the empty (server-wide) name are kept
// in sync.
type Monitor struct {
	reporter Reporter
	service  string
	interval time.Duration
	hs       *grpchealth.Server
}

// NewMonitor returns a Monitor for service. Until the first Update only the
// server-wide entry exists.
func NewMonitor(rep Reporter, service string, interval time.Duration) *Monitor {
	return &Monitor{
		reporter: rep,
		service:  service,
		interval: interval,
		hs:       grpchealth.NewServer(),
	}
}

// Register adds the health service to s.
func (m *Monitor) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, m.hs)
}

// Server returns the underlying health server.
func (m *Monitor) Server() healthpb.HealthServer {
	return m.hs
}

// Update scores the host once and publishes the resulting serving status.
func (m *Monitor) Update(ctx context.Context) health.Status {
	r := m.reporter.Report(ctx)
	st := ServingStatus(r.Status)

	m.hs.SetServingStatus(m.service, st)
	m.hs.SetServingStatus("", st)

	if st != healthpb.HealthCheckResponse_SERVING {
		slog.Warn("probe: reporting not serving", "status", r.Status, "score", r.Score, "reasons", r.Reasons)
	}
	return r.Status
}

// Run updates immediately and then every interval until ctx is cancelled.
// On exit all services are marked NOT_SERVING.
func (m *Monitor) Run(ctx context.Context) {
	m.Update(ctx)

	t := time.NewTicker(m.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			m.hs.Shutdown()
			return
		case <-t.C:
			m.Update(ctx)
		}
	}
}

// ServingStatus maps a health status onto the gRPC health protocol. Only
// critical hosts stop serving.
func ServingStatus(s health.Status) healthpb.HealthCheckResponse_ServingStatus {
	if s == health.StatusCritical {
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}
