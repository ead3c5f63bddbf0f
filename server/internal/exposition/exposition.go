// Package exposition renders the current health report in the Prometheus text
// exposition format for GET /metrics.
package exposition

import (
	"context"
	"log/slog"
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/obsidianstack/hostpulse/server/internal/health"
)

// Metric names.
const (
	MetricUptime       = "hostpulse_uptime_seconds"
	MetricLoad1        = "hostpulse_load1"
	MetricMemoryUsed   = "hostpulse_memory_used_percent"
	MetricDiskUsed     = "hostpulse_disk_used_percent"
	MetricHealthScore  = "hostpulse_health_score"
	MetricHealthStatus = "hostpulse_health_status"
)

var statuses = []health.Status{health.StatusOK, health.StatusWarning, health.StatusCritical}

// Reporter samples and scores the host.
type Reporter interface {
	Report(ctx context.Context) health.Report
}

// Handler serves GET /metrics. Every scrape samples the host afresh.
func Handler(rep Reporter) http.Handler {
	format := expfmt.NewFormat(expfmt.TypeTextPlain)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", string(format))
		enc := expfmt.NewEncoder(w, format)
		for _, mf := range Families(rep.Report(r.Context())) {
			if err := enc.Encode(mf); err != nil {
				slog.Warn("exposition: encode failed", "metric", mf.GetName(), "err", err)
				return
			}
		}
	})
}

// Families converts r into metric families, one gauge family per metric.
func Families(r health.Report) []*dto.MetricFamily {
	status := &dto.MetricFamily{
		Name: proto.String(MetricHealthStatus),
		Help: proto.String("Current health status, 1 for the active status and 0 otherwise."),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	for _, s := range statuses {
		v := 0.0
		if r.Status == s {
			v = 1
		}
		status.Metric = append(status.Metric, &dto.Metric{
			Label: []*dto.LabelPair{{Name: proto.String("status"), Value: proto.String(string(s))}},
			Gauge: &dto.Gauge{Value: proto.Float64(v)},
		})
	}

	return []*dto.MetricFamily{
		gauge(MetricUptime, "Seconds since the process started.", float64(r.Checks.UptimeSeconds)),
		gauge(MetricLoad1, "One-minute load average.", r.Checks.Load1m),
		gauge(MetricMemoryUsed, "Virtual memory used, in percent.", r.Checks.MemUsedPercent),
		gauge(MetricDiskUsed, "Disk space used on the sampled mount, in percent.", r.Checks.DiskUsedPercent),
		gauge(MetricHealthScore, "Health score from 0 to 100.", float64(r.Score)),
		status,
	}
}

func gauge(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(v)}}},
	}
}
