package health

import (
	"fmt"
	"time"
)

// Status is the coarse health category of a Report.
type Status string

// Status values returned by Evaluate.
const (
	StatusOK       Status = "ok"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// AllClear is the single reason reported when no penalty fired.
const AllClear = "All checks passed"

// maxScore is the score of a snapshot with no penalties.
const maxScore = 100

// Thresholds for the status table. They overlap with the penalty thresholds
// but are evaluated on their own.
const (
	criticalDiskPct = 92.0
	criticalMemPct  = 95.0
	criticalLoad1m  = 4.0
	criticalScore   = 50

	warningDiskPct = 85.0
	warningMemPct  = 90.0
	warningLoad1m  = 2.0
	warningScore   = 80
)

// Snapshot is a single point-in-time read of host resource metrics.
type Snapshot struct {
	UptimeSeconds   int64   `json:"uptime_seconds"`
	Load1m          float64 `json:"load_1m"`
	MemUsedPercent  float64 `json:"mem_used_percent"`
	DiskUsedPercent float64 `json:"disk_used_percent"`
}

// Report is the scored result for one Snapshot.
type Report struct {
	Status    Status    `json:"status"`
	Score     int       `json:"score"`
	Reasons   []string  `json:"reasons"`
	Checks    Snapshot  `json:"checks"`
	Timestamp time.Time `json:"timestamp"`
}

// penalty is one additive scoring rule.
type penalty struct {
	points  int
	applies func(Snapshot) bool
	reason  func(Snapshot) string
}

// penalties is evaluated in order; reasons keep this order (load, mem, disk).
var penalties = []penalty{
	{
		points:  20,
		applies: func(s Snapshot) bool { return s.Load1m > 2.0 },
		reason:  func(s Snapshot) string { return fmt.Sprintf("High 1m load average: %.2f", s.Load1m) },
	},
	{
		points:  20,
		applies: func(s Snapshot) bool { return s.MemUsedPercent > 90 },
		reason:  func(s Snapshot) string { return fmt.Sprintf("High memory usage: %.1f%%", s.MemUsedPercent) },
	},
	{
		points:  35,
		applies: func(s Snapshot) bool { return s.DiskUsedPercent > 85 },
		reason:  func(s Snapshot) string { return fmt.Sprintf("High disk usage: %.1f%%", s.DiskUsedPercent) },
	},
}

// Evaluate scores snap and returns its Report stamped with now.
//
// Evaluate has no side effects. Out-of-range metrics are not rejected; they
// flow through the comparisons as-is.
func Evaluate(snap Snapshot, now time.Time) Report {
	return evaluate(snap, now, penalties)
}

func evaluate(snap Snapshot, now time.Time, rules []penalty) Report {
	score := maxScore
	reasons := make([]string, 0, len(rules))

	for _, r := range rules {
		if !r.applies(snap) {
			continue
		}
		score -= r.points
		reasons = append(reasons, r.reason(snap))
	}

	status := statusFor(snap, score)

	if len(reasons) == 0 {
		reasons = append(reasons, AllClear)
	}
	if score < 0 {
		score = 0
	}

	return Report{
		Status:    status,
		Score:     score,
		Reasons:   reasons,
		Checks:    snap,
		Timestamp: now.UTC(),
	}
}

// statusFor applies the status table to the raw metrics and the unclamped score.
func statusFor(snap Snapshot, score int) Status {
	switch {
	case snap.DiskUsedPercent > criticalDiskPct ||
		snap.MemUsedPercent > criticalMemPct ||
		snap.Load1m > criticalLoad1m ||
		score <= criticalScore:
		return StatusCritical
	case snap.DiskUsedPercent > warningDiskPct ||
		snap.MemUsedPercent > warningMemPct ||
		snap.Load1m > warningLoad1m ||
		score <= warningScore:
		return StatusWarning
	default:
		return StatusOK
	}
}
