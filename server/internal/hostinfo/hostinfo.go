// Package hostinfo reports service identity and runtime environment details.
package hostinfo

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/obsidianstack/hostpulse/server/internal/config"
)

// StatusReport identifies the running service instance.
type StatusReport struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Host    string `json:"host"`
	UTC     string `json:"utc"`
	Version string `json:"version"`
}

// RuntimeInfo describes the process environment.
type RuntimeInfo struct {
	Container      bool   `json:"container"`
	RuntimeVersion string `json:"runtime_version"`
}

// unknownHost is reported when the hostname cannot be read.
const unknownHost = "unknown"

// Status builds the identity report for cfg at instant now. The UTC field
// keeps sub-second precision.
func Status(cfg *config.Config, now time.Time) StatusReport {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = unknownHost
	}
	return StatusReport{
		Status:  "ok",
		Service: cfg.Server.ServiceName,
		Host:    host,
		UTC:     now.UTC().Format(time.RFC3339Nano),
		Version: cfg.Server.AppVersion,
	}
}

// Runtime reports whether the process runs in a container and which Go
// runtime it was built with.
func Runtime() RuntimeInfo {
	return RuntimeInfo{
		Container:      defaultProbe.inContainer(),
		RuntimeVersion: runtime.Version(),
	}
}

// containerProbe locates the files consulted for container detection.
type containerProbe struct {
	dockerEnv string
	cgroup    string
}

var defaultProbe = containerProbe{
	dockerEnv: "/.dockerenv",
	cgroup:    "/proc/1/cgroup",
}

var cgroupMarkers = []string{"docker", "kubepods", "containerd", "libpod"}

func (p containerProbe) inContainer() bool {
	if _, err := os.Stat(p.dockerEnv); err == nil {
		return true
	}
	data, err := os.ReadFile(p.cgroup)
	if err != nil {
		return false
	}
	text := string(data)
	for _, m := range cgroupMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
