package api

import (
	"github.com/obsidianstack/hostpulse/server/internal/health"
	"github.com/obsidianstack/hostpulse/server/internal/hostinfo"
)

// RootResponse is the JSON body for GET /.
type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SystemResponse is the JSON body for GET /api/system.
type SystemResponse struct {
	Status     string               `json:"status"`
	Service    string               `json:"service"`
	Host       string               `json:"host"`
	UTC        string               `json:"utc"`
	AppVersion string               `json:"app_version"`
	System     health.Snapshot      `json:"system"`
	Runtime    hostinfo.RuntimeInfo `json:"runtime"`
}

// ExplainResponse is the JSON body for /api/ai/health-explain.
type ExplainResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}
