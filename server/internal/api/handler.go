package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/obsidianstack/hostpulse/server/internal/config"
	"github.com/obsidianstack/hostpulse/server/internal/health"
	"github.com/obsidianstack/hostpulse/server/internal/hostinfo"
	"github.com/obsidianstack/hostpulse/server/internal/summarizer"
)

// maxExplainBody caps the POST /api/ai/health-explain request body.
const maxExplainBody = 64 << 10

// Fixed client-facing error messages.
const (
	msgMethodNotAllowed = "method not allowed"
	msgPayloadTooLarge  = "health or status payload exceeds 2000 characters"
	msgUpstreamFailed   = "summarizer request failed"
)

// MetricsSource returns a fresh host metrics snapshot.
type MetricsSource interface {
	Sample(ctx context.Context) health.Snapshot
}

// Explainer produces a narrative for a health report.
type Explainer interface {
	Explain(ctx context.Context, in summarizer.Input) (string, error)
}

// Handler serves the JSON API. Every request samples the host afresh; the
// handler keeps no state between requests.
type Handler struct {
	cfg       *config.Config
	src       MetricsSource
	explainer Explainer
	now       func() time.Time
	mux       *http.ServeMux
}

// Option customises a Handler.
type Option func(*Handler)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// New creates a Handler and registers all routes.
func New(cfg *config.Config, src MetricsSource, ex Explainer, opts ...Option) http.Handler {
	h := &Handler{
		cfg:       cfg,
		src:       src,
		explainer: ex,
		now:       time.Now,
		mux:       http.NewServeMux(),
	}
	for _, o := range opts {
		o(h)
	}

	h.mux.HandleFunc("/", h.root)
	h.mux.HandleFunc("/api/status", h.status)
	h.mux.HandleFunc("/api/system", h.system)
	h.mux.HandleFunc("/api/health", h.health)
	h.mux.HandleFunc("/api/ai/health-explain", h.explain)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// root returns GET /: liveness greeting.
func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}
	jsonResp(w, http.StatusOK, RootResponse{Status: "ok", Message: h.cfg.Server.Greeting})
}

// status returns GET /api/status: service identity.
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}
	jsonResp(w, http.StatusOK, hostinfo.Status(h.cfg, h.now()))
}

// system returns GET /api/system: identity plus raw metrics and runtime.
func (h *Handler) system(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}
	st := hostinfo.Status(h.cfg, h.now())
	jsonResp(w, http.StatusOK, SystemResponse{
		Status:     st.Status,
		Service:    st.Service,
		Host:       st.Host,
		UTC:        st.UTC,
		AppVersion: st.Version,
		System:     h.src.Sample(r.Context()),
		Runtime:    hostinfo.Runtime(),
	})
}

// health returns GET /api/health: the scored report.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}
	jsonResp(w, http.StatusOK, h.report(r.Context()))
}

// explain serves GET and POST /api/ai/health-explain.
//
// POST explains the caller-supplied {health, status}; GET explains the
// current host. Without a credential POST replies 200 and GET replies 503,
// both carrying the placeholder text.
func (h *Handler) explain(w http.ResponseWriter, r *http.Request) {
	var (
		in          summarizer.Input
		unavailable int
	)
	switch r.Method {
	case http.MethodPost:
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxExplainBody))
		if err := dec.Decode(&in); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				jsonErr(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			jsonErr(w, http.StatusBadRequest, "invalid request body")
			return
		}
		unavailable = http.StatusOK
	case http.MethodGet:
		in = summarizer.Input{
			Health: h.report(r.Context()),
			Status: hostinfo.Status(h.cfg, h.now()),
		}
		unavailable = http.StatusServiceUnavailable
	default:
		jsonErr(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Summarizer.Timeout)
	defer cancel()

	reply, err := h.explainer.Explain(ctx, in)
	switch {
	case err == nil:
		jsonResp(w, http.StatusOK, ExplainResponse{Reply: reply})
	case errors.Is(err, summarizer.ErrNotConfigured):
		jsonResp(w, unavailable, ExplainResponse{Reply: summarizer.Placeholder})
	case errors.Is(err, summarizer.ErrPayloadTooLarge):
		slog.Warn("api: explain input rejected",
			"request_id", RequestIDFrom(r.Context()), "err", err)
		jsonErr(w, http.StatusRequestEntityTooLarge, msgPayloadTooLarge)
	default:
		slog.Error("api: summarizer call failed",
			"request_id", RequestIDFrom(r.Context()), "err", err)
		jsonErr(w, http.StatusBadGateway, msgUpstreamFailed)
	}
}

// --- helpers ----------------------------------------------------------------

func (h *Handler) report(ctx context.Context) health.Report {
	return health.Evaluate(h.src.Sample(ctx), h.now())
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
