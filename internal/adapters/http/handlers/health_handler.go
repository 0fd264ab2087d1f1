package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// DefaultReadinessTimeout bounds a readiness probe when the handler is built
// without WithReadinessTimeout.
const DefaultReadinessTimeout = 2 * time.Second

const (
	statusOK       = "ok"
	statusFailing  = "failing"
	statusReady    = "ready"
	statusNotReady = "not_ready"
)

// checkResult is the readiness state of one backend.
type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// readinessResponse is the body of GET /health/ready.
type readinessResponse struct {
	Status string                 `json:"status"`
	Checks map[string]checkResult `json:"checks"`
}

// HealthHandler serves the liveness and readiness probes. Readiness reports
// on the storage backends and notifier clients the strategy table connected
// to at startup.
type HealthHandler struct {
	registry ports.HealthRegistry
	timeout  time.Duration
}

// HealthOption configures a HealthHandler.
type HealthOption func(*HealthHandler)

// WithReadinessTimeout sets how long a readiness probe waits for backends.
func WithReadinessTimeout(d time.Duration) HealthOption {
	return func(h *HealthHandler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// NewHealthHandler creates a HealthHandler over registry.
func NewHealthHandler(registry ports.HealthRegistry, opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{registry: registry, timeout: DefaultReadinessTimeout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": statusOK})
}

// Readiness handles GET /health/ready. It answers 503 when any backend check
// fails or does not finish within the probe timeout.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results := h.registry.CheckAll(ctx)

	resp := readinessResponse{
		Status: statusReady,
		Checks: make(map[string]checkResult, len(results)),
	}
	for name, err := range results {
		if err != nil {
			resp.Checks[name] = checkResult{Status: statusFailing, Error: err.Error()}
			resp.Status = statusNotReady
			continue
		}
		resp.Checks[name] = checkResult{Status: statusOK}
	}

	code := http.StatusOK
	if resp.Status != statusReady {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, r, code, resp)
}
