package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/cipherledger/internal/adapter/http/dto"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

type namedCheck struct {
	name  string
	check Check
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	checks  []namedCheck
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler with no dependency checks.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{timeout: 5 * time.Second}
}

// WithCheck adds a readiness check. A nil check is ignored, which lets
// callers pass optional dependencies unconditionally.
func (h *HealthHandler) WithCheck(name string, check Check) *HealthHandler {
	if check != nil {
		h.checks = append(h.checks, namedCheck{name: name, check: check})
	}
	return h
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// Readiness returns 200 if every dependency check passes.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := dto.HealthResponse{Status: "ready", Details: map[string]string{}}
	status := http.StatusOK

	for _, c := range h.checks {
		if err := c.check(ctx); err != nil {
			resp.Details[c.name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Details[c.name] = "ok"
	}

	writeJSON(w, status, resp)
}
