package opsserver

import (
	"net/http"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// HealthChecker provides health and readiness checks.
type HealthChecker struct {
	startTime time.Time
	ready     atomic.Bool
}

// NewHealthChecker creates a new HealthChecker.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
	}
}

// SetReady marks the application as ready to serve traffic. The client sets
// this once the first bearer token has been published.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Message string `json:"message,omitempty"`
}

// Health returns an HTTP handler for liveness checks. Always returns 200 OK
// if the application is running.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status: "healthy",
			Uptime: time.Since(h.startTime).String(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// Ready returns an HTTP handler for readiness checks. Returns 200 OK if
// ready, 503 Service Unavailable if not.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready.Load() {
			resp := HealthResponse{
				Status:  "not_ready",
				Message: "waiting for first token refresh",
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(resp)
			return
		}

		resp := HealthResponse{
			Status: "ready",
			Uptime: time.Since(h.startTime).String(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
