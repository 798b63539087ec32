package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Probe status values reported by the health endpoints.
const (
	healthStatusOK            = "ok"
	healthStatusNotReady      = "not ready"
	healthStatusShuttingDown  = "shutting down"
	healthStatusNotConfigured = "not configured"
)

// Readiness check names.
const (
	checkReady    = "ready"
	checkShutdown = "shutdown"
	checkDonetick = "donetick"
)

// HealthChecker serves the Kubernetes probe endpoints. Liveness only
// confirms the process is running; readiness additionally requires the
// shared Donetick client to be wired and the server not to be
// draining.
type HealthChecker struct {
	// ready indicates whether the server should receive traffic
	ready atomic.Bool
	// serverContext holds the Donetick client the readiness checks probe
	serverContext *ServerContext
	// startTime anchors the uptime reported by the detailed endpoint
	startTime time.Time
}

// NewHealthChecker creates a HealthChecker that starts out ready.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state. Flipped to false while the server
// drains during shutdown.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the server is ready to receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse is the JSON body of the liveness and readiness
// endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse extends the readiness checks with uptime and
// the Donetick instance the server talks to.
type DetailedHealthResponse struct {
	Status   string            `json:"status"`
	Uptime   string            `json:"uptime"`
	Donetick string            `json:"donetick,omitempty"`
	Checks   map[string]string `json:"checks"`
}

// runChecks evaluates every readiness condition and returns the
// per-check results plus the overall verdict.
func (h *HealthChecker) runChecks() (map[string]string, bool) {
	checks := map[string]string{
		checkReady:    healthStatusOK,
		checkShutdown: healthStatusOK,
		checkDonetick: healthStatusOK,
	}
	ok := true

	if !h.ready.Load() {
		checks[checkReady] = healthStatusNotReady
		ok = false
	}
	if h.serverContext != nil && h.serverContext.IsShutdown() {
		checks[checkShutdown] = healthStatusShuttingDown
		ok = false
	}
	// The client validates its base URL and token on construction, so a
	// non-nil client means upstream configuration is complete.
	if h.serverContext == nil || h.serverContext.Client() == nil {
		checks[checkDonetick] = healthStatusNotConfigured
		ok = false
	}

	return checks, ok
}

// LivenessHandler serves /healthz. A live process always answers ok;
// restarts are for crashes, not for upstream trouble.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		_ = json.NewEncoder(w).Encode(HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler serves /readyz. It reports 503 with the failing
// checks when the server is draining, marked not ready, or missing its
// Donetick client.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		checks, ok := h.runChecks()

		response := HealthResponse{Checks: checks}
		if ok {
			response.Status = healthStatusOK
			w.WriteHeader(http.StatusOK)
		} else {
			response.Status = healthStatusNotReady
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}

// DetailedHealthHandler serves /healthz/detailed: the readiness checks
// plus uptime and the configured Donetick base URL.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		checks, ok := h.runChecks()

		response := DetailedHealthResponse{
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
			Checks: checks,
		}
		if h.serverContext != nil {
			if client := h.serverContext.Client(); client != nil {
				response.Donetick = client.BaseURL()
			}
		}

		if ok {
			response.Status = healthStatusOK
			w.WriteHeader(http.StatusOK)
		} else {
			response.Status = healthStatusNotReady
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}

// RegisterHealthEndpoints registers the probe endpoints on the given
// mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}
