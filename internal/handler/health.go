package handler

import (
	"context"
	"net/http"
)

// Pinger reports reachability of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnChecker reports connectivity of the event relay.
type ConnChecker interface {
	IsConnected() bool
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	volatile Pinger
	durable  Pinger
	events   ConnChecker
}

// NewHealthHandler creates a new health handler. events is nil when the
// event relay is not configured.
func NewHealthHandler(volatile, durable Pinger, events ConnChecker) *HealthHandler {
	return &HealthHandler{
		volatile: volatile,
		durable:  durable,
		events:   events,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.volatile != nil {
		if err := h.volatile.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"reason": "volatile store unreachable",
			})
			return
		}
	}

	if h.durable != nil {
		if err := h.durable.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"reason": "durable store unreachable",
			})
			return
		}
	}

	if h.events != nil && !h.events.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "event relay disconnected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
