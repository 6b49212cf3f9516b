package handler

import (
	"net/http"

	"github.com/cojovi/cmac-chat-module-win86/internal/state"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	state *state.Container
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(st *state.Container) *HealthHandler {
	return &HealthHandler{state: st}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Ready handles GET /ready. The process is ready as soon as it serves;
// upstream connectivity is reported but never gates readiness.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ready",
		"all_connected": h.state.AllConnected(),
	})
}
