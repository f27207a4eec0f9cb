package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/grmartinica/Finanza-Zap/internal/api/middleware"
	"github.com/grmartinica/Finanza-Zap/internal/status"
)

const probeTimeout = 5 * time.Second

// StatusHandler reports the health of the service dependencies.
type StatusHandler struct {
	probes []status.Probe
	log    zerolog.Logger
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(probes []status.Probe, log zerolog.Logger) *StatusHandler {
	return &StatusHandler{
		probes: probes,
		log:    log,
	}
}

// Status handles GET /api/status
//
// The top-level flags report live connectivity, the env block reports
// which integrations are configured at all. A dependency that is not
// configured is reported as disconnected without being probed.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	states := status.Check(r.Context(), probeTimeout, h.probes)

	env := make(map[string]bool, len(states))
	resp := make(map[string]interface{}, len(states)+1)
	for name, st := range states {
		resp[name] = st.Connected
		env[name] = st.Configured
	}
	resp["env"] = env

	middleware.WriteJSON(w, http.StatusOK, resp)
}

// Health handles GET /api/health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
