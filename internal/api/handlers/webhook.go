package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/grmartinica/Finanza-Zap/internal/api/middleware"
	"github.com/grmartinica/Finanza-Zap/internal/logger"
	"github.com/grmartinica/Finanza-Zap/internal/pipeline"
	"github.com/grmartinica/Finanza-Zap/internal/waha"
)

// WebhookHandler receives WhatsApp events from the WAHA gateway.
type WebhookHandler struct {
	pipeline *pipeline.Pipeline
	log      zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(p *pipeline.Pipeline, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		pipeline: p,
		log:      log,
	}
}

// Receive handles POST /api/webhook/whatsapp
//
// The gateway retries deliveries that do not return 2xx, so every event
// the service chose not to process is still acknowledged with 200. Only
// an internal failure while storing a recognized transaction returns
// 500.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var ev waha.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		// An undecodable body can never become processable, so there is
		// no point making the gateway retry it.
		log.Warn().Err(err).Msg("Ignoring undecodable webhook body")
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	tx, err := h.pipeline.HandleEvent(ctx, ev)
	if err != nil {
		log.Error().Err(err).Str("event", ev.Event).Msg("Failed to process webhook event")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store transaction")
		return
	}

	if tx == nil {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status":         "processed",
		"transaction_id": tx.ID,
	})
}
