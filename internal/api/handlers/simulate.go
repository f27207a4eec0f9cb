package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/grmartinica/Finanza-Zap/internal/api/middleware"
	"github.com/grmartinica/Finanza-Zap/internal/domain"
	"github.com/grmartinica/Finanza-Zap/internal/logger"
	"github.com/grmartinica/Finanza-Zap/internal/pipeline"
)

// SimulateHandler runs the extraction pipeline for text submitted from
// the dashboard, without a WhatsApp message behind it.
type SimulateHandler struct {
	pipeline *pipeline.Pipeline
	log      zerolog.Logger
}

// NewSimulateHandler creates a new simulate handler.
func NewSimulateHandler(p *pipeline.Pipeline, log zerolog.Logger) *SimulateHandler {
	return &SimulateHandler{
		pipeline: p,
		log:      log,
	}
}

type simulateResponse struct {
	Success     bool                `json:"success"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// Simulate handles POST /api/simulate
func (h *SimulateHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "text is required")
		return
	}

	tx, res, err := h.pipeline.ProcessText(ctx, req.Text, pipeline.SourceSimulator)
	if err != nil {
		// Extraction succeeded but the transaction could not be stored.
		// The dashboard shows this inline, so it is a payload error, not
		// an HTTP one.
		log.Error().Err(err).Msg("Simulation failed to store transaction")
		middleware.WriteJSON(w, http.StatusOK, simulateResponse{
			Success: false,
			Error:   "failed to store transaction",
		})
		return
	}

	switch res.Outcome {
	case pipeline.OutcomeMatched:
		middleware.WriteJSON(w, http.StatusOK, simulateResponse{
			Success:     true,
			Transaction: tx,
		})
	case pipeline.OutcomeNotFinancial:
		middleware.WriteJSON(w, http.StatusOK, simulateResponse{
			Success: false,
			Error:   "no transaction found in the message",
		})
	default:
		middleware.WriteJSON(w, http.StatusOK, simulateResponse{
			Success: false,
			Error:   "extraction service unavailable",
		})
	}
}
