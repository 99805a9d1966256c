package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"honeypot-lab/internal/domain/services"
	"honeypot-lab/pkg/logger"
)

// HoneypotHandler handles the conversation endpoints
type HoneypotHandler struct {
	honeypot *services.HoneypotService
	logger   *logger.Logger
}

// NewHoneypotHandler creates a new HoneypotHandler
func NewHoneypotHandler(hp *services.HoneypotService, log *logger.Logger) *HoneypotHandler {
	return &HoneypotHandler{
		honeypot: hp,
		logger:   log.WithComponent("honeypot-handler"),
	}
}

// MessageRequest is the request body for an inbound scammer message
type MessageRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// Message handles POST /api/v1/honeypot/message - runs one message
// through the detection and engagement pipeline
func (h *HoneypotHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Message == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	// A missing session ID starts a fresh session
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	result, err := h.honeypot.HandleMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", req.SessionID).Msg("failed to process message")
		http.Error(w, "Processing failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("session_id", result.SessionID).
		Bool("is_scam", result.Detection.IsScam).
		Float64("confidence", result.Detection.Confidence).
		Str("phase", string(result.Phase)).
		Msg("message processed")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Stats handles GET /api/v1/stats - aggregate honeypot statistics
func (h *HoneypotHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.honeypot.GetStats(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
