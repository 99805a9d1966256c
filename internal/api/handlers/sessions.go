package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"honeypot-lab/internal/domain/services"
	"honeypot-lab/pkg/logger"
)

// SessionsHandler handles session inspection endpoints
type SessionsHandler struct {
	honeypot *services.HoneypotService
	logger   *logger.Logger
}

// NewSessionsHandler creates a new SessionsHandler
func NewSessionsHandler(hp *services.HoneypotService, log *logger.Logger) *SessionsHandler {
	return &SessionsHandler{
		honeypot: hp,
		logger:   log.WithComponent("sessions-handler"),
	}
}

// List handles GET /api/v1/sessions
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions := h.honeypot.ListSessions(r.Context())

	response := struct {
		Sessions any `json:"sessions"`
		Count    int `json:"count"`
	}{
		Sessions: sessions,
		Count:    len(sessions),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	state, err := h.honeypot.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to get session")
		http.Error(w, "Lookup failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state)
}

// End handles POST /api/v1/sessions/{id}/end - closes the session and
// emits a final report when there is intelligence worth reporting
func (h *SessionsHandler) End(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	state, err := h.honeypot.EndSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to end session")
		http.Error(w, "End failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("session_id", sessionID).
		Int("messages", state.MessageCount).
		Int("artifacts", state.Artifacts.Total()).
		Msg("session ended")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state)
}

// Delete handles DELETE /api/v1/sessions/{id}
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	if err := h.honeypot.DeleteSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to delete session")
		http.Error(w, "Delete failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
