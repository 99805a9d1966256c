package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"honeypot-lab/internal/domain/services/ai"
	"honeypot-lab/pkg/logger"
)

// PatternsHandler exposes the scam pattern database and persona catalog
type PatternsHandler struct {
	patterns *ai.ScamPatternDB
	personas *ai.PersonaSelector
	logger   *logger.Logger
}

// NewPatternsHandler creates a new PatternsHandler
func NewPatternsHandler(db *ai.ScamPatternDB, personas *ai.PersonaSelector, log *logger.Logger) *PatternsHandler {
	return &PatternsHandler{
		patterns: db,
		personas: personas,
		logger:   log.WithComponent("patterns-handler"),
	}
}

// ListPatterns handles GET /api/v1/patterns
func (h *PatternsHandler) ListPatterns(w http.ResponseWriter, r *http.Request) {
	patterns := h.patterns.GetAllPatterns()

	response := struct {
		Patterns []ai.ScamPattern `json:"patterns"`
		Count    int              `json:"count"`
	}{
		Patterns: patterns,
		Count:    len(patterns),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// UpdatePatternRequest is the request body for a pattern update
type UpdatePatternRequest struct {
	Keywords []string `json:"keywords"`
	Weight   float64  `json:"weight"`
}

// UpdatePattern handles PUT /api/v1/patterns/{category}
func (h *PatternsHandler) UpdatePattern(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	var req UpdatePatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Keywords) == 0 {
		http.Error(w, "At least one keyword is required", http.StatusBadRequest)
		return
	}

	if req.Weight <= 0 || req.Weight > 1 {
		http.Error(w, "Weight must be in (0, 1]", http.StatusBadRequest)
		return
	}

	if !h.patterns.UpdatePattern(category, req.Keywords, req.Weight) {
		http.Error(w, "Pattern not found", http.StatusNotFound)
		return
	}

	h.logger.Info().
		Str("category", category).
		Int("keywords", len(req.Keywords)).
		Float64("weight", req.Weight).
		Msg("pattern updated")

	w.WriteHeader(http.StatusNoContent)
}

// SetPatternEnabled handles POST /api/v1/patterns/{category}/enabled
func (h *PatternsHandler) SetPatternEnabled(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !h.patterns.SetPatternEnabled(category, req.Enabled) {
		http.Error(w, "Pattern not found", http.StatusNotFound)
		return
	}

	h.logger.Info().Str("category", category).Bool("enabled", req.Enabled).Msg("pattern toggled")

	w.WriteHeader(http.StatusNoContent)
}

// ListPersonas handles GET /api/v1/personas
func (h *PatternsHandler) ListPersonas(w http.ResponseWriter, r *http.Request) {
	personas := h.personas.All()

	response := struct {
		Personas any `json:"personas"`
		Count    int `json:"count"`
	}{
		Personas: personas,
		Count:    len(personas),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
