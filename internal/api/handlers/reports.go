package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"honeypot-lab/internal/infrastructure/database/repository"
	"honeypot-lab/pkg/logger"
)

// ReportsHandler serves archived intelligence reports
type ReportsHandler struct {
	reports *repository.ReportRepository
	logger  *logger.Logger
}

// NewReportsHandler creates a new ReportsHandler
func NewReportsHandler(repo *repository.ReportRepository, log *logger.Logger) *ReportsHandler {
	return &ReportsHandler{
		reports: repo,
		logger:  log.WithComponent("reports-handler"),
	}
}

// List handles GET /api/v1/admin/reports
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		http.Error(w, "Report archive not configured", http.StatusServiceUnavailable)
		return
	}

	limit := 50
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	reports, total, err := h.reports.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list reports")
		http.Error(w, "List failed", http.StatusInternalServerError)
		return
	}

	response := struct {
		Reports []*repository.ArchivedReport `json:"reports"`
		Total   int64                        `json:"total"`
		Limit   int                          `json:"limit"`
		Offset  int                          `json:"offset"`
	}{
		Reports: reports,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetBySession handles GET /api/v1/admin/reports/{session_id}
func (h *ReportsHandler) GetBySession(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		http.Error(w, "Report archive not configured", http.StatusServiceUnavailable)
		return
	}

	sessionID := chi.URLParam(r, "session_id")

	report, err := h.reports.GetBySessionID(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			http.Error(w, "Report not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to get report")
		http.Error(w, "Lookup failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
