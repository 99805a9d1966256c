package handlers

import (
	"honeypot-lab/internal/domain/services"
	"honeypot-lab/internal/domain/services/ai"
	"honeypot-lab/internal/infrastructure/cache"
	"honeypot-lab/internal/infrastructure/database"
	"honeypot-lab/internal/infrastructure/database/repository"
	"honeypot-lab/internal/streaming"
	"honeypot-lab/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health   *HealthHandler
	Honeypot *HoneypotHandler
	Sessions *SessionsHandler
	Patterns *PatternsHandler
	Reports  *ReportsHandler
	Events   *EventsHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Honeypot  *services.HoneypotService
	Patterns  *ai.ScamPatternDB
	Personas  *ai.PersonaSelector
	Cache     *cache.RedisCache
	DB        *database.PostgresDB
	Reports   *repository.ReportRepository
	Publisher *streaming.NATSPublisher
	Logger    *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Cache, deps.DB, deps.Logger),
		Honeypot: NewHoneypotHandler(deps.Honeypot, deps.Logger),
		Sessions: NewSessionsHandler(deps.Honeypot, deps.Logger),
		Patterns: NewPatternsHandler(deps.Patterns, deps.Personas, deps.Logger),
		Reports:  NewReportsHandler(deps.Reports, deps.Logger),
		Events:   NewEventsHandler(deps.Publisher, deps.Logger),
	}
}
