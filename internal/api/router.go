package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"honeypot-lab/internal/api/handlers"
	apimiddleware "honeypot-lab/internal/api/middleware"
	"honeypot-lab/internal/config"
	"honeypot-lab/internal/infrastructure/cache"
	"honeypot-lab/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	cache    *cache.RedisCache
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, c *cache.RedisCache, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		cache:    c,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware. The request timeout is applied per group so the
	// event stream can outlive it.
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Rate limiting
	if r.config.RateLimit.Enabled && r.cache != nil {
		router.Use(apimiddleware.RateLimiter(r.cache, r.config.RateLimit))
	}

	// Public routes
	router.Group(func(pub chi.Router) {
		pub.Use(middleware.Timeout(60 * time.Second))
		pub.Get("/health", r.handlers.Health.Check)
		pub.Get("/ready", r.handlers.Health.Ready)
	})

	// API v1 routes (authenticated)
	router.Route("/api/v1", func(api chi.Router) {
		api.Use(apimiddleware.APIKeyAuth(r.config.Auth.APIKey))

		// Live event feed, held open until the client disconnects
		api.Get("/events", r.handlers.Events.Stream)

		api.Group(func(api chi.Router) {
			api.Use(middleware.Timeout(60 * time.Second))

			// Conversation pipeline
			api.Route("/honeypot", func(hp chi.Router) {
				hp.Post("/message", r.handlers.Honeypot.Message)
			})

			// Session inspection
			api.Route("/sessions", func(sessions chi.Router) {
				sessions.Get("/", r.handlers.Sessions.List)
				sessions.Get("/{id}", r.handlers.Sessions.Get)
				sessions.Post("/{id}/end", r.handlers.Sessions.End)
				sessions.Delete("/{id}", r.handlers.Sessions.Delete)
			})

			// Detection patterns and persona catalog
			api.Route("/patterns", func(patterns chi.Router) {
				patterns.Get("/", r.handlers.Patterns.ListPatterns)
				patterns.Put("/{category}", r.handlers.Patterns.UpdatePattern)
				patterns.Post("/{category}/enabled", r.handlers.Patterns.SetPatternEnabled)
			})
			api.Get("/personas", r.handlers.Patterns.ListPersonas)

			// Stats
			api.Get("/stats", r.handlers.Honeypot.Stats)

			// Admin endpoints
			api.Route("/admin", func(admin chi.Router) {
				admin.Use(apimiddleware.AdminAuth(r.config.Auth.AdminToken))

				admin.Get("/reports", r.handlers.Reports.List)
				admin.Get("/reports/{session_id}", r.handlers.Reports.GetBySession)
			})
		})
	})

	return router
}
