package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"honeypot-lab/internal/api"
	"honeypot-lab/internal/api/handlers"
	"honeypot-lab/internal/config"
	"honeypot-lab/internal/domain/services"
	"honeypot-lab/internal/domain/services/ai"
	"honeypot-lab/internal/infrastructure/cache"
	"honeypot-lab/internal/infrastructure/database"
	"honeypot-lab/internal/infrastructure/database/repository"
	"honeypot-lab/internal/streaming"
	"honeypot-lab/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting Honeypot Lab")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize infrastructure
	db, redisCache := initInfrastructure(ctx, cfg, log)
	defer func() {
		if db != nil {
			db.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	// Report archive (optional, requires database)
	var reportRepo *repository.ReportRepository
	if db != nil {
		reportRepo = repository.NewReportRepository(db.Pool())
		log.Info().Msg("report archive initialized with database")
	} else {
		log.Warn().Msg("running without database - report archive unavailable")
	}

	// NATS event streaming (optional)
	var natsPublisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		var err error
		natsPublisher, err = streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing without event streaming")
		} else {
			defer natsPublisher.Close()
			log.Info().Str("url", cfg.NATS.URL).Msg("connected to NATS")
		}
	}

	// Detection pipeline
	patternDB := ai.NewScamPatternDB(log)
	detector := ai.NewScamDetector(log, patternDB, cfg.Detection.ScamThreshold)
	extractor := ai.NewIntelExtractor(log)
	personas := ai.NewPersonaSelector(log)

	// Persona reply generator (optional, falls back to canned lines)
	var generator ai.ReplyGenerator
	if cfg.Generator.Enabled {
		generator = ai.NewLLMReplyGenerator(ai.GeneratorConfig{
			BaseURL:     cfg.Generator.BaseURL,
			APIKey:      cfg.Generator.APIKey,
			Model:       cfg.Generator.Model,
			Temperature: cfg.Generator.Temperature,
			MaxTokens:   cfg.Generator.MaxTokens,
			Timeout:     cfg.Generator.Timeout,
		}, log)
		log.Info().Str("model", cfg.Generator.Model).Msg("reply generator initialized")
	} else {
		log.Info().Msg("reply generator disabled, using persona fallback lines")
	}

	// Engagement policy and session store. A nil *RedisCache must not
	// reach the interface fields or the nil checks stop working.
	engagement := services.NewEngagementPolicy(log, cfg.Engagement.MaxMessages, cfg.Engagement.SilenceTimeout)
	var snapshots services.SessionSnapshotter
	var deliveryLocks services.DeliveryLocker
	if redisCache != nil {
		snapshots = redisCache
		deliveryLocks = redisCache
	}
	sessionStore := services.NewSessionStore(snapshots, log, cfg.Engagement.SessionTTL)
	defer sessionStore.Stop()

	// Report assembly and delivery
	reporter := services.NewReporter(services.ReporterConfig{
		CallbackURL:  cfg.Callback.URL,
		Secret:       cfg.Callback.Secret,
		MinMessages:  cfg.Callback.MinMessages,
		MinArtifacts: cfg.Callback.MinArtifacts,
		Timeout:      cfg.Callback.Timeout,
		Workers:      cfg.Callback.Workers,
		MaxRetries:   cfg.Callback.MaxRetries,
	}, reportRepo, natsPublisher, deliveryLocks, log)
	defer reporter.Stop()

	// Orchestrator
	honeypot := services.NewHoneypotService(
		detector, extractor, personas, generator,
		engagement, sessionStore, reporter, natsPublisher, log,
	)
	log.Info().
		Float64("threshold", detector.Threshold()).
		Int("max_messages", cfg.Engagement.MaxMessages).
		Msg("honeypot service initialized")

	// Initialize handlers
	deps := handlers.Dependencies{
		Honeypot:  honeypot,
		Patterns:  patternDB,
		Personas:  personas,
		Cache:     redisCache,
		DB:        db,
		Reports:   reportRepo,
		Publisher: natsPublisher,
		Logger:    log,
	}
	h := handlers.NewHandlers(deps)

	// Create router
	router := api.NewRouter(*cfg, h, redisCache, log)
	httpHandler := router.Setup()

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	// Cancel context to stop background services
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}

// initInfrastructure initializes database and cache connections. Both
// are optional, the honeypot runs fully in memory without them.
func initInfrastructure(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.PostgresDB, *cache.RedisCache) {
	var db *database.PostgresDB
	if cfg.Database.Enabled {
		var err error
		db, err = database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing without database")
			db = nil
		}
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		var err error
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache")
			redisCache = nil
		}
	}

	return db, redisCache
}
