package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/infrastructure/database/repository"
	"honeypot-lab/internal/streaming"
	"honeypot-lab/pkg/logger"
)

// ReporterConfig contains configuration for the reporter
type ReporterConfig struct {
	CallbackURL  string
	Secret       string
	MinMessages  int
	MinArtifacts int
	Timeout      time.Duration
	Workers      int
	QueueSize    int
	MaxRetries   int
	RetryBackoff time.Duration
}

// DefaultReporterConfig returns sensible defaults
func DefaultReporterConfig() ReporterConfig {
	return ReporterConfig{
		MinMessages:  8,
		MinArtifacts: 2,
		Timeout:      30 * time.Second,
		Workers:      2,
		QueueSize:    100,
		MaxRetries:   3,
		RetryBackoff: 2 * time.Second,
	}
}

// DeliveryLocker claims a session's report delivery so multiple
// instances restored from the same snapshots never double-send.
type DeliveryLocker interface {
	AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, lockKey string) error
}

// deliveryLockTTL outlives the whole retry schedule, a crashed holder
// frees the claim on expiry.
const deliveryLockTTL = 10 * time.Minute

// Reporter assembles final intelligence reports and delivers them to
// the external callback endpoint. Delivery runs on background workers
// so the message path never blocks on the callback.
type Reporter struct {
	config     ReporterConfig
	httpClient *http.Client
	logger     *logger.Logger

	reports   *repository.ReportRepository // nil disables archiving
	publisher *streaming.NATSPublisher     // nil disables events
	locks     DeliveryLocker               // nil disables cross-instance dedup

	queue  chan *models.Report
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewReporter creates a reporter and starts its delivery workers
func NewReporter(cfg ReporterConfig, reports *repository.ReportRepository, publisher *streaming.NATSPublisher, locks DeliveryLocker, log *logger.Logger) *Reporter {
	if cfg.MinMessages <= 0 {
		cfg.MinMessages = 8
	}
	if cfg.MinArtifacts <= 0 {
		cfg.MinArtifacts = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 2 * time.Second
	}

	r := &Reporter{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:    log.WithComponent("reporter"),
		reports:   reports,
		publisher: publisher,
		locks:     locks,
		queue:     make(chan *models.Report, cfg.QueueSize),
		stopCh:    make(chan struct{}),
	}

	for i := 0; i < cfg.Workers; i++ {
		r.wg.Add(1)
		go r.deliveryWorker(i)
	}
	r.logger.Info().Int("workers", cfg.Workers).Msg("Report delivery workers started")

	return r
}

// Stop drains the workers and shuts the reporter down
func (r *Reporter) Stop() {
	close(r.stopCh)
	r.wg.Wait()
	r.logger.Info().Msg("Reporter stopped")
}

// ShouldTrigger decides whether a session has earned its final report.
// The decision is a one-way latch, once a report went out the session
// never reports again.
func (r *Reporter) ShouldTrigger(state *models.SessionState) bool {
	if state.ReportSent {
		return false
	}
	if state.MessageCount < r.config.MinMessages {
		return false
	}

	artifacts := state.Artifacts.Total()
	if artifacts < r.config.MinArtifacts {
		return false
	}

	// Significant intelligence gathered
	if artifacts >= 5 && state.MessageCount >= 12 {
		return true
	}

	// Conversation winding down
	if state.MessageCount >= 15 {
		return true
	}

	return false
}

// Assemble builds the final report payload from session state
func (r *Reporter) Assemble(state *models.SessionState, now time.Time) *models.Report {
	density := 0.0
	if state.MessageCount > 0 {
		density = float64(state.Artifacts.Total()) / float64(state.MessageCount)
		density = math.Round(density*100) / 100
	}

	return &models.Report{
		SessionID:              state.SessionID,
		ScamDetected:           state.ScamDetected,
		TotalMessagesExchanged: state.MessageCount,
		ExtractedIntelligence: models.ExtractedIntelligence{
			BankAccounts:       emptyIfNil(state.Artifacts.BankAccounts),
			UPIIDs:             emptyIfNil(state.Artifacts.UPIIDs),
			PhishingLinks:      emptyIfNil(state.Artifacts.PhishingLinks),
			PhoneNumbers:       emptyIfNil(state.Artifacts.PhoneNumbers),
			SuspiciousKeywords: emptyIfNil(state.Artifacts.SuspiciousKeywords),
		},
		EngagementMetrics: models.EngagementMetrics{
			DurationSeconds:     int(state.Duration(now).Seconds()),
			IntelligenceDensity: density,
			ScamTypes:           emptyIfNil(state.ScamTypes),
			PersonaUsed:         state.Persona,
		},
		AgentNotes: r.buildAgentNotes(state),
		EmittedAt:  now,
	}
}

// Dispatch queues a report for asynchronous delivery
func (r *Reporter) Dispatch(report *models.Report) {
	select {
	case r.queue <- report:
		r.logger.Debug().Str("session_id", report.SessionID).Msg("Report queued for delivery")
	default:
		r.logger.Warn().Str("session_id", report.SessionID).Msg("Report queue full, dropping delivery")
	}
}

func (r *Reporter) buildAgentNotes(state *models.SessionState) string {
	scamTypes := "unknown"
	if len(state.ScamTypes) > 0 {
		scamTypes = strings.Join(state.ScamTypes, ", ")
	}

	return fmt.Sprintf(
		"Persona '%s' engaged with suspected %s scam. Successfully extracted %d intelligence items over %d message exchanges. Scam confidence: %.0f%%.",
		state.Persona, scamTypes, state.Artifacts.Total(), state.MessageCount, state.MaxConfidence*100,
	)
}

func (r *Reporter) deliveryWorker(id int) {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopCh:
			r.logger.Debug().Int("worker", id).Msg("Delivery worker stopping")
			return
		case report := <-r.queue:
			r.processDelivery(report)
		}
	}
}

func (r *Reporter) processDelivery(report *models.Report) {
	if !r.claimDelivery(report.SessionID) {
		return
	}

	var deliveryErr string
	delivered := false

	if r.config.CallbackURL == "" {
		deliveryErr = "no callback URL configured"
	} else {
		err := r.deliverWithRetry(report)
		if err != nil {
			deliveryErr = err.Error()
			r.logger.Error().Err(err).Str("session_id", report.SessionID).Msg("Report delivery failed permanently")
		} else {
			delivered = true
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	// Free the claim on failure so a later dispatch can retry. A
	// successful claim stays until the lock TTL expires.
	if !delivered && r.locks != nil {
		if err := r.locks.ReleaseLock(ctx, report.SessionID); err != nil {
			r.logger.Warn().Err(err).Str("session_id", report.SessionID).Msg("Failed to release delivery lock")
		}
	}

	if r.reports != nil {
		if _, err := r.reports.Save(ctx, report, delivered, deliveryErr); err != nil {
			r.logger.Error().Err(err).Str("session_id", report.SessionID).Msg("Failed to archive report")
		}
	}

	if r.publisher != nil && r.publisher.IsConnected() {
		event := streaming.NewReportEvent(report, delivered, deliveryErr)
		if err := r.publisher.PublishReportEvent(ctx, event); err != nil {
			r.logger.Warn().Err(err).Str("session_id", report.SessionID).Msg("Failed to publish report event")
		}
	}
}

// claimDelivery takes the cross-instance lock for a session's report.
// Lock errors fail open, a duplicate beats a lost report.
func (r *Reporter) claimDelivery(sessionID string) bool {
	if r.locks == nil {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	acquired, err := r.locks.AcquireLock(ctx, sessionID, deliveryLockTTL)
	if err != nil {
		r.logger.Warn().Err(err).Str("session_id", sessionID).Msg("Delivery lock check failed, proceeding")
		return true
	}
	if !acquired {
		r.logger.Info().Str("session_id", sessionID).Msg("Report already claimed by another instance")
		return false
	}
	return true
}

func (r *Reporter) deliverWithRetry(report *models.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	var lastErr error
	delay := r.config.RetryBackoff

	for attempt := 1; attempt <= r.config.MaxRetries; attempt++ {
		lastErr = r.deliver(payload, report.SessionID, attempt)
		if lastErr == nil {
			return nil
		}

		r.logger.Warn().
			Err(lastErr).
			Str("session_id", report.SessionID).
			Int("attempt", attempt).
			Msg("Report delivery attempt failed")

		if attempt == r.config.MaxRetries {
			break
		}

		select {
		case <-r.stopCh:
			return fmt.Errorf("reporter stopping: %w", lastErr)
		case <-time.After(delay):
			delay *= 2
		}
	}

	return lastErr
}

func (r *Reporter) deliver(payload []byte, sessionID string, attempt int) error {
	// Each attempt gets a fresh deadline so a hung attempt can't
	// consume the budget of its retries
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.config.CallbackURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Honeypot-Reporter/1.0")
	req.Header.Set("X-Report-Session", sessionID)
	req.Header.Set("X-Report-Timestamp", fmt.Sprintf("%d", time.Now().Unix()))
	req.Header.Set("X-Report-Attempt", fmt.Sprintf("%d", attempt))

	if r.config.Secret != "" {
		req.Header.Set("X-Report-Signature", "sha256="+r.signPayload(payload))
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delivery request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	r.logger.Info().
		Str("session_id", sessionID).
		Int("status", resp.StatusCode).
		Msg("Report delivered successfully")

	return nil
}

// signPayload creates an HMAC signature for the payload
func (r *Reporter) signPayload(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(r.config.Secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
