package services

import (
	"context"
	"time"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/domain/services/ai"
	"honeypot-lab/internal/streaming"
	"honeypot-lab/pkg/logger"
)

// neutralReply is sent when a message doesn't look like a scam. The
// agent stays polite and uncommitted until detection fires.
const neutralReply = "Thank you for your message."

// MessageResult is the outcome of processing one inbound message
type MessageResult struct {
	SessionID      string                 `json:"session_id"`
	Reply          string                 `json:"reply"`
	Detection      models.DetectionResult `json:"detection"`
	Phase          models.Phase           `json:"phase"`
	MessageCount   int                    `json:"message_count"`
	ShouldContinue bool                   `json:"should_continue"`
	State          *models.SessionState   `json:"-"`
}

// HoneypotService orchestrates the full message path: classify, select
// persona, extract artifacts, advance the engagement phase, generate a
// reply and emit the final report when the session has earned one.
type HoneypotService struct {
	logger     *logger.Logger
	detector   *ai.ScamDetector
	extractor  *ai.IntelExtractor
	personas   *ai.PersonaSelector
	generator  ai.ReplyGenerator // nil falls back to canned persona lines
	engagement *EngagementPolicy
	sessions   *SessionStore
	reporter   *Reporter
	publisher  *streaming.NATSPublisher // nil disables events
}

// NewHoneypotService wires the honeypot pipeline together
func NewHoneypotService(
	detector *ai.ScamDetector,
	extractor *ai.IntelExtractor,
	personas *ai.PersonaSelector,
	generator ai.ReplyGenerator,
	engagement *EngagementPolicy,
	sessions *SessionStore,
	reporter *Reporter,
	publisher *streaming.NATSPublisher,
	log *logger.Logger,
) *HoneypotService {
	return &HoneypotService{
		logger:     log.WithComponent("honeypot"),
		detector:   detector,
		extractor:  extractor,
		personas:   personas,
		generator:  generator,
		engagement: engagement,
		sessions:   sessions,
		reporter:   reporter,
		publisher:  publisher,
	}
}

// HandleMessage processes one scammer message end to end. Messages for
// the same session are serialized by the session store, so counters and
// phase transitions never race.
func (s *HoneypotService) HandleMessage(ctx context.Context, sessionID, message string) (*MessageResult, error) {
	now := time.Now()
	detection := s.detector.Classify(message)

	var (
		sessionCreated bool
		scamJustFound  bool
		phaseChanged   bool
		triggerReport  bool
		reply          string
	)

	snapshot, err := s.sessions.Update(ctx, sessionID, func(state *models.SessionState) error {
		sessionCreated = state.MessageCount == 0 && state.Persona == ""

		if sessionCreated {
			scamType := ""
			if len(detection.ScamTypes) > 0 {
				scamType = detection.ScamTypes[0]
			}
			persona := s.personas.Select(scamType, message)
			state.Persona = persona.Name
		}

		state.MessageCount++
		state.LastActivityAt = now
		state.Transcript = append(state.Transcript, models.TranscriptEntry{
			Role:      models.RoleScammer,
			Content:   message,
			Timestamp: now,
		})

		if detection.IsScam {
			scamJustFound = !state.ScamDetected
			state.ScamDetected = true
			if detection.Confidence > state.MaxConfidence {
				state.MaxConfidence = detection.Confidence
			}
			state.RecordScamTypes(detection.ScamTypes)

			// Artifacts are only harvested once intent is established
			extracted := s.extractor.Extract(message)
			state.Artifacts.Merge(extracted)
		}

		phaseBefore := state.Phase
		s.engagement.AdvancePhase(state, message, detection.Confidence)
		phaseChanged = state.Phase != phaseBefore

		reply = s.composeReply(ctx, state, detection, message)
		state.Transcript = append(state.Transcript, models.TranscriptEntry{
			Role:      models.RoleAgent,
			Content:   reply,
			Timestamp: now,
		})

		if s.reporter != nil && s.reporter.ShouldTrigger(state) {
			state.ReportSent = true
			triggerReport = true
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if triggerReport {
		s.reporter.Dispatch(s.reporter.Assemble(snapshot, now))
	}

	s.publishEvents(ctx, snapshot, sessionCreated, scamJustFound, phaseChanged)

	return &MessageResult{
		SessionID:      sessionID,
		Reply:          reply,
		Detection:      detection,
		Phase:          snapshot.Phase,
		MessageCount:   snapshot.MessageCount,
		ShouldContinue: s.engagement.ShouldContinue(snapshot, now),
		State:          snapshot,
	}, nil
}

// composeReply generates the agent's answer. Neutral messages get a
// polite acknowledgement, scam messages get an in-character reply.
func (s *HoneypotService) composeReply(ctx context.Context, state *models.SessionState, detection models.DetectionResult, message string) string {
	if !detection.IsScam && !state.ScamDetected {
		return neutralReply
	}

	persona, ok := s.personas.ByName(state.Persona)
	if !ok {
		return neutralReply
	}

	if s.generator == nil {
		return ai.FallbackReply(persona)
	}

	// Exclude the entry just appended for the current message
	transcript := state.Transcript
	if n := len(transcript); n > 0 {
		transcript = transcript[:n-1]
	}

	reply, err := s.generator.GenerateReply(ctx, persona, transcript, message)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", state.SessionID).Msg("Reply generation failed, using fallback")
		return ai.FallbackReply(persona)
	}
	return reply
}

func (s *HoneypotService) publishEvents(ctx context.Context, state *models.SessionState, created, scamJustFound, phaseChanged bool) {
	if s.publisher == nil || !s.publisher.IsConnected() {
		return
	}

	if created {
		event := streaming.NewSessionEvent(streaming.EventTypeSessionStarted, state)
		if err := s.publisher.PublishSessionEvent(ctx, event); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish session started event")
		}
	}

	if scamJustFound {
		event := streaming.NewSessionEvent(streaming.EventTypeScamDetected, state)
		if err := s.publisher.PublishSessionEvent(ctx, event); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish scam detected event")
		}
	}

	if phaseChanged {
		event := streaming.NewSessionEvent(streaming.EventTypePhaseChanged, state)
		if err := s.publisher.PublishSessionEvent(ctx, event); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish phase changed event")
		}
	}
}

// GetSession returns the current state of a session
func (s *HoneypotService) GetSession(ctx context.Context, sessionID string) (*models.SessionState, error) {
	return s.sessions.Get(ctx, sessionID)
}

// ListSessions returns all active sessions
func (s *HoneypotService) ListSessions(ctx context.Context) []*models.SessionState {
	return s.sessions.List(ctx)
}

// EndSession marks a session COMPLETED and emits its report if it
// qualifies and hasn't reported yet.
func (s *HoneypotService) EndSession(ctx context.Context, sessionID string) (*models.SessionState, error) {
	now := time.Now()
	var triggerReport bool

	// Update would create a fresh session for an unknown ID
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	snapshot, err := s.sessions.Update(ctx, sessionID, func(state *models.SessionState) error {
		state.Phase = models.PhaseCompleted

		// Termination flush: a session being closed out delivers
		// whatever intelligence it holds, even below the trigger
		// minimums that gate mid-conversation reports.
		if s.reporter != nil && !state.ReportSent &&
			state.MessageCount >= 1 && state.Artifacts.Total() > 0 && state.ScamDetected {
			state.ReportSent = true
			triggerReport = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if triggerReport {
		s.reporter.Dispatch(s.reporter.Assemble(snapshot, now))
	}

	return snapshot, nil
}

// DeleteSession removes a session entirely
func (s *HoneypotService) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// Stats summarizes current honeypot activity
type Stats struct {
	ActiveSessions int     `json:"active_sessions"`
	ScamSessions   int     `json:"scam_sessions"`
	TotalArtifacts int     `json:"total_artifacts"`
	ReportsEmitted int     `json:"reports_emitted"`
	ScamThreshold  float64 `json:"scam_threshold"`
}

// GetStats aggregates statistics across active sessions
func (s *HoneypotService) GetStats(ctx context.Context) *Stats {
	stats := &Stats{
		ActiveSessions: 0,
		ScamThreshold:  s.detector.Threshold(),
	}

	for _, state := range s.sessions.List(ctx) {
		stats.ActiveSessions++
		if state.ScamDetected {
			stats.ScamSessions++
		}
		stats.TotalArtifacts += state.Artifacts.Total()
		if state.ReportSent {
			stats.ReportsEmitted++
		}
	}

	return stats
}
