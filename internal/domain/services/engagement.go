package services

import (
	"strings"
	"time"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/pkg/logger"
)

// EngagementPolicy drives the conversation lifecycle: which phase a
// session is in and whether the agent should keep talking.
type EngagementPolicy struct {
	logger         *logger.Logger
	maxMessages    int
	silenceTimeout time.Duration
}

// Phrases that suggest the scammer is probing whether they are talking
// to a bot. Multiword on purpose, single words like "ai" false-positive
// on ordinary vocabulary.
var suspicionPhrases = []string{
	"are you real", "are you a bot", "you are a bot", "is this a bot",
	"are you ai", "you sound like a bot", "fake account", "testing you",
}

// NewEngagementPolicy creates a policy. Zero values fall back to the
// defaults of 20 messages and a 2 hour silence window.
func NewEngagementPolicy(log *logger.Logger, maxMessages int, silenceTimeout time.Duration) *EngagementPolicy {
	if maxMessages <= 0 {
		maxMessages = 20
	}
	if silenceTimeout <= 0 {
		silenceTimeout = 2 * time.Hour
	}
	return &EngagementPolicy{
		logger:         log.WithComponent("engagement"),
		maxMessages:    maxMessages,
		silenceTimeout: silenceTimeout,
	}
}

// AdvancePhase moves the session through the engagement lifecycle based
// on the latest message and detection confidence. Transitions are
// one-way except for the SUSPICIOUS override, which can fire from any
// non-terminal phase.
func (p *EngagementPolicy) AdvancePhase(state *models.SessionState, latestMessage string, confidence float64) {
	previous := state.Phase

	switch state.Phase {
	case models.PhaseInitiated:
		if confidence > 0.6 {
			state.Phase = models.PhaseScamSuspected
		}
	case models.PhaseScamSuspected:
		if state.MessageCount >= 3 {
			state.Phase = models.PhaseEngaging
		}
	case models.PhaseEngaging:
		if state.Artifacts.Total() > 0 {
			state.Phase = models.PhaseExtracting
		}
	case models.PhaseExtracting:
		if state.MessageCount >= 10 {
			state.Phase = models.PhaseProlonging
		}
	}

	if state.Phase != models.PhaseCompleted && containsSuspicionPhrase(latestMessage) {
		state.Phase = models.PhaseSuspicious
	}

	if state.Phase != previous {
		p.logger.Info().
			Str("session_id", state.SessionID).
			Str("from", string(previous)).
			Str("to", string(state.Phase)).
			Msg("Engagement phase changed")
	}
}

// ShouldContinue decides whether the agent keeps the conversation
// going. False means the session should wind down.
func (p *EngagementPolicy) ShouldContinue(state *models.SessionState, now time.Time) bool {
	if state.MessageCount > p.maxMessages {
		return false
	}

	if state.Phase == models.PhaseCompleted {
		return false
	}

	// Enough intelligence over a reasonable conversation
	if state.Artifacts.Total() >= 3 && state.MessageCount >= 10 {
		return false
	}

	if now.Sub(state.LastActivityAt) > p.silenceTimeout {
		return false
	}

	return true
}

func containsSuspicionPhrase(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range suspicionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
