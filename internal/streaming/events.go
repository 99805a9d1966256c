package streaming

import (
	"time"

	"github.com/google/uuid"

	"honeypot-lab/internal/domain/models"
)

// EventType represents the type of honeypot event
type EventType string

const (
	EventTypeSessionStarted EventType = "session_started"
	EventTypePhaseChanged   EventType = "phase_changed"
	EventTypeScamDetected   EventType = "scam_detected"
	EventTypeReportEmitted  EventType = "report_emitted"
)

// SessionEvent represents a real-time session lifecycle event
type SessionEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	SessionID    string       `json:"session_id"`
	Phase        models.Phase `json:"phase,omitempty"`
	Persona      string       `json:"persona,omitempty"`
	Confidence   float64      `json:"confidence,omitempty"`
	ScamTypes    []string     `json:"scam_types,omitempty"`
	MessageCount int          `json:"message_count,omitempty"`
	Artifacts    int          `json:"artifacts,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewSessionEvent creates a session event from current state
func NewSessionEvent(eventType EventType, state *models.SessionState) *SessionEvent {
	return &SessionEvent{
		ID:           uuid.New().String(),
		Type:         eventType,
		Timestamp:    time.Now(),
		SessionID:    state.SessionID,
		Phase:        state.Phase,
		Persona:      state.Persona,
		Confidence:   state.MaxConfidence,
		ScamTypes:    state.ScamTypes,
		MessageCount: state.MessageCount,
		Artifacts:    state.Artifacts.Total(),
	}
}

// ReportEvent announces that a final intelligence report was emitted
type ReportEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	SessionID           string   `json:"session_id"`
	ScamTypes           []string `json:"scam_types"`
	ArtifactCount       int      `json:"artifact_count"`
	MessageCount        int      `json:"message_count"`
	IntelligenceDensity float64  `json:"intelligence_density"`
	Delivered           bool     `json:"delivered"`
	Error               string   `json:"error,omitempty"`
}

// NewReportEvent creates a report event from an assembled report
func NewReportEvent(report *models.Report, delivered bool, errMsg string) *ReportEvent {
	intel := report.ExtractedIntelligence
	artifacts := len(intel.BankAccounts) + len(intel.UPIIDs) +
		len(intel.PhishingLinks) + len(intel.PhoneNumbers)

	return &ReportEvent{
		ID:                  uuid.New().String(),
		Type:                EventTypeReportEmitted,
		Timestamp:           time.Now(),
		SessionID:           report.SessionID,
		ScamTypes:           report.EngagementMetrics.ScamTypes,
		ArtifactCount:       artifacts,
		MessageCount:        report.TotalMessagesExchanged,
		IntelligenceDensity: report.EngagementMetrics.IntelligenceDensity,
		Delivered:           delivered,
		Error:               errMsg,
	}
}

// Subscription represents a client's subscription preferences
type Subscription struct {
	// Filter by event types (empty = all)
	Types []EventType `json:"types,omitempty"`

	// Filter by phases (empty = all)
	Phases []models.Phase `json:"phases,omitempty"`

	// Only events at or above this confidence
	MinConfidence float64 `json:"min_confidence,omitempty"`

	// Filter by scam types (empty = all)
	ScamTypes []string `json:"scam_types,omitempty"`
}

// Matches checks if an event matches the subscription filters
func (s *Subscription) Matches(event *SessionEvent) bool {
	if len(s.Types) > 0 {
		found := false
		for _, t := range s.Types {
			if t == event.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(s.Phases) > 0 {
		found := false
		for _, p := range s.Phases {
			if p == event.Phase {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if s.MinConfidence > 0 && event.Confidence < s.MinConfidence {
		return false
	}

	if len(s.ScamTypes) > 0 {
		found := false
		for _, t := range s.ScamTypes {
			for _, et := range event.ScamTypes {
				if t == et {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}

	return true
}
