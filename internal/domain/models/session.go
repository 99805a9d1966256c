package models

import (
	"time"
)

// Phase is the engagement lifecycle stage of a honeypot session.
type Phase string

const (
	PhaseInitiated     Phase = "INITIATED"
	PhaseScamSuspected Phase = "SCAM_SUSPECTED"
	PhaseEngaging      Phase = "ENGAGING"
	PhaseExtracting    Phase = "EXTRACTING"
	PhaseProlonging    Phase = "PROLONGING"
	PhaseSuspicious    Phase = "SUSPICIOUS"
	PhaseCompleted     Phase = "COMPLETED"
)

// Role identifies who authored a transcript entry.
type Role string

const (
	RoleScammer Role = "scammer"
	RoleAgent   Role = "agent"
)

// TranscriptEntry is one message in the conversation history.
type TranscriptEntry struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ArtifactBundle collects everything extracted from a scammer so far,
// deduplicated per type.
type ArtifactBundle struct {
	UPIIDs             []string `json:"upi_ids"`
	PhoneNumbers       []string `json:"phone_numbers"`
	PhishingLinks      []string `json:"phishing_links"`
	BankAccounts       []string `json:"bank_accounts"`
	IFSCCodes          []string `json:"ifsc_codes"`
	SuspiciousKeywords []string `json:"suspicious_keywords"`
}

// Merge folds newly extracted artifacts into the bundle. Duplicates are
// dropped so repeat mentions never inflate counts.
func (b *ArtifactBundle) Merge(other ArtifactBundle) {
	b.UPIIDs = mergeUnique(b.UPIIDs, other.UPIIDs)
	b.PhoneNumbers = mergeUnique(b.PhoneNumbers, other.PhoneNumbers)
	b.PhishingLinks = mergeUnique(b.PhishingLinks, other.PhishingLinks)
	b.BankAccounts = mergeUnique(b.BankAccounts, other.BankAccounts)
	b.IFSCCodes = mergeUnique(b.IFSCCodes, other.IFSCCodes)
	b.SuspiciousKeywords = mergeUnique(b.SuspiciousKeywords, other.SuspiciousKeywords)
}

// Total counts every artifact in the bundle except suspicious keywords,
// which are context rather than actionable intelligence.
func (b *ArtifactBundle) Total() int {
	return len(b.UPIIDs) + len(b.PhoneNumbers) + len(b.PhishingLinks) +
		len(b.BankAccounts) + len(b.IFSCCodes)
}

func mergeUnique(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, v := range existing {
		seen[v] = struct{}{}
	}
	for _, v := range incoming {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		existing = append(existing, v)
	}
	return existing
}

// SessionState is the full mutable state of one honeypot conversation.
type SessionState struct {
	SessionID      string            `json:"session_id"`
	Phase          Phase             `json:"phase"`
	Persona        string            `json:"persona"`
	ScamDetected   bool              `json:"scam_detected"`
	MaxConfidence  float64           `json:"max_confidence"`
	ScamTypes      []string          `json:"scam_types"`
	MessageCount   int               `json:"message_count"`
	Artifacts      ArtifactBundle    `json:"artifacts"`
	Transcript     []TranscriptEntry `json:"transcript"`
	ReportSent     bool              `json:"report_sent"`
	StartedAt      time.Time         `json:"started_at"`
	LastActivityAt time.Time         `json:"last_activity_at"`
}

// NewSessionState initializes a session in the INITIATED phase.
func NewSessionState(sessionID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID:      sessionID,
		Phase:          PhaseInitiated,
		StartedAt:      now,
		LastActivityAt: now,
	}
}

// RecordScamTypes accumulates distinct scam categories seen across the
// whole conversation.
func (s *SessionState) RecordScamTypes(types []string) {
	s.ScamTypes = mergeUnique(s.ScamTypes, types)
}

// Duration reports how long the session has been running.
func (s *SessionState) Duration(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}
