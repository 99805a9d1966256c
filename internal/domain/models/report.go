package models

import "time"

// ExtractedIntelligence is the artifact section of a final report,
// shaped for the external evaluation endpoint. The callback schema has
// no IFSC field, those codes count toward trigger totals but stay in
// session state only.
type ExtractedIntelligence struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// EngagementMetrics summarizes how effective the engagement was.
type EngagementMetrics struct {
	DurationSeconds     int      `json:"durationSeconds"`
	IntelligenceDensity float64  `json:"intelligenceDensity"`
	ScamTypes           []string `json:"scamTypes"`
	PersonaUsed         string   `json:"personaUsed"`
}

// Report is the final intelligence package emitted once per session.
type Report struct {
	SessionID              string                `json:"sessionId"`
	ScamDetected           bool                  `json:"scamDetected"`
	TotalMessagesExchanged int                   `json:"totalMessagesExchanged"`
	ExtractedIntelligence  ExtractedIntelligence `json:"extractedIntelligence"`
	EngagementMetrics      EngagementMetrics     `json:"engagementMetrics"`
	AgentNotes             string                `json:"agentNotes"`
	EmittedAt              time.Time             `json:"emittedAt"`
}
