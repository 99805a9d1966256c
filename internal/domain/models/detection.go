package models

// UrgencyLevel grades how much time pressure a scammer is applying.
type UrgencyLevel string

const (
	UrgencyLow    UrgencyLevel = "low"
	UrgencyMedium UrgencyLevel = "medium"
	UrgencyHigh   UrgencyLevel = "high"
)

// DetectionResult is the outcome of classifying a single inbound message.
type DetectionResult struct {
	IsScam     bool         `json:"is_scam"`
	Confidence float64      `json:"confidence"`
	ScamTypes  []string     `json:"scam_types"`
	Indicators []string     `json:"indicators"`
	Urgency    UrgencyLevel `json:"urgency"`
}
