package ai

import (
	"math"
	"regexp"
	"strings"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/pkg/logger"
)

// ScamDetector classifies inbound messages for scam intent using the
// keyword pattern database plus structural heuristics.
type ScamDetector struct {
	logger    *logger.Logger
	patterns  *ScamPatternDB
	threshold float64
}

var (
	urlRegex       = regexp.MustCompile(`https?://[^\s]+`)
	upiHintRegex   = regexp.MustCompile(`(?i)\b[\w.-]+@(?:paytm|ybl|okhdfcbank|okicici|okaxis|oksbi|apl|ibl|axl)\b`)
	phoneHintRegex = regexp.MustCompile(`\b[6-9]\d{9}\b|\+91[\s-]?\d{10}`)
)

var suspiciousTLDs = []string{".xyz", ".top", ".click", ".link", ".club", ".info"}

var urlShorteners = []string{"bit.ly", "tinyurl", "t.co", "goo.gl"}

var highUrgencyWords = []string{
	"immediately", "urgent", "now", "today", "within 24",
	"last chance", "expire", "block", "suspend",
}

var mediumUrgencyWords = []string{"soon", "quick", "fast", "asap", "hurry"}

// NewScamDetector creates a detector with the given decision threshold.
// A threshold of 0 falls back to the default 0.60.
func NewScamDetector(log *logger.Logger, patterns *ScamPatternDB, threshold float64) *ScamDetector {
	if threshold <= 0 {
		threshold = 0.60
	}
	return &ScamDetector{
		logger:    log.WithComponent("scam-detector"),
		patterns:  patterns,
		threshold: threshold,
	}
}

// Classify analyzes a single message and returns the detection verdict.
func (d *ScamDetector) Classify(message string) models.DetectionResult {
	messageLower := strings.ToLower(message)

	matches := d.patterns.Match(messageLower)

	var scamTypes []string
	var indicators []string
	confidence := 0.0

	if len(matches) > 0 {
		maxWeight := 0.0
		for _, m := range matches {
			scamTypes = append(scamTypes, m.Category)
			indicators = append(indicators, m.Matches...)
			if m.Weight > maxWeight {
				maxWeight = m.Weight
			}
		}
		// Base score is the strongest category, with a small bonus for
		// each additional category matched.
		confidence = maxWeight + float64(len(matches)-1)*0.05
	}

	if d.hasSuspiciousURL(message) {
		confidence += 0.15
		indicators = append(indicators, "suspicious_url")
	}
	if upiHintRegex.MatchString(message) {
		confidence += 0.20
		indicators = append(indicators, "upi_id_request")
	}
	if phoneHintRegex.MatchString(message) {
		confidence += 0.10
		indicators = append(indicators, "phone_number_present")
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	confidence = math.Round(confidence*100) / 100

	result := models.DetectionResult{
		IsScam:     confidence >= d.threshold,
		Confidence: confidence,
		ScamTypes:  dedupe(scamTypes),
		Indicators: dedupe(indicators),
		Urgency:    d.determineUrgency(messageLower),
	}

	d.logger.Debug().
		Bool("is_scam", result.IsScam).
		Float64("confidence", result.Confidence).
		Strs("scam_types", result.ScamTypes).
		Msg("Message classified")

	return result
}

// Threshold returns the configured decision threshold
func (d *ScamDetector) Threshold() float64 {
	return d.threshold
}

func (d *ScamDetector) determineUrgency(messageLower string) models.UrgencyLevel {
	for _, w := range highUrgencyWords {
		if strings.Contains(messageLower, w) {
			return models.UrgencyHigh
		}
	}
	for _, w := range mediumUrgencyWords {
		if strings.Contains(messageLower, w) {
			return models.UrgencyMedium
		}
	}
	return models.UrgencyLow
}

func (d *ScamDetector) hasSuspiciousURL(message string) bool {
	urls := urlRegex.FindAllString(message, -1)
	for _, u := range urls {
		lower := strings.ToLower(u)
		for _, tld := range suspiciousTLDs {
			if strings.Contains(lower, tld) {
				return true
			}
		}
		for _, shortener := range urlShorteners {
			if strings.Contains(lower, shortener) {
				return true
			}
		}
	}
	return false
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
