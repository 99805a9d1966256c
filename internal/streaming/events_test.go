package streaming

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"honeypot-lab/internal/domain/models"
)

func sampleEvent() *SessionEvent {
	return &SessionEvent{
		Type:       EventTypeScamDetected,
		SessionID:  "s1",
		Phase:      models.PhaseExtracting,
		Confidence: 0.85,
		ScamTypes:  []string{"fake_prize", "upi_collection_scam"},
	}
}

func TestSubscriptionMatches(t *testing.T) {
	tests := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{"empty subscription matches all", Subscription{}, true},
		{"matching type", Subscription{Types: []EventType{EventTypeScamDetected}}, true},
		{"other type", Subscription{Types: []EventType{EventTypeSessionStarted}}, false},
		{"matching phase", Subscription{Phases: []models.Phase{models.PhaseExtracting}}, true},
		{"other phase", Subscription{Phases: []models.Phase{models.PhaseProlonging}}, false},
		{"confidence below threshold", Subscription{MinConfidence: 0.9}, false},
		{"confidence above threshold", Subscription{MinConfidence: 0.8}, true},
		{"matching scam type", Subscription{ScamTypes: []string{"fake_prize"}}, true},
		{"other scam type", Subscription{ScamTypes: []string{"refund_scam"}}, false},
		{"all filters together", Subscription{
			Types:         []EventType{EventTypeScamDetected},
			Phases:        []models.Phase{models.PhaseExtracting},
			MinConfidence: 0.5,
			ScamTypes:     []string{"upi_collection_scam"},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.Matches(sampleEvent()))
		})
	}
}
