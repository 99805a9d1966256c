package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/pkg/logger"
)

func newTestLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func newTestDetector(t *testing.T) *ScamDetector {
	t.Helper()
	log := newTestLogger()
	return NewScamDetector(log, NewScamPatternDB(log), 0.60)
}

func TestClassify_LuckyDrawScam(t *testing.T) {
	detector := newTestDetector(t)

	result := detector.Classify("Congratulations! You have won Rs 50,000 in lucky draw. Send your UPI ID to claim prize now. winner2024@paytm")

	require.True(t, result.IsScam)
	assert.GreaterOrEqual(t, result.Confidence, 0.6)
	assert.Contains(t, result.ScamTypes, "fake_prize")
	assert.Contains(t, result.Indicators, "upi_id_request")
	assert.Equal(t, models.UrgencyHigh, result.Urgency)
}

func TestClassify_BenignMessage(t *testing.T) {
	detector := newTestDetector(t)

	result := detector.Classify("Hi, how are you?")

	assert.False(t, result.IsScam)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Empty(t, result.ScamTypes)
	assert.Empty(t, result.Indicators)
	assert.Equal(t, models.UrgencyLow, result.Urgency)
}

func TestClassify_RemoteAccessScam(t *testing.T) {
	detector := newTestDetector(t)

	result := detector.Classify("Please download AnyDesk so our support team can fix the technical issue")

	require.True(t, result.IsScam)
	assert.Contains(t, result.ScamTypes, "remote_access")
	// remote_access alone scores 0.9, impersonation adds the category bonus
	assert.GreaterOrEqual(t, result.Confidence, 0.9)
}

func TestClassify_SuspiciousURLBonus(t *testing.T) {
	detector := newTestDetector(t)

	plain := detector.Classify("Your refund is ready")
	withURL := detector.Classify("Your refund is ready http://kyc-update.xyz/verify")

	assert.Greater(t, withURL.Confidence, plain.Confidence)
	assert.Contains(t, withURL.Indicators, "suspicious_url")
}

func TestClassify_PhoneNumberBonus(t *testing.T) {
	detector := newTestDetector(t)

	result := detector.Classify("Call customer care 9876543210 to verify your account")

	assert.Contains(t, result.Indicators, "phone_number_present")
	assert.Contains(t, result.ScamTypes, "impersonation")
}

func TestClassify_ConfidenceCapped(t *testing.T) {
	detector := newTestDetector(t)

	result := detector.Classify(
		"URGENT: your account will be blocked today. Congratulations you won a prize, " +
			"send upi id winner@ybl, call 9876543210, click http://bit.ly/claim for refund otp")

	assert.True(t, result.IsScam)
	assert.LessOrEqual(t, result.Confidence, 1.0)
	assert.GreaterOrEqual(t, len(result.ScamTypes), 3)
}

func TestClassify_MultiCategoryBonus(t *testing.T) {
	detector := newTestDetector(t)

	single := detector.Classify("you won a reward")
	double := detector.Classify("you won a reward, processing refund")

	assert.Equal(t, 0.8, single.Confidence)
	// refund_scam joins fake_prize: max(0.8, 0.8) + 0.05
	assert.Equal(t, 0.85, double.Confidence)
}

func TestClassify_ThresholdBoundary(t *testing.T) {
	log := newTestLogger()
	detector := NewScamDetector(log, NewScamPatternDB(log), 0.75)

	result := detector.Classify("update kyc")

	// urgent_action alone scores 0.7, below the raised threshold
	assert.Equal(t, 0.7, result.Confidence)
	assert.False(t, result.IsScam)
}

func TestClassify_DisabledPattern(t *testing.T) {
	log := newTestLogger()
	db := NewScamPatternDB(log)
	require.True(t, db.SetPatternEnabled("fake_prize", false))
	detector := NewScamDetector(log, db, 0.60)

	result := detector.Classify("congratulations you won the lottery")

	assert.NotContains(t, result.ScamTypes, "fake_prize")
}

func TestDetermineUrgency(t *testing.T) {
	detector := newTestDetector(t)

	tests := []struct {
		message string
		want    models.UrgencyLevel
	}{
		{"act immediately or lose access", models.UrgencyHigh},
		{"your account will be suspended", models.UrgencyHigh},
		{"reply soon please", models.UrgencyMedium},
		{"send it asap", models.UrgencyMedium},
		{"hello there", models.UrgencyLow},
	}

	for _, tt := range tests {
		result := detector.Classify(tt.message)
		assert.Equal(t, tt.want, result.Urgency, "message: %s", tt.message)
	}
}

func TestUpdatePattern(t *testing.T) {
	log := newTestLogger()
	db := NewScamPatternDB(log)

	require.True(t, db.UpdatePattern("refund_scam", []string{"chargeback"}, 0.95))
	require.False(t, db.UpdatePattern("no_such_category", []string{"x"}, 0.5))

	detector := NewScamDetector(log, db, 0.60)
	result := detector.Classify("we will process your chargeback")

	require.True(t, result.IsScam)
	assert.Contains(t, result.ScamTypes, "refund_scam")
	assert.Equal(t, 0.95, result.Confidence)
}
