package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/domain/services/ai"
)

// stubGenerator returns a fixed reply or a fixed error
type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (g *stubGenerator) GenerateReply(_ context.Context, _ models.PersonaProfile, _ []models.TranscriptEntry, _ string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func newTestHoneypot(t *testing.T, generator ai.ReplyGenerator) *HoneypotService {
	t.Helper()
	log := newTestLogger()

	sessions := NewSessionStore(nil, log, time.Hour)
	t.Cleanup(sessions.Stop)

	reporter := NewReporter(DefaultReporterConfig(), nil, nil, nil, log)
	t.Cleanup(reporter.Stop)

	return NewHoneypotService(
		ai.NewScamDetector(log, ai.NewScamPatternDB(log), 0.60),
		ai.NewIntelExtractor(log),
		ai.NewPersonaSelector(log),
		generator,
		NewEngagementPolicy(log, 20, 2*time.Hour),
		sessions,
		reporter,
		nil,
		log,
	)
}

func TestHandleMessage_BenignMessage(t *testing.T) {
	hp := newTestHoneypot(t, nil)

	result, err := hp.HandleMessage(context.Background(), "s1", "Hi, how are you?")
	require.NoError(t, err)

	assert.False(t, result.Detection.IsScam)
	assert.Equal(t, "Thank you for your message.", result.Reply)
	assert.Equal(t, models.PhaseInitiated, result.Phase)
	assert.Equal(t, 1, result.MessageCount)
	assert.True(t, result.ShouldContinue)

	state, err := hp.GetSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, state.ScamDetected)
	assert.Equal(t, 0, state.Artifacts.Total())
}

func TestHandleMessage_ScamMessage(t *testing.T) {
	gen := &stubGenerator{reply: "Oh wonderful! How do I claim it?"}
	hp := newTestHoneypot(t, gen)

	result, err := hp.HandleMessage(context.Background(), "s1",
		"Congratulations! You won the lucky draw. Send money to winner2024@paytm now")
	require.NoError(t, err)

	assert.True(t, result.Detection.IsScam)
	assert.Equal(t, "Oh wonderful! How do I claim it?", result.Reply)
	assert.Equal(t, models.PhaseScamSuspected, result.Phase)
	assert.Equal(t, 1, gen.calls)

	state, err := hp.GetSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, state.ScamDetected)
	assert.NotEmpty(t, state.Persona)
	assert.Equal(t, []string{"winner2024@paytm"}, state.Artifacts.UPIIDs)
	assert.Len(t, state.Transcript, 2)
	assert.Equal(t, models.RoleScammer, state.Transcript[0].Role)
	assert.Equal(t, models.RoleAgent, state.Transcript[1].Role)
}

func TestHandleMessage_GeneratorErrorFallsBack(t *testing.T) {
	gen := &stubGenerator{err: errors.New("llm unavailable")}
	hp := newTestHoneypot(t, gen)

	result, err := hp.HandleMessage(context.Background(), "s1",
		"Congratulations! You won the lucky draw, claim now")
	require.NoError(t, err)

	state, err := hp.GetSession(context.Background(), "s1")
	require.NoError(t, err)

	persona, ok := ai.NewPersonaSelector(newTestLogger()).ByName(state.Persona)
	require.True(t, ok)
	assert.Contains(t, persona.FallbackLines, result.Reply)
}

func TestHandleMessage_NilGeneratorUsesFallback(t *testing.T) {
	hp := newTestHoneypot(t, nil)

	result, err := hp.HandleMessage(context.Background(), "s1",
		"Congratulations! You won the lucky draw, claim now")
	require.NoError(t, err)

	assert.NotEqual(t, "Thank you for your message.", result.Reply)
	assert.NotEmpty(t, result.Reply)
}

func TestHandleMessage_PersonaStableAcrossMessages(t *testing.T) {
	hp := newTestHoneypot(t, nil)
	ctx := context.Background()

	_, err := hp.HandleMessage(ctx, "s1", "Sir your bank account will be blocked today, verify urgently")
	require.NoError(t, err)

	first, err := hp.GetSession(ctx, "s1")
	require.NoError(t, err)

	_, err = hp.HandleMessage(ctx, "s1", "bro invest in crypto, earn money fast")
	require.NoError(t, err)

	second, err := hp.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, first.Persona, second.Persona)
}

func TestHandleMessage_ReportTriggeredOnce(t *testing.T) {
	hp := newTestHoneypot(t, nil)
	ctx := context.Background()

	scamMsg := "Urgent! Your account will be blocked. Send to winner@ybl or call 9876543210, account number 123456789012"

	for i := 0; i < 16; i++ {
		_, err := hp.HandleMessage(ctx, "s1", scamMsg)
		require.NoError(t, err)
	}

	state, err := hp.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, state.ReportSent)

	stats := hp.GetStats(ctx)
	assert.Equal(t, 1, stats.ActiveSessions)
	assert.Equal(t, 1, stats.ScamSessions)
	assert.Equal(t, 1, stats.ReportsEmitted)
}

func TestEndSession(t *testing.T) {
	hp := newTestHoneypot(t, nil)
	ctx := context.Background()

	_, err := hp.HandleMessage(ctx, "s1", "Congratulations, you won! Pay fee to winner@ybl to claim")
	require.NoError(t, err)

	state, err := hp.EndSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseCompleted, state.Phase)

	// The termination flush reports even below the mid-conversation
	// trigger minimums
	assert.Less(t, state.MessageCount, DefaultReporterConfig().MinMessages)
	assert.True(t, state.ReportSent)

	_, err = hp.EndSession(ctx, "unknown")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDeleteSession(t *testing.T) {
	hp := newTestHoneypot(t, nil)
	ctx := context.Background()

	_, err := hp.HandleMessage(ctx, "s1", "hello")
	require.NoError(t, err)

	require.NoError(t, hp.DeleteSession(ctx, "s1"))
	_, err = hp.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
