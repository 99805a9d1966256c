package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeypot-lab/internal/domain/models"
)

func newTestReporter(t *testing.T, cfg ReporterConfig) *Reporter {
	t.Helper()
	r := NewReporter(cfg, nil, nil, nil, newTestLogger())
	t.Cleanup(r.Stop)
	return r
}

// fakeLocker records lock traffic and can refuse the claim
type fakeLocker struct {
	mu       sync.Mutex
	refuse   bool
	acquired []string
	released []string
}

func (l *fakeLocker) AcquireLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.refuse {
		return false, nil
	}
	l.acquired = append(l.acquired, key)
	return true, nil
}

func (l *fakeLocker) ReleaseLock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released = append(l.released, key)
	return nil
}

func scamSessionState(messages, artifacts int) *models.SessionState {
	now := time.Now()
	state := models.NewSessionState("sess-1", now.Add(-5*time.Minute))
	state.Persona = "Ramesh Kumar"
	state.ScamDetected = true
	state.MaxConfidence = 0.85
	state.ScamTypes = []string{"fake_prize"}
	state.MessageCount = messages
	state.LastActivityAt = now

	for i := 0; i < artifacts; i++ {
		state.Artifacts.PhoneNumbers = append(state.Artifacts.PhoneNumbers, "98765432"+string(rune('1'+i))+"0")
	}
	return state
}

func TestShouldTrigger(t *testing.T) {
	reporter := newTestReporter(t, DefaultReporterConfig())

	tests := []struct {
		name       string
		messages   int
		artifacts  int
		reportSent bool
		want       bool
	}{
		{"too few messages", 5, 5, false, false},
		{"too few artifacts", 15, 1, false, false},
		{"rich conversation", 12, 5, false, true},
		{"long conversation", 15, 2, false, true},
		{"mid conversation", 10, 3, false, false},
		{"already reported", 15, 5, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := scamSessionState(tt.messages, tt.artifacts)
			state.ReportSent = tt.reportSent
			assert.Equal(t, tt.want, reporter.ShouldTrigger(state))
		})
	}
}

func TestAssemble(t *testing.T) {
	reporter := newTestReporter(t, DefaultReporterConfig())
	state := scamSessionState(10, 3)
	state.Artifacts.UPIIDs = []string{"scammer@ybl"}
	now := time.Now()

	report := reporter.Assemble(state, now)

	assert.Equal(t, "sess-1", report.SessionID)
	assert.True(t, report.ScamDetected)
	assert.Equal(t, 10, report.TotalMessagesExchanged)
	assert.Equal(t, []string{"scammer@ybl"}, report.ExtractedIntelligence.UPIIDs)
	// 4 artifacts over 10 messages
	assert.Equal(t, 0.4, report.EngagementMetrics.IntelligenceDensity)
	assert.Equal(t, []string{"fake_prize"}, report.EngagementMetrics.ScamTypes)
	assert.Equal(t, "Ramesh Kumar", report.EngagementMetrics.PersonaUsed)
	assert.Equal(t, 300, report.EngagementMetrics.DurationSeconds)
	assert.Contains(t, report.AgentNotes, "Persona 'Ramesh Kumar'")
	assert.Contains(t, report.AgentNotes, "fake_prize")
	assert.Contains(t, report.AgentNotes, "Scam confidence: 85%")
}

func TestAssemble_EmptySlicesNotNull(t *testing.T) {
	reporter := newTestReporter(t, DefaultReporterConfig())
	state := models.NewSessionState("sess-2", time.Now())

	report := reporter.Assemble(state, time.Now())

	payload, err := json.Marshal(report)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), `"bankAccounts":null`)
	assert.Contains(t, string(payload), `"bankAccounts":[]`)
	assert.Equal(t, 0.0, report.EngagementMetrics.IntelligenceDensity)
}

func TestDeliver_SignsPayload(t *testing.T) {
	received := make(chan *http.Request, 1)
	var body []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		received <- r
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reporter := newTestReporter(t, ReporterConfig{
		CallbackURL: server.URL,
		Secret:      "top-secret",
		Timeout:     5 * time.Second,
	})

	state := scamSessionState(15, 3)
	report := reporter.Assemble(state, time.Now())

	err := reporter.deliverWithRetry(report)
	require.NoError(t, err)

	req := <-received
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "Honeypot-Reporter/1.0", req.Header.Get("User-Agent"))
	assert.Equal(t, "sess-1", req.Header.Get("X-Report-Session"))
	assert.Equal(t, "1", req.Header.Get("X-Report-Attempt"))

	mac := hmac.New(sha256.New, []byte("top-secret"))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	assert.Equal(t, expected, req.Header.Get("X-Report-Signature"))
}

func TestDeliver_FailureReported(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	reporter := newTestReporter(t, ReporterConfig{
		CallbackURL: server.URL,
		MaxRetries:  1,
		Timeout:     5 * time.Second,
	})

	report := reporter.Assemble(scamSessionState(15, 3), time.Now())

	err := reporter.deliverWithRetry(report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestDeliverWithRetry_FreshDeadlinePerAttempt(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The first attempt hangs past the per-attempt timeout
		if atomic.AddInt32(&attempts, 1) == 1 {
			time.Sleep(300 * time.Millisecond)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reporter := newTestReporter(t, ReporterConfig{
		CallbackURL:  server.URL,
		Timeout:      100 * time.Millisecond,
		MaxRetries:   2,
		RetryBackoff: 10 * time.Millisecond,
	})

	report := reporter.Assemble(scamSessionState(15, 3), time.Now())

	err := reporter.deliverWithRetry(report)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestProcessDelivery_SkipsWhenClaimedElsewhere(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	locker := &fakeLocker{refuse: true}
	reporter := NewReporter(ReporterConfig{
		CallbackURL: server.URL,
		Timeout:     5 * time.Second,
	}, nil, nil, locker, newTestLogger())
	t.Cleanup(reporter.Stop)

	reporter.processDelivery(reporter.Assemble(scamSessionState(15, 3), time.Now()))

	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
	assert.Empty(t, locker.released)
}

func TestProcessDelivery_ReleasesLockOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	locker := &fakeLocker{}
	reporter := NewReporter(ReporterConfig{
		CallbackURL: server.URL,
		MaxRetries:  1,
		Timeout:     5 * time.Second,
	}, nil, nil, locker, newTestLogger())
	t.Cleanup(reporter.Stop)

	reporter.processDelivery(reporter.Assemble(scamSessionState(15, 3), time.Now()))

	assert.Equal(t, []string{"sess-1"}, locker.acquired)
	assert.Equal(t, []string{"sess-1"}, locker.released)
}

func TestDispatch_DeliversAsync(t *testing.T) {
	received := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- struct{}{}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reporter := newTestReporter(t, ReporterConfig{
		CallbackURL: server.URL,
		Timeout:     5 * time.Second,
	})

	reporter.Dispatch(reporter.Assemble(scamSessionState(15, 3), time.Now()))

	select {
	case <-received:
	case <-time.After(3 * time.Second):
		t.Fatal("report was never delivered")
	}
}
