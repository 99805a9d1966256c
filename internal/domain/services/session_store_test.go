package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeypot-lab/internal/domain/models"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	store := NewSessionStore(nil, newTestLogger(), time.Hour)
	t.Cleanup(store.Stop)
	return store
}

// memorySnapshotter is a map-backed SessionSnapshotter
type memorySnapshotter struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemorySnapshotter() *memorySnapshotter {
	return &memorySnapshotter{data: make(map[string][]byte)}
}

func (m *memorySnapshotter) SnapshotSession(_ context.Context, sessionID string, state any, _ time.Duration) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionID] = b
	return nil
}

func (m *memorySnapshotter) GetSessionSnapshot(_ context.Context, sessionID string, dest any) error {
	m.mu.Lock()
	b, ok := m.data[sessionID]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("no snapshot for %s", sessionID)
	}
	return json.Unmarshal(b, dest)
}

func (m *memorySnapshotter) DeleteSessionSnapshot(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID)
	return nil
}

func TestSessionStore_UpdateCreatesSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	snapshot, err := store.Update(ctx, "s1", func(state *models.SessionState) error {
		state.MessageCount++
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "s1", snapshot.SessionID)
	assert.Equal(t, models.PhaseInitiated, snapshot.Phase)
	assert.Equal(t, 1, snapshot.MessageCount)
	assert.Equal(t, 1, store.Count())
}

func TestSessionStore_GetUnknown(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_SnapshotIsIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	snapshot, err := store.Update(ctx, "s1", func(state *models.SessionState) error {
		state.ScamTypes = []string{"fake_prize"}
		state.Artifacts.UPIIDs = []string{"a@ybl"}
		return nil
	})
	require.NoError(t, err)

	// Mutating the snapshot must not leak into the stored state
	snapshot.ScamTypes[0] = "mutated"
	snapshot.Artifacts.UPIIDs[0] = "mutated"

	current, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"fake_prize"}, current.ScamTypes)
	assert.Equal(t, []string{"a@ybl"}, current.Artifacts.UPIIDs)
}

func TestSessionStore_ConcurrentUpdatesSerialized(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, "s1", func(state *models.SessionState) error {
				state.MessageCount++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, goroutines, state.MessageCount)
}

func TestSessionStore_UpdateErrorLeavesStateVisible(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Update(ctx, "s1", func(state *models.SessionState) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSessionStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Update(ctx, "s1", func(*models.SessionState) error { return nil })
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "s1"))
	assert.Equal(t, 0, store.Count())

	assert.ErrorIs(t, store.Delete(ctx, "s1"), ErrSessionNotFound)
}

func TestSessionStore_List(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := store.Update(ctx, id, func(*models.SessionState) error { return nil })
		require.NoError(t, err)
	}

	sessions := store.List(ctx)
	assert.Len(t, sessions, 3)
}

func TestSessionStore_UpdateRestoresFromSnapshot(t *testing.T) {
	snaps := newMemorySnapshotter()
	ctx := context.Background()

	first := NewSessionStore(snaps, newTestLogger(), time.Hour)
	_, err := first.Update(ctx, "s1", func(state *models.SessionState) error {
		state.MessageCount = 16
		state.Persona = "Ramesh Kumar"
		state.ScamDetected = true
		state.ReportSent = true
		state.Artifacts.UPIIDs = []string{"winner@ybl"}
		return nil
	})
	require.NoError(t, err)
	first.Stop()

	// A new store with the same snapshot backend stands in for a
	// restarted process receiving the next message
	second := NewSessionStore(snaps, newTestLogger(), time.Hour)
	t.Cleanup(second.Stop)

	state, err := second.Update(ctx, "s1", func(state *models.SessionState) error {
		state.MessageCount++
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 17, state.MessageCount)
	assert.Equal(t, "Ramesh Kumar", state.Persona)
	assert.True(t, state.ScamDetected)
	assert.True(t, state.ReportSent)
	assert.Equal(t, []string{"winner@ybl"}, state.Artifacts.UPIIDs)
}

func TestSessionStore_DeleteClearsSnapshot(t *testing.T) {
	snaps := newMemorySnapshotter()
	ctx := context.Background()

	store := NewSessionStore(snaps, newTestLogger(), time.Hour)
	t.Cleanup(store.Stop)

	_, err := store.Update(ctx, "s1", func(*models.SessionState) error { return nil })
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "s1"))

	// Deleted sessions must not resurrect from their snapshot
	state, err := store.Update(ctx, "s1", func(state *models.SessionState) error {
		state.MessageCount++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, state.MessageCount)
}

func TestSessionStore_EvictIdle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Update(ctx, "stale", func(state *models.SessionState) error {
		state.LastActivityAt = time.Now().Add(-2 * time.Hour)
		return nil
	})
	require.NoError(t, err)
	_, err = store.Update(ctx, "active", func(*models.SessionState) error { return nil })
	require.NoError(t, err)

	store.evictIdle(time.Now())

	assert.Equal(t, 1, store.Count())
	_, err = store.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
