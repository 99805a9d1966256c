package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/pkg/logger"
)

// ErrSessionNotFound is returned when a session ID is unknown
var ErrSessionNotFound = fmt.Errorf("session not found")

// SessionSnapshotter persists point-in-time session copies so state
// survives a restart or an instance handover.
type SessionSnapshotter interface {
	SnapshotSession(ctx context.Context, sessionID string, state any, ttl time.Duration) error
	GetSessionSnapshot(ctx context.Context, sessionID string, dest any) error
	DeleteSessionSnapshot(ctx context.Context, sessionID string) error
}

// SessionStore holds active conversation state in memory with optional
// Redis snapshots for recovery. All mutations to one session run under
// that session's lock, so concurrent messages for the same session are
// applied one at a time.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	cache      SessionSnapshotter // nil disables snapshots
	logger     *logger.Logger
	sessionTTL time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

type sessionEntry struct {
	mu    sync.Mutex
	state *models.SessionState
}

// NewSessionStore creates a store. The snapshotter may be nil, in
// which case sessions live only in memory.
func NewSessionStore(snapshots SessionSnapshotter, log *logger.Logger, sessionTTL time.Duration) *SessionStore {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	s := &SessionStore{
		sessions:   make(map[string]*sessionEntry),
		cache:      snapshots,
		logger:     log.WithComponent("session-store"),
		sessionTTL: sessionTTL,
		stopCh:     make(chan struct{}),
	}

	s.wg.Add(1)
	go s.evictionLoop()

	return s
}

// Stop terminates the background eviction loop
func (s *SessionStore) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// Update applies fn to the session's state under the session lock,
// creating the session first if it does not exist. The snapshot write
// happens after fn returns successfully.
func (s *SessionStore) Update(ctx context.Context, sessionID string, fn func(state *models.SessionState) error) (*models.SessionState, error) {
	entry := s.getOrCreate(ctx, sessionID)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := fn(entry.state); err != nil {
		return nil, err
	}

	snapshot := cloneState(entry.state)

	if s.cache != nil {
		if err := s.cache.SnapshotSession(ctx, sessionID, snapshot, s.sessionTTL); err != nil {
			// Snapshot failure doesn't invalidate the in-memory update
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to snapshot session")
		}
	}

	return snapshot, nil
}

// Get returns a copy of the session state
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*models.SessionState, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		// Fall back to a snapshot if another instance owned the session
		if s.cache != nil {
			var state models.SessionState
			if err := s.cache.GetSessionSnapshot(ctx, sessionID, &state); err == nil {
				return &state, nil
			}
		}
		return nil, ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return cloneState(entry.state), nil
}

// List returns copies of every active session state
func (s *SessionStore) List(ctx context.Context) []*models.SessionState {
	s.mu.RLock()
	entries := make([]*sessionEntry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	result := make([]*models.SessionState, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		result = append(result, cloneState(e.state))
		e.mu.Unlock()
	}
	return result
}

// Delete removes a session from memory and from the snapshot store
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.DeleteSessionSnapshot(ctx, sessionID); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to delete session snapshot")
		}
	}

	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// Count returns the number of active sessions
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) getOrCreate(ctx context.Context, sessionID string) *sessionEntry {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return entry
	}

	// Try the snapshot first so a restart doesn't reset counters,
	// the persona binding or the report latch.
	var restored *models.SessionState
	if s.cache != nil {
		var state models.SessionState
		if err := s.cache.GetSessionSnapshot(ctx, sessionID, &state); err == nil && state.SessionID == sessionID {
			restored = &state
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok = s.sessions[sessionID]; ok {
		return entry
	}

	if restored != nil {
		entry = &sessionEntry{state: restored}
		s.logger.Info().Str("session_id", sessionID).Msg("Session restored from snapshot")
	} else {
		entry = &sessionEntry{state: models.NewSessionState(sessionID, time.Now())}
		s.logger.Debug().Str("session_id", sessionID).Msg("Session created")
	}
	s.sessions[sessionID] = entry
	return entry
}

// evictionLoop drops sessions idle past their TTL
func (s *SessionStore) evictionLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.evictIdle(time.Now())
		}
	}
}

func (s *SessionStore) evictIdle(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.sessions {
		entry.mu.Lock()
		idle := now.Sub(entry.state.LastActivityAt)
		entry.mu.Unlock()

		if idle > s.sessionTTL {
			delete(s.sessions, id)
			s.logger.Info().Str("session_id", id).Dur("idle", idle).Msg("Idle session evicted")
		}
	}
}

// cloneState deep-copies session state so callers can't race on the
// slices inside.
func cloneState(state *models.SessionState) *models.SessionState {
	cp := *state
	cp.ScamTypes = append([]string(nil), state.ScamTypes...)
	cp.Transcript = append([]models.TranscriptEntry(nil), state.Transcript...)
	cp.Artifacts = models.ArtifactBundle{
		UPIIDs:             append([]string(nil), state.Artifacts.UPIIDs...),
		PhoneNumbers:       append([]string(nil), state.Artifacts.PhoneNumbers...),
		PhishingLinks:      append([]string(nil), state.Artifacts.PhishingLinks...),
		BankAccounts:       append([]string(nil), state.Artifacts.BankAccounts...),
		IFSCCodes:          append([]string(nil), state.Artifacts.IFSCCodes...),
		SuspiciousKeywords: append([]string(nil), state.Artifacts.SuspiciousKeywords...),
	}
	return &cp
}
