// FILE: internal/service/service.go
package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"arena/internal/core"
	"arena/internal/game"
	"arena/internal/storage"
)

// Service is the match registry: running sessions plus an archive of ended
// ones, with optional persistence. The registry lock covers map operations
// only; per-match work uses the match's own lock.
type Service struct {
	mu      sync.RWMutex
	matches map[string]*game.Match // pending or active
	archive map[string]*game.Match // ended, kept until purged
	store   *storage.Store         // nil if persistence disabled
	waiter  *WaitRegistry
}

// New creates a registry with optional storage
func New(store *storage.Store) *Service {
	return &Service{
		matches: make(map[string]*game.Match),
		archive: make(map[string]*game.Match),
		store:   store,
		waiter:  NewWaitRegistry(),
	}
}

// GenerateMatchID creates a new unique match ID
func (s *Service) GenerateMatchID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for {
		id := uuid.New().String()
		_, running := s.matches[id]
		_, archived := s.archive[id]
		if !running && !archived {
			return id
		}
	}
}

// AddMatch registers a new session and persists its header
func (s *Service) AddMatch(m *game.Match) error {
	s.mu.Lock()
	if _, exists := s.matches[m.ID()]; exists {
		s.mu.Unlock()
		return fmt.Errorf("match %s already exists", m.ID())
	}
	s.matches[m.ID()] = m
	s.mu.Unlock()

	if s.store != nil {
		snap := m.Snapshot()
		s.store.RecordMatch(storage.MatchRecord{
			MatchID:      snap.ID,
			AgentAID:     snap.AgentA.ID,
			AgentAKey:    snap.AgentA.Config.Key().String(),
			AgentAKind:   string(snap.AgentA.Kind),
			AgentBID:     snap.AgentB.ID,
			AgentBKey:    snap.AgentB.Config.Key().String(),
			AgentBKind:   string(snap.AgentB.Kind),
			Status:       snap.Status.String(),
			CreatedAtUTC: snap.CreatedAt.UTC(),
		})
	}
	return nil
}

// ActiveMatch returns a pending or active session
func (s *Service) ActiveMatch(id string) (*game.Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	return m, ok
}

// GetMatch returns a session whether running or archived
func (s *Service) GetMatch(id string) (*game.Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.matches[id]; ok {
		return m, true
	}
	m, ok := s.archive[id]
	return m, ok
}

// ActiveMatches lists running sessions
func (s *Service) ActiveMatches() []*game.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*game.Match, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, m)
	}
	return out
}

// RecordMove persists one logged decision and wakes long-polling readers
func (s *Service) RecordMove(matchID string, moveNumber int, entry core.MoveLogEntry) {
	if s.store != nil {
		s.store.RecordMove(storage.MoveRecord{
			MatchID:     matchID,
			MoveNumber:  moveNumber,
			Player:      int(entry.Player),
			FromSquare:  entry.Move.From.String(),
			ToSquare:    entry.Move.To.String(),
			Piece:       string(entry.Move.Piece),
			Captured:    string(entry.Move.CapturedPiece),
			LatencyMs:   entry.LatencyMs,
			MoveTimeUTC: entry.At.UTC(),
		})
	}
	s.waiter.NotifyMatch(matchID, moveNumber)
}

// ArchiveMatch moves an ended session from the running set to the archive.
// It reports false if the match was not running.
func (s *Service) ArchiveMatch(id string) bool {
	s.mu.Lock()
	m, ok := s.matches[id]
	if ok {
		delete(s.matches, id)
		s.archive[id] = m
	}
	s.mu.Unlock()
	if !ok {
		return false
	}

	snap := m.Snapshot()
	if s.store != nil {
		winner, reason := 0, ""
		if snap.Result != nil {
			winner, reason = int(snap.Result.Winner), snap.Result.Reason
		}
		s.store.RecordMatchEnd(id, snap.Status.String(), winner, reason, len(snap.Moves), snap.EndedAt.UTC())
	}
	s.waiter.RemoveMatch(id)
	return true
}

// PurgeArchive drops archived sessions that ended more than maxAge ago
func (s *Service) PurgeArchive(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	s.mu.RLock()
	var stale []string
	for id, m := range s.archive {
		m.Lock()
		ended := m.EndedAt()
		m.Unlock()
		if ended.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	if len(stale) == 0 {
		return 0
	}
	s.mu.Lock()
	for _, id := range stale {
		delete(s.archive, id)
	}
	s.mu.Unlock()
	return len(stale)
}

// Counts returns the number of running and archived sessions
func (s *Service) Counts() (running, archived int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches), len(s.archive)
}

// RegisterWait returns a channel that fires once the match's move count
// differs from moveCount, the match ends, or the wait times out.
func (s *Service) RegisterWait(matchID string, moveCount int) (<-chan struct{}, func()) {
	return s.waiter.RegisterWait(matchID, moveCount)
}

// StorageHealth returns the storage component status
func (s *Service) StorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// DroppedWrites counts archive writes lost to a full queue
func (s *Service) DroppedWrites() int64 {
	if s.store == nil {
		return 0
	}
	return s.store.Dropped()
}

// Close stops waiters and closes storage
func (s *Service) Close() error {
	s.waiter.Shutdown()
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
