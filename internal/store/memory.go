package store

import (
	"context"
	"sync"
	"time"

	"github.com/mvasquez/persona-sim/internal/model/simulation"
)

type memoryEntry struct {
	session   simulation.Session
	expiresAt time.Time
}

// MemoryStore is a map-backed Store with the same expiry semantics as
// the Redis implementation. It backs local runs without a Redis
// instance, and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock injects the time source, so tests can advance
// the clock past a TTL without sleeping.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

// Get returns the live session at id, or ErrNotFound if it was never
// written or its deadline passed. Expired entries are pruned lazily.
func (s *MemoryStore) Get(_ context.Context, id string) (simulation.Session, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		return simulation.Session{}, ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		// Re-check under the write lock: a Put may have replaced the
		// entry since the read above, and a fresh write must survive
		// the pruning of the stale one.
		s.mu.Lock()
		if current, ok := s.entries[id]; ok && s.now().After(current.expiresAt) {
			delete(s.entries, id)
		}
		s.mu.Unlock()
		return simulation.Session{}, ErrNotFound
	}

	return cloneSession(entry.session), nil
}

// Put replaces the value at id and resets its expiry deadline.
func (s *MemoryStore) Put(_ context.Context, id string, session simulation.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = memoryEntry{
		session:   cloneSession(session),
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// cloneSession copies the message slice so callers cannot alias stored
// state through a shared backing array.
func cloneSession(session simulation.Session) simulation.Session {
	copied := session
	copied.Messages = append([]simulation.Message(nil), session.Messages...)
	return copied
}
