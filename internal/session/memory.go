package session

import (
	"context"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/avkor/shelltrack/internal/game"
)

type memoryEntry struct {
	session   *game.Session
	updatedAt time.Time
}

// MemoryStore is an in-memory Store. Safe for concurrent use across
// users; serializing operations for a single user is the tracker's
// job.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	clock   quartz.Clock
}

// NewMemoryStore creates an empty in-memory store on the real clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(quartz.NewReal())
}

// NewMemoryStoreWithClock creates an empty store with an injected
// clock for tests.
func NewMemoryStoreWithClock(clock quartz.Clock) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		clock:   clock,
	}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, userID string) (*game.Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[userID]
	if !ok {
		return nil, false, nil
	}
	return entry.session.Clone(), true, nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, userID string, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[userID] = &memoryEntry{
		session:   s.Clone(),
		updatedAt: m.clock.Now(),
	}
	return nil
}

// ClearPreserving implements Store.
func (m *MemoryStore) ClearPreserving(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[userID]
	if !ok {
		return ErrNotFound
	}
	cleared := entry.session.Clone()
	cleared.ClearGame()
	m.entries[userID] = &memoryEntry{session: cleared, updatedAt: m.clock.Now()}
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, userID)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sweep drops sessions idle for longer than idleFor and returns how
// many were removed. Abandoned sessions otherwise persist until reset
// or overwritten.
func (m *MemoryStore) Sweep(idleFor time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.clock.Now().Add(-idleFor)
	removed := 0
	for id, entry := range m.entries {
		if entry.updatedAt.Before(cutoff) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}
