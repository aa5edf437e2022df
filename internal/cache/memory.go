package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	group     string
	expiresAt time.Time
}

// MemoryStore is an in-process Store used by tests, the CLI, and
// deployments without a shared backend. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the live value for key, expiring stale entries lazily.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores the value under key within the given group.
func (s *MemoryStore) Set(_ context.Context, key, group, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{
		value:     value,
		group:     group,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// DeleteGroup removes every entry in the group; an empty group clears the
// whole store.
func (s *MemoryStore) DeleteGroup(_ context.Context, group string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if group == "" {
		s.entries = make(map[string]memoryEntry)
		return nil
	}
	for key, e := range s.entries {
		if e.group == group {
			delete(s.entries, key)
		}
	}
	return nil
}

// Len reports the number of stored entries, including not-yet-swept expired
// ones.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ Store = (*MemoryStore)(nil)
