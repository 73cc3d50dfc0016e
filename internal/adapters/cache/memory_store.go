package cache

import (
	"context"
	"sync"

	"github.com/mikey/fraud-shield/internal/core"
)

// MemoryStore is a CacheStore that keeps entries for the life of the
// process only
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[core.CacheKey]core.Verdict
}

// NewMemoryStore creates a new in-memory cache store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[core.CacheKey]core.Verdict),
	}
}

// Load returns a copy of every entry
func (s *MemoryStore) Load(ctx context.Context) (map[core.CacheKey]core.Verdict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[core.CacheKey]core.Verdict, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out, nil
}

// Put stores an entry
func (s *MemoryStore) Put(ctx context.Context, key core.CacheKey, verdict core.Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = verdict
	return nil
}

// Clear removes every entry
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[core.CacheKey]core.Verdict)
	return nil
}
