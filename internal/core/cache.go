package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// CacheKey is the hex SHA-256 fingerprint of a normalized submission
type CacheKey string

// NormalizeContent lowercases and trims content before fingerprinting
func NormalizeContent(content string) string {
	return strings.ToLower(strings.TrimSpace(content))
}

// ComputeKey fingerprints content for an analysis type. Two submissions share
// a key iff their normalized content and type are byte-identical.
func ComputeKey(content string, analysisType AnalysisType) CacheKey {
	sum := sha256.Sum256([]byte(string(analysisType) + ":" + NormalizeContent(content)))
	return CacheKey(hex.EncodeToString(sum[:]))
}

// FingerprintCache maps content fingerprints to previously produced verdicts.
// Lookups are served from memory; every mutation is written through to the
// backing CacheStore. Storage failures are logged and never surface.
type FingerprintCache struct {
	store  CacheStore
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[CacheKey]Verdict

	// persistMu orders writes to the store so an older state is never
	// persisted after a newer one
	persistMu sync.Mutex
}

// NewFingerprintCache creates an empty cache backed by store
func NewFingerprintCache(store CacheStore, logger *zap.Logger) *FingerprintCache {
	return &FingerprintCache{
		store:   store,
		logger:  logger,
		entries: make(map[CacheKey]Verdict),
	}
}

// Load populates memory from the backing store. A missing or unreadable
// store leaves the cache empty.
func (c *FingerprintCache) Load(ctx context.Context) {
	entries, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Error("Failed to load cache, starting empty", zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, verdict := range entries {
		c.entries[key] = verdict
	}
	c.logger.Info("Loaded cached responses", zap.Int("count", len(c.entries)))
}

// Lookup returns the cached verdict for key
func (c *FingerprintCache) Lookup(key CacheKey) (Verdict, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	verdict, ok := c.entries[key]
	if !ok {
		return Verdict{}, false
	}
	return cloneVerdict(verdict), true
}

// Store inserts or overwrites an entry and persists it
func (c *FingerprintCache) Store(ctx context.Context, key CacheKey, verdict Verdict) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	c.entries[key] = cloneVerdict(verdict)
	c.mu.Unlock()

	if err := c.store.Put(ctx, key, verdict); err != nil {
		c.logger.Error("Failed to persist cache entry", zap.Error(err), zap.String("key", string(key)))
	}
}

// Clear empties the cache and its backing store
func (c *FingerprintCache) Clear(ctx context.Context) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	c.entries = make(map[CacheKey]Verdict)
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("Failed to clear persisted cache", zap.Error(err))
	}
}

// Size returns the number of cached entries
func (c *FingerprintCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cloneVerdict(v Verdict) Verdict {
	if v.SuggestedSources != nil {
		sources := make([]string, len(v.SuggestedSources))
		copy(sources, v.SuggestedSources)
		v.SuggestedSources = sources
	}
	return v
}
