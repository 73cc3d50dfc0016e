package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/fraud-shield/internal/core"
)

var sampleVerdict = core.Verdict{
	Verdict:          core.VerdictScam,
	Score:            95,
	Reason:           "prize lure",
	Category:         "scam",
	SuggestedSources: []string{"https://consumer.ftc.gov"},
}

// exerciseStore checks the CacheStore contract shared by every implementation
func exerciseStore(t *testing.T, store core.CacheStore) {
	t.Helper()
	ctx := context.Background()

	entries, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	keyA := core.ComputeKey("a", core.AnalysisScam)
	keyB := core.ComputeKey("b", core.AnalysisNews)
	require.NoError(t, store.Put(ctx, keyA, sampleVerdict))
	require.NoError(t, store.Put(ctx, keyB, core.Verdict{Verdict: core.VerdictSafe, Score: 2, SuggestedSources: []string{}}))
	require.NoError(t, store.Put(ctx, keyB, core.Verdict{Verdict: core.VerdictSuspicious, Score: 41, SuggestedSources: []string{}}))

	entries, err = store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, sampleVerdict, entries[keyA])
	assert.Equal(t, 41, entries[keyB].Score)

	require.NoError(t, store.Clear(ctx))
	entries, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "data", "cache.json"), zap.NewNop())
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop())
	require.NoError(t, err)
	defer store.Stop()
	exerciseStore(t, store)
}

func TestFileStore_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	ctx := context.Background()

	first, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	cache := core.NewFingerprintCache(first, zap.NewNop())
	key := core.ComputeKey("You won a prize", core.AnalysisScam)
	cache.Store(ctx, key, sampleVerdict)

	second, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	restarted := core.NewFingerprintCache(second, zap.NewNop())
	restarted.Load(ctx)

	got, ok := restarted.Lookup(core.ComputeKey("  YOU WON A PRIZE ", core.AnalysisScam))
	require.True(t, ok)
	assert.Equal(t, sampleVerdict, got)
}

func TestFileStore_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)

	key := core.ComputeKey("x", core.AnalysisURL)
	require.NoError(t, store.Put(context.Background(), key, sampleVerdict))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Contains(t, raw, string(key))
	assert.Equal(t, "scam", raw[string(key)]["verdict"])
	assert.Equal(t, float64(95), raw[string(key)]["score"])
	assert.NotContains(t, raw[string(key)], "failure")

	// no temp files left behind
	matches, err := filepath.Glob(path + ".*.tmp")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"abc": {"verdict": "scam"`), 0644))

	store, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	assert.Error(t, err)

	// the cache degrades to empty and the next write replaces the corrupt file
	cache := core.NewFingerprintCache(store, zap.NewNop())
	cache.Load(context.Background())
	assert.Equal(t, 0, cache.Size())

	key := core.ComputeKey("fresh", core.AnalysisScam)
	cache.Store(context.Background(), key, sampleVerdict)

	entries, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	store, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)

	entries, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
