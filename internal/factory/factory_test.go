package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/fraud-shield/internal/adapters/cache"
	"github.com/mikey/fraud-shield/internal/adapters/history"
	"github.com/mikey/fraud-shield/internal/config"
	"github.com/mikey/fraud-shield/internal/core"
	"github.com/mikey/fraud-shield/internal/utils"
)

func testConfig(t *testing.T, overrides map[string]interface{}) *config.Config {
	t.Helper()
	v := config.NewEmptyViper()
	dir := t.TempDir()
	v.Set("cache.path", filepath.Join(dir, "cache.json"))
	v.Set("cache.sqlite_path", filepath.Join(dir, "db", "cache.db"))
	v.Set("history.path", filepath.Join(dir, "history.json"))
	v.Set("history.sqlite_path", filepath.Join(dir, "db", "history.db"))
	for k, val := range overrides {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func newLLMFactory(cfg *config.Config) *LLMFactory {
	logger := zap.NewNop()
	return NewLLMFactory(cfg, logger, utils.NewTextProcessor(logger))
}

func TestCreateAnalyzer(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"mock", "mock"},
		{"Gemini", "gemini"},
		{"openai", "openai"},
		{"bedrock", "bedrock"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			analyzer, err := newLLMFactory(testConfig(t, map[string]interface{}{"llm.provider": tt.provider})).CreateAnalyzer()
			require.NoError(t, err)
			assert.Equal(t, tt.want, analyzer.Provider())
		})
	}
}

func TestCreateAnalyzer_UnknownProvider(t *testing.T) {
	_, err := newLLMFactory(testConfig(t, map[string]interface{}{"llm.provider": "cohere"})).CreateAnalyzer()
	assert.Error(t, err)
}

func TestCreateAnalyzer_MissingKeyReportsAtScanTime(t *testing.T) {
	cfg := testConfig(t, map[string]interface{}{"llm.provider": "openai", "openai.api_key": ""})
	analyzer, err := newLLMFactory(cfg).CreateAnalyzer()
	require.NoError(t, err)

	verdict := analyzer.Analyze(context.Background(), &core.ScanRequest{Type: core.AnalysisScam, Text: "hello"})
	assert.Equal(t, core.FailureMissingCredential, verdict.Failure)
}

func TestCreateCacheStore(t *testing.T) {
	logger := zap.NewNop()

	store, err := NewCacheFactory(testConfig(t, nil), logger).CreateCacheStore()
	require.NoError(t, err)
	assert.IsType(t, &cache.FileStore{}, store)

	store, err = NewCacheFactory(testConfig(t, map[string]interface{}{"cache.type": "memory"}), logger).CreateCacheStore()
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryStore{}, store)

	store, err = NewCacheFactory(testConfig(t, map[string]interface{}{"cache.type": "sqlite"}), logger).CreateCacheStore()
	require.NoError(t, err)
	require.IsType(t, &cache.SQLiteStore{}, store)
	store.(*cache.SQLiteStore).Stop()

	_, err = NewCacheFactory(testConfig(t, map[string]interface{}{"cache.type": "redis"}), logger).CreateCacheStore()
	assert.Error(t, err)
}

func TestCreateFingerprintCache_LoadsEntries(t *testing.T) {
	logger := zap.NewNop()
	store := cache.NewMemoryStore()
	key := core.ComputeKey("hello", core.AnalysisScam)
	require.NoError(t, store.Put(context.Background(), key, core.Verdict{Verdict: core.VerdictSafe, SuggestedSources: []string{}}))

	fingerprints := NewCacheFactory(testConfig(t, nil), logger).CreateFingerprintCache(store)
	assert.Equal(t, 1, fingerprints.Size())
}

func TestCreateHistoryLedger(t *testing.T) {
	logger := zap.NewNop()

	ledger, err := NewHistoryFactory(testConfig(t, nil), logger).CreateHistoryLedger()
	require.NoError(t, err)
	assert.IsType(t, &history.FileLedger{}, ledger)

	ledger, err = NewHistoryFactory(testConfig(t, map[string]interface{}{"history.type": "sqlite"}), logger).CreateHistoryLedger()
	require.NoError(t, err)
	require.IsType(t, &history.SQLiteLedger{}, ledger)
	ledger.(*history.SQLiteLedger).Stop()

	_, err = NewHistoryFactory(testConfig(t, map[string]interface{}{"history.type": "postgres"}), logger).CreateHistoryLedger()
	assert.Error(t, err)
}
