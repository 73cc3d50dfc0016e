package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/fraud-shield/internal/adapters/cache"
	"github.com/mikey/fraud-shield/internal/config"
	"github.com/mikey/fraud-shield/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates cache stores based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCacheStore creates the fingerprint cache backing store
func (f *CacheFactory) CreateCacheStore() (core.CacheStore, error) {
	cacheCfg := f.cfg.GetCache()

	switch cacheCfg.Type {
	case "file", "":
		return cache.NewFileStore(cacheCfg.Path, f.logger)
	case "memory":
		return cache.NewMemoryStore(), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cacheCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteStore(cacheCfg.SQLitePath, f.logger)
	case "mysql":
		return cache.NewMySQLStore(cacheCfg.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}

// CreateFingerprintCache creates the cache and loads its persisted entries
func (f *CacheFactory) CreateFingerprintCache(store core.CacheStore) *core.FingerprintCache {
	fingerprints := core.NewFingerprintCache(store, f.logger)
	fingerprints.Load(context.Background())
	return fingerprints
}
