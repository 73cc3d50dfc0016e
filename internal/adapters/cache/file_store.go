package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/mikey/fraud-shield/internal/core"
	"github.com/mikey/fraud-shield/internal/utils"
	"go.uber.org/zap"
)

// FileStore persists the fingerprint cache as a single JSON object mapping
// hex keys to verdicts. Every mutation rewrites the whole file atomically.
type FileStore struct {
	path    string
	logger  *zap.Logger
	mu      sync.Mutex
	entries map[core.CacheKey]core.Verdict
}

// NewFileStore creates a file-backed cache store, creating the parent
// directory if needed
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &FileStore{
		path:    path,
		logger:  logger,
		entries: make(map[core.CacheKey]core.Verdict),
	}, nil
}

// Load reads the cache file. A missing file is an empty cache.
func (s *FileStore) Load(ctx context.Context) (map[core.CacheKey]core.Verdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("No cache file yet", zap.String("path", s.path))
			return map[core.CacheKey]core.Verdict{}, nil
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	entries := make(map[core.CacheKey]core.Verdict)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode cache file %s: %w", s.path, err)
		}
	}

	s.entries = entries

	out := make(map[core.CacheKey]core.Verdict, len(entries))
	for k, v := range entries {
		out[k] = v
	}
	return out, nil
}

// Put records an entry and rewrites the file
func (s *FileStore) Put(ctx context.Context, key core.CacheKey, verdict core.Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = verdict
	return utils.WriteJSONAtomic(s.path, s.entries)
}

// Clear rewrites the file as an empty object
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[core.CacheKey]core.Verdict)
	return utils.WriteJSONAtomic(s.path, s.entries)
}
