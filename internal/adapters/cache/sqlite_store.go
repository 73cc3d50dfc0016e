package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/fraud-shield/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the CacheStore interface
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (and if needed creates) a SQLite cache store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Writes are serialized by the fingerprint cache
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS fingerprint_cache (
			cache_key TEXT PRIMARY KEY,
			verdict TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

// Load reads every persisted entry. Rows that fail to decode are skipped.
func (s *SQLiteStore) Load(ctx context.Context) (map[core.CacheKey]core.Verdict, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT cache_key, verdict FROM fingerprint_cache`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}
	defer rows.Close()

	entries := make(map[core.CacheKey]core.Verdict)
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan cache row: %w", err)
		}

		var verdict core.Verdict
		if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
			s.logger.Warn("Skipping undecodable cache row", zap.String("key", key), zap.Error(err))
			continue
		}
		entries[core.CacheKey(key)] = verdict
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cache rows: %w", err)
	}

	return entries, nil
}

// Put upserts an entry
func (s *SQLiteStore) Put(ctx context.Context, key core.CacheKey, verdict core.Verdict) error {
	raw, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("failed to encode verdict: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO fingerprint_cache (cache_key, verdict, updated_at)
		VALUES (?, ?, ?)
	`, string(key), string(raw), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}

	return nil
}

// Clear removes every entry
func (s *SQLiteStore) Clear(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM fingerprint_cache`)
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during clear", zap.Error(err))
	} else {
		s.logger.Debug("Cleared cache entries", zap.Int64("count", rowsAffected))
	}

	return nil
}

// Stop closes the database connection
func (s *SQLiteStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
