package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/fraud-shield/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the CacheStore interface
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore connects to MySQL and ensures the cache table exists
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS fingerprint_cache (
			cache_key CHAR(64) PRIMARY KEY,
			verdict TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{
		db:     db,
		logger: logger,
	}, nil
}

// Load reads every persisted entry
func (s *MySQLStore) Load(ctx context.Context) (map[core.CacheKey]core.Verdict, error) {
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
func (s *MySQLStore) Put(ctx context.Context, key core.CacheKey, verdict core.Verdict) error {
	raw, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("failed to encode verdict: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fingerprint_cache (cache_key, verdict)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE
			verdict = VALUES(verdict)
	`, string(key), string(raw))
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}

	return nil
}

// Clear removes every entry
func (s *MySQLStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM fingerprint_cache`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Stop closes the database connection
func (s *MySQLStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
