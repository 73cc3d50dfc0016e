package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/fraud-shield/internal/core"
	"go.uber.org/zap"
)

// SQLiteLedger is a SQLite implementation of the HistoryLedger interface
type SQLiteLedger struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteLedger opens (and if needed creates) a SQLite history ledger
func NewSQLiteLedger(dbPath string, logger *zap.Logger) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scan_history (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL,
			user_input TEXT NOT NULL,
			scan_type TEXT NOT NULL,
			score INTEGER NOT NULL,
			verdict TEXT NOT NULL,
			reason TEXT NOT NULL,
			category TEXT NOT NULL,
			suggested_sources TEXT NOT NULL,
			cached BOOLEAN NOT NULL,
			failure TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteLedger{
		db:     db,
		logger: logger,
	}, nil
}

const selectColumns = `id, created_at, user_input, scan_type, score, verdict, reason, category, suggested_sources, cached, failure`

// Append inserts a record
func (l *SQLiteLedger) Append(ctx context.Context, record *core.ScanRecord) error {
	sources, err := json.Marshal(record.SuggestedSources)
	if err != nil {
		return fmt.Errorf("failed to encode suggested sources: %w", err)
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO scan_history (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.Timestamp.UTC().Format(time.RFC3339Nano),
		record.UserInput,
		string(record.Type),
		record.Score,
		string(record.Verdict),
		record.Reason,
		record.Category,
		string(sources),
		record.Cached,
		string(record.Failure),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}
	return nil
}

// List returns every record, newest first
func (l *SQLiteLedger) List(ctx context.Context) ([]*core.ScanRecord, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM scan_history ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := []*core.ScanRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}
	return records, nil
}

// Get returns the record with the given id
func (l *SQLiteLedger) Get(ctx context.Context, id string) (*core.ScanRecord, error) {
	row := l.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM scan_history WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrRecordNotFound
	}
	return record, err
}

// Delete removes the record with the given id
func (l *SQLiteLedger) Delete(ctx context.Context, id string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM scan_history WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete history record: %w", err)
	}
	return nil
}

// Clear removes every record
func (l *SQLiteLedger) Clear(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM scan_history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Stop closes the database connection
func (l *SQLiteLedger) Stop() {
	if err := l.db.Close(); err != nil {
		l.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*core.ScanRecord, error) {
	var (
		record            core.ScanRecord
		createdAt         string
		scanType, verdict string
		sources, failure  string
	)

	err := row.Scan(
		&record.ID,
		&createdAt,
		&record.UserInput,
		&scanType,
		&record.Score,
		&verdict,
		&record.Reason,
		&record.Category,
		&sources,
		&record.Cached,
		&failure,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan history row: %w", err)
	}

	record.Timestamp, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	record.Type = core.AnalysisType(scanType)
	record.Verdict = core.VerdictKind(verdict)
	record.Failure = core.FailureKind(failure)

	record.SuggestedSources = []string{}
	if err := json.Unmarshal([]byte(sources), &record.SuggestedSources); err != nil {
		return nil, fmt.Errorf("failed to decode suggested sources: %w", err)
	}

	return &record, nil
}
