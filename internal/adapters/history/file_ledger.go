package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mikey/fraud-shield/internal/core"
	"github.com/mikey/fraud-shield/internal/utils"
	"go.uber.org/zap"
)

// FileLedger keeps scan history as a JSON array, newest record first.
// The file is reread on every call and rewritten atomically on every change.
// A file that cannot be decoded is moved aside to <path>.corrupt-<timestamp>
// and the history starts over empty.
type FileLedger struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileLedger creates a file-backed ledger, creating the parent directory
// if needed
func NewFileLedger(path string, logger *zap.Logger) (*FileLedger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	return &FileLedger{
		path:   path,
		logger: logger,
	}, nil
}

// Append inserts a record at the front of the history
func (l *FileLedger) Append(ctx context.Context, record *core.ScanRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := l.read()
	records = append([]*core.ScanRecord{record}, records...)
	return l.write(records)
}

// List returns every record, newest first
func (l *FileLedger) List(ctx context.Context) ([]*core.ScanRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.read(), nil
}

// Get returns the record with the given id
func (l *FileLedger) Get(ctx context.Context, id string) (*core.ScanRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, record := range l.read() {
		if record.ID == id {
			return record, nil
		}
	}
	return nil, core.ErrRecordNotFound
}

// Delete removes the record with the given id. Deleting an unknown id is
// not an error.
func (l *FileLedger) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := l.read()
	kept := records[:0]
	for _, record := range records {
		if record.ID != id {
			kept = append(kept, record)
		}
	}
	return l.write(kept)
}

// Clear removes every record
func (l *FileLedger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.write([]*core.ScanRecord{})
}

// read loads the history file. Missing or unreadable files read as empty;
// undecodable ones are quarantined first.
func (l *FileLedger) read() []*core.ScanRecord {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Error("Failed to read history", zap.Error(err), zap.String("path", l.path))
		}
		return []*core.ScanRecord{}
	}

	records := []*core.ScanRecord{}
	if len(data) == 0 {
		return records
	}
	if err := json.Unmarshal(data, &records); err != nil {
		l.logger.Error("Failed to decode history", zap.Error(err), zap.String("path", l.path))
		l.quarantine()
		return []*core.ScanRecord{}
	}
	return records
}

// quarantine renames an undecodable history file so the next write does not
// destroy it
func (l *FileLedger) quarantine() {
	target := l.path + ".corrupt-" + time.Now().UTC().Format("20060102T150405.000000000")
	if err := os.Rename(l.path, target); err != nil {
		l.logger.Error("Failed to move corrupt history aside", zap.Error(err), zap.String("path", l.path))
		return
	}
	l.logger.Warn("Corrupt history moved aside", zap.String("path", l.path), zap.String("moved_to", target))
}

func (l *FileLedger) write(records []*core.ScanRecord) error {
	if err := utils.WriteJSONAtomic(l.path, records); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
