package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/fraud-shield/internal/adapters/history"
	"github.com/mikey/fraud-shield/internal/config"
	"github.com/mikey/fraud-shield/internal/core"
	"go.uber.org/zap"
)

// HistoryFactory creates history ledgers based on configuration
type HistoryFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHistoryFactory creates a new history factory
func NewHistoryFactory(cfg *config.Config, logger *zap.Logger) *HistoryFactory {
	return &HistoryFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateHistoryLedger creates the scan history ledger
func (f *HistoryFactory) CreateHistoryLedger() (core.HistoryLedger, error) {
	historyCfg := f.cfg.GetHistory()

	switch historyCfg.Type {
	case "file", "":
		return history.NewFileLedger(historyCfg.Path, f.logger)
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(historyCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return history.NewSQLiteLedger(historyCfg.SQLitePath, f.logger)
	default:
		return nil, fmt.Errorf("unsupported history type: %s", historyCfg.Type)
	}
}
