package factory

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mikey/fraud-shield/internal/adapters/httpapi"
	"github.com/mikey/fraud-shield/internal/config"
	"github.com/mikey/fraud-shield/internal/core"
	"github.com/mikey/fraud-shield/internal/ports"
)

// FrontendFactory creates the HTTP frontend
type FrontendFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	service  *core.ScanService
	cache    *core.FingerprintCache
	history  core.HistoryLedger
	gatherer prometheus.Gatherer
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.ScanService,
	cache *core.FingerprintCache,
	history core.HistoryLedger,
	gatherer prometheus.Gatherer,
) *FrontendFactory {
	return &FrontendFactory{
		cfg:      cfg,
		logger:   logger,
		service:  service,
		cache:    cache,
		history:  history,
		gatherer: gatherer,
	}
}

// CreateFrontend creates the HTTP API server
func (f *FrontendFactory) CreateFrontend() ports.Frontend {
	return httpapi.NewServer(f.service, f.cache, f.history, f.gatherer, f.logger, f.cfg.GetServer())
}
