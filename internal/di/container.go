package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/fraud-shield/internal/config"
	"github.com/mikey/fraud-shield/internal/core"
	"github.com/mikey/fraud-shield/internal/factory"
	"github.com/mikey/fraud-shield/internal/logging"
	"github.com/mikey/fraud-shield/internal/metrics"
	"github.com/mikey/fraud-shield/internal/ports"
	"github.com/mikey/fraud-shield/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
// for the server
func BuildContainer(configFile string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		return config.Load(configFile)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideScanning(container); err != nil {
		return nil, err
	}

	// Register history ledger
	if err := container.Provide(factory.NewHistoryFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.HistoryFactory) (core.HistoryLedger, error) {
		return f.CreateHistoryLedger()
	}); err != nil {
		return nil, err
	}

	// Register metrics registry
	if err := container.Provide(func() *prometheus.Registry {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return reg
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(reg *prometheus.Registry) prometheus.Gatherer {
		return reg
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(reg *prometheus.Registry, cache *core.FingerprintCache) (core.ScanObserver, error) {
		return metrics.NewRecorder(reg, cache)
	}); err != nil {
		return nil, err
	}

	// Register scan service
	if err := container.Provide(core.NewScanService); err != nil {
		return nil, err
	}

	// Register HTTP frontend
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FrontendFactory) ports.Frontend {
		return f.CreateFrontend()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideScanning registers the text processor, analyzer and fingerprint
// cache shared by the server and the CLI
func provideScanning(container *dig.Container) error {
	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}

	// Register analyzer
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.LLMFactory) (core.Analyzer, error) {
		return f.CreateAnalyzer()
	}); err != nil {
		return err
	}

	// Register fingerprint cache
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheStore, error) {
		return f.CreateCacheStore()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.CacheFactory, store core.CacheStore, logger *zap.Logger) *core.FingerprintCache {
		fingerprints := f.CreateFingerprintCache(store)
		logger.Info("Fingerprint cache loaded", zap.Int("entries", fingerprints.Size()))
		return fingerprints
	}); err != nil {
		return err
	}

	return nil
}
