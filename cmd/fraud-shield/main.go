package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/fraud-shield/internal/config"
	"github.com/mikey/fraud-shield/internal/core"
	"github.com/mikey/fraud-shield/internal/di"
	"github.com/mikey/fraud-shield/internal/ports"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Build the dependency injection container
	container, err := di.BuildContainer(*configFile)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

type runParams struct {
	dig.In

	Config   *config.Config
	Logger   *zap.Logger
	Frontend ports.Frontend
	Analyzer core.Analyzer
	Store    core.CacheStore
	History  core.HistoryLedger
}

// run is the main application function that gets all dependencies injected
func run(p runParams) error {
	logger := p.Logger
	defer logger.Sync()

	if p.Config.Watch() {
		logger.Info("Watching config file for changes",
			zap.String("file", p.Config.GetViper().ConfigFileUsed()))
	}

	// Start the HTTP server
	if err := p.Frontend.Start(); err != nil {
		logger.Error("Failed to start server", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("Shutting down...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), p.Config.GetServer().ShutdownTimeout)
	defer cancel()

	// Stop the server
	if err := p.Frontend.Stop(ctx); err != nil {
		logger.Error("Failed to stop server", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := p.Analyzer.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close analyzer", zap.Error(err))
		}
	}
	for _, res := range []interface{}{p.Store, p.History} {
		if stopper, ok := res.(interface{ Stop() }); ok {
			stopper.Stop()
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
