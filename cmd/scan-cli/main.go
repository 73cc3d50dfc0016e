package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mikey/fraud-shield/internal/core"
	"github.com/mikey/fraud-shield/internal/di"
	"github.com/mikey/fraud-shield/internal/factory"
	"go.uber.org/zap"
)

func main() {
	flags, err := di.ParseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(func(
		flags *di.CLIFlags,
		logger *zap.Logger,
		service *core.ScanService,
		store core.CacheStore,
		historyFactory *factory.HistoryFactory,
	) error {
		defer logger.Sync()
		if stopper, ok := store.(interface{ Stop() }); ok {
			defer stopper.Stop()
		}
		return run(flags, logger, service, historyFactory, os.Stdin, os.Stdout)
	}); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	service *core.ScanService,
	historyFactory *factory.HistoryFactory,
	stdin io.Reader,
	stdout io.Writer,
) error {
	analysisType, err := core.ParseAnalysisType(flags.Type)
	if err != nil {
		return err
	}

	req, err := buildRequest(flags, analysisType, stdin, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	record, err := service.Handle(context.Background(), req)
	if err != nil {
		return err
	}
	duration := time.Since(start)

	if flags.RecordHistory {
		ledger, err := historyFactory.CreateHistoryLedger()
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		if err := ledger.Append(context.Background(), record); err != nil {
			logger.Error("Failed to append scan to history", zap.Error(err))
		}
		if stopper, ok := ledger.(interface{ Stop() }); ok {
			stopper.Stop()
		}
	}

	if flags.JSONOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	printRecord(stdout, record, service.Provider(), duration)
	return nil
}

// buildRequest reads the content from flags, a file or stdin
func buildRequest(flags *di.CLIFlags, analysisType core.AnalysisType, stdin io.Reader, logger *zap.Logger) (*core.ScanRequest, error) {
	req := &core.ScanRequest{Type: analysisType, Text: flags.Text, URL: flags.URL}
	if req.Text != "" || req.URL != "" {
		return req, nil
	}

	var reader io.Reader = stdin
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		reader = file
		logger.Info("Reading content from file", zap.String("file", flags.InputFile))
	} else {
		logger.Info("Reading content from stdin")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	req.Text = strings.TrimRight(string(data), "\r\n")
	return req, nil
}

func printRecord(w io.Writer, record *core.ScanRecord, provider string, duration time.Duration) {
	fmt.Fprintf(w, "\n=== Scan Result ===\n")
	fmt.Fprintf(w, "ID: %s\n", record.ID)
	fmt.Fprintf(w, "Type: %s\n", record.Type)
	fmt.Fprintf(w, "Provider: %s\n", provider)
	fmt.Fprintf(w, "Verdict: %s\n", record.Verdict)
	fmt.Fprintf(w, "Score: %d/100\n", record.Score)
	fmt.Fprintf(w, "Category: %s\n", record.Category)
	fmt.Fprintf(w, "Reason: %s\n", record.Reason)
	if record.Failure != "" {
		fmt.Fprintf(w, "Failure: %s\n", record.Failure)
	}
	if len(record.SuggestedSources) > 0 {
		fmt.Fprintf(w, "Sources: %s\n", strings.Join(record.SuggestedSources, ", "))
	}
	fmt.Fprintf(w, "Cached: %t\n", record.Cached)
	fmt.Fprintf(w, "Processing time: %v\n", duration)
}
