package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/fraud-shield/internal/config"
	"github.com/mikey/fraud-shield/internal/core"
	"github.com/mikey/fraud-shield/internal/factory"
	"github.com/mikey/fraud-shield/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Input flags
	Type      string
	Text      string
	URL       string
	InputFile string

	// Provider flags
	Provider   string
	ConfigFile string

	// Output flags
	JSONOutput    bool
	RecordHistory bool
	Verbose       bool
	JSONLog       bool
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags(args []string) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet("scan-cli", flag.ContinueOnError)

	// Input flags
	fs.StringVar(&flags.Type, "type", "scam", "Analysis type (scam, url, news)")
	fs.StringVar(&flags.Text, "text", "", "Text to scan")
	fs.StringVar(&flags.URL, "url", "", "URL to scan")
	fs.StringVar(&flags.InputFile, "file", "", "Read content from file (use stdin if no text, url or file is given)")

	// Provider flags
	fs.StringVar(&flags.Provider, "provider", "", "Analysis provider (mock, gemini, openai, bedrock); overrides the config file")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file")

	// Output flags
	fs.BoolVar(&flags.JSONOutput, "json", false, "Print the scan record as JSON")
	fs.BoolVar(&flags.RecordHistory, "history", false, "Append the scan record to the history ledger")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := config.Load(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		if flags.Provider != "" {
			cfg.Set("llm.provider", flags.Provider)
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideScanning(container); err != nil {
		return nil, err
	}

	// Register history ledger
	if err := container.Provide(factory.NewHistoryFactory); err != nil {
		return nil, err
	}

	// Register scan service without metrics
	if err := container.Provide(func(
		analyzer core.Analyzer,
		cache *core.FingerprintCache,
		logger *zap.Logger,
	) *core.ScanService {
		return core.NewScanService(analyzer, cache, logger, nil)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
