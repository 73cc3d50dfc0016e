package factory

import (
	"github.com/mikey/fraud-shield/internal/adapters/bedrock"
	"github.com/mikey/fraud-shield/internal/adapters/gemini"
	"github.com/mikey/fraud-shield/internal/adapters/mock"
	"github.com/mikey/fraud-shield/internal/adapters/openai"
	"github.com/mikey/fraud-shield/internal/config"
	"github.com/mikey/fraud-shield/internal/core"
	"github.com/mikey/fraud-shield/internal/utils"
	"go.uber.org/zap"
)

// LLMFactory creates analyzers for the configured provider
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateAnalyzer creates a new analyzer based on the configuration. An
// unknown provider name is rejected here rather than at scan time.
func (f *LLMFactory) CreateAnalyzer() (core.Analyzer, error) {
	provider, err := config.ParseProviderKind(f.cfg.GetLLM().Provider)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Using analysis provider", zap.String("provider", string(provider)))

	switch provider {
	case config.ProviderGemini:
		return gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateAnalyzer()
	case config.ProviderOpenAI:
		return openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateAnalyzer()
	case config.ProviderBedrock:
		return bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateAnalyzer()
	default:
		mockCfg := f.cfg.GetMock()
		return mock.NewMockClient(mockCfg.ScamScore, mockCfg.SuspiciousScore, mockCfg.SafeScore, f.logger), nil
	}
}
