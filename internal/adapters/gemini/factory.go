package gemini

import (
	"github.com/mikey/fraud-shield/internal/config"
	"github.com/mikey/fraud-shield/internal/core"
	"github.com/mikey/fraud-shield/internal/utils"
	"go.uber.org/zap"
)

// Factory creates new instances of GeminiClient
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for GeminiClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateAnalyzer creates a new GeminiClient
func (f *Factory) CreateAnalyzer() (core.Analyzer, error) {
	geminiCfg := f.cfg.GetGemini()
	llmCfg := f.cfg.GetLLM()

	return NewGeminiClient(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		llmCfg.Timeout,
		llmCfg.PreviewLength,
		f.logger,
		f.textProcessor,
	)
}
