package openai

import (
	"github.com/mikey/fraud-shield/internal/config"
	"github.com/mikey/fraud-shield/internal/core"
	"github.com/mikey/fraud-shield/internal/utils"
	"go.uber.org/zap"
)

// Factory creates new instances of OpenAIClient
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for OpenAIClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateAnalyzer creates a new OpenAIClient
func (f *Factory) CreateAnalyzer() (core.Analyzer, error) {
	openaiCfg := f.cfg.GetOpenAI()
	llmCfg := f.cfg.GetLLM()

	if openaiCfg.APIKey == "" {
		f.logger.Warn("OpenAI API key is not set, analyses will fail until it is configured")
	}

	return NewOpenAIClient(
		NewAPIClient(openaiCfg.APIKey, openaiCfg.BaseURL),
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		llmCfg.Timeout,
		llmCfg.PreviewLength,
		f.logger,
		f.textProcessor,
	), nil
}
