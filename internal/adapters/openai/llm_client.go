package openai

import (
	"context"
	"errors"
	"time"

	"github.com/mikey/fraud-shield/internal/core"
	"github.com/mikey/fraud-shield/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const providerName = "openai"

// OpenAIClient is an implementation of the Analyzer interface using the
// OpenAI chat completions API
type OpenAIClient struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	timeout       time.Duration
	previewLength int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewOpenAIClient creates a new OpenAI analyzer. A nil client means no API
// key was configured.
func NewOpenAIClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	timeout time.Duration,
	previewLength int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIClient {
	return &OpenAIClient{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		timeout:       timeout,
		previewLength: previewLength,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// NewAPIClient builds the underlying go-openai client. It returns nil for an
// empty API key.
func NewAPIClient(apiKey, baseURL string) *openai.Client {
	if apiKey == "" {
		return nil
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// Provider returns the backend name
func (c *OpenAIClient) Provider() string {
	return providerName
}

// Analyze classifies the request with an OpenAI chat model
func (c *OpenAIClient) Analyze(ctx context.Context, req *core.ScanRequest) core.Verdict {
	verdict, err := c.analyze(ctx, req)
	if err != nil {
		c.logger.Warn("OpenAI analysis failed",
			zap.String("type", string(req.Type)),
			zap.Error(err))
		return core.VerdictFromError(err, req.Type)
	}
	return verdict
}

func (c *OpenAIClient) analyze(ctx context.Context, req *core.ScanRequest) (core.Verdict, error) {
	if c.client == nil {
		return core.Verdict{}, core.NewAnalysisError(core.FailureMissingCredential,
			errors.New("OpenAI API key not configured"))
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	chatReq := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: utils.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: c.textProcessor.BuildPrompt(req, c.previewLength),
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return core.Verdict{}, classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return core.Verdict{}, core.NewAnalysisError(core.FailureEmptyReply,
			errors.New("empty API response: no choices returned"))
	}

	text := resp.Choices[0].Message.Content
	c.logger.Debug("OpenAI reply received",
		zap.String("model", c.modelName),
		zap.String("completion_id", resp.ID),
		zap.Int("reply_size", len(text)))

	return utils.ParseVerdictReply(text)
}

func classifyError(err error) *core.AnalysisError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return core.NewHTTPStatusError(providerName, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return core.NewHTTPStatusError(providerName, reqErr.HTTPStatusCode, err)
	}
	return core.ClassifyTransportError(providerName, err)
}
