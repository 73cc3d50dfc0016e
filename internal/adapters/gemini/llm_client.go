package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/fraud-shield/internal/core"
	"github.com/mikey/fraud-shield/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const providerName = "gemini"

// GeminiClient is an implementation of the Analyzer interface using Google Gemini
type GeminiClient struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	timeout       time.Duration
	previewLength int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeminiClient creates a new Gemini analyzer. An empty API key is not an
// error here: every analysis then reports a missing credential. Extra client
// options are passed through to genai, after the API key.
func NewGeminiClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	timeout time.Duration,
	previewLength int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	opts ...option.ClientOption,
) (*GeminiClient, error) {
	c := &GeminiClient{
		modelName:     modelName,
		timeout:       timeout,
		previewLength: previewLength,
		logger:        logger,
		textProcessor: textProcessor,
	}

	if apiKey == "" {
		logger.Warn("Gemini API key is not set, analyses will fail until it is configured")
		return c, nil
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(context.Background(), clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(utils.SystemPrompt)},
	}
	model.ResponseMIMEType = "application/json"

	c.client = client
	c.model = model
	return c, nil
}

// Provider returns the backend name
func (c *GeminiClient) Provider() string {
	return providerName
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Analyze classifies the request with Gemini
func (c *GeminiClient) Analyze(ctx context.Context, req *core.ScanRequest) core.Verdict {
	verdict, err := c.analyze(ctx, req)
	if err != nil {
		c.logger.Warn("Gemini analysis failed",
			zap.String("type", string(req.Type)),
			zap.Error(err))
		return core.VerdictFromError(err, req.Type)
	}
	return verdict
}

func (c *GeminiClient) analyze(ctx context.Context, req *core.ScanRequest) (core.Verdict, error) {
	if c.model == nil {
		return core.Verdict{}, core.NewAnalysisError(core.FailureMissingCredential,
			errors.New("Gemini API key not configured"))
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	prompt := c.textProcessor.BuildPrompt(req, c.previewLength)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return core.Verdict{}, classifyError(err)
	}

	text := replyText(resp)
	c.logger.Debug("Gemini reply received",
		zap.String("model", c.modelName),
		zap.Int("reply_size", len(text)))

	return utils.ParseVerdictReply(text)
}

// replyText concatenates the text parts of the first candidate
func replyText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

func classifyError(err error) *core.AnalysisError {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code > 0 {
		return core.NewHTTPStatusError(providerName, gerr.Code, err)
	}
	return core.ClassifyTransportError(providerName, err)
}
