package utils

import (
	"fmt"
	"unicode/utf8"

	"github.com/mikey/fraud-shield/internal/core"
	"go.uber.org/zap"
)

// TextProcessor provides utilities for preparing content for an analyzer
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// Preview truncates text to at most maxRunes characters, appending "..."
// when anything was cut. A non-positive limit disables truncation.
func (tp *TextProcessor) Preview(text string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	cut := 0
	for i := range text {
		if cut == maxRunes {
			tp.logger.Debug("Content truncated for prompt",
				zap.Int("original_size", len(text)),
				zap.Int("truncated_size", i),
				zap.Int("max_runes", maxRunes))
			return text[:i] + "..."
		}
		cut++
	}
	return text
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	// Drop invalid UTF-8 sequences
	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(text[i:])
			if size == 1 {
				continue
			}
		}
		result = append(result, r)
	}

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(string(result))))

	return string(result)
}

// ProcessText sanitizes and truncates text in one operation
func (tp *TextProcessor) ProcessText(text string, maxRunes int) string {
	return tp.Preview(tp.SanitizeUTF8(text), maxRunes)
}

const promptFormat = `Analyze this for scams/phishing/fake-news: "%s".%s Score 0 means completely safe and 100 means maximum risk. Respond JSON only: {verdict:"scam"|"safe"|"suspicious",score:0-100,reason:"brief explanation",category:"%s"}`

// SystemPrompt is sent as the system message to chat-style backends
const SystemPrompt = "You are FraudShield AI, an expert in detecting scams, phishing, and fake news. Respond with a JSON object only."

// BuildPrompt renders the bounded analysis prompt for a request
func (tp *TextProcessor) BuildPrompt(req *core.ScanRequest, maxRunes int) string {
	preview := tp.ProcessText(req.Text, maxRunes)

	urlLine := ""
	if req.URL != "" && req.URL != req.Text {
		urlLine = fmt.Sprintf(" URL: %s.", tp.ProcessText(req.URL, maxRunes))
	}

	return fmt.Sprintf(promptFormat, preview, urlLine, req.Type)
}
