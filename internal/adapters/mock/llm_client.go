package mock

import (
	"context"
	"strings"

	"github.com/mikey/fraud-shield/internal/core"
	"go.uber.org/zap"
)

// scamKeywords are terms typical of prize, urgency and credential-harvesting lures
var scamKeywords = []string{"prize", "won", "click", "otp", "bank", "urgent"}

// MockClient is an offline Analyzer that classifies content by keyword sniffing
type MockClient struct {
	scamScore       int
	suspiciousScore int
	safeScore       int
	logger          *zap.Logger
}

// NewMockClient creates a new keyword-based analyzer
func NewMockClient(scamScore, suspiciousScore, safeScore int, logger *zap.Logger) *MockClient {
	return &MockClient{
		scamScore:       scamScore,
		suspiciousScore: suspiciousScore,
		safeScore:       safeScore,
		logger:          logger,
	}
}

// Provider returns the backend name
func (c *MockClient) Provider() string {
	return "mock"
}

// Analyze classifies the request without any network access
func (c *MockClient) Analyze(ctx context.Context, req *core.ScanRequest) core.Verdict {
	lowered := strings.ToLower(req.Text)

	verdict := core.Verdict{
		Verdict:          core.VerdictSafe,
		Score:            c.safeScore,
		Reason:           "Mocked: no common scam indicators found",
		Category:         string(req.Type),
		SuggestedSources: []string{},
	}

	switch {
	case containsAny(lowered, scamKeywords):
		verdict.Verdict = core.VerdictScam
		verdict.Score = c.scamScore
		verdict.Reason = "Mocked: contains common scam keywords"
	case strings.Contains(lowered, "http"):
		verdict.Verdict = core.VerdictSuspicious
		verdict.Score = c.suspiciousScore
		verdict.Reason = "Mocked: suspicious URL detected"
	}

	c.logger.Debug("Mock analysis complete",
		zap.String("type", string(req.Type)),
		zap.String("verdict", string(verdict.Verdict)),
		zap.Int("score", verdict.Score))

	return verdict
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
