package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/mikey/fraud-shield/internal/core"
)

func TestMockClient_Analyze(t *testing.T) {
	client := NewMockClient(90, 60, 10, zap.NewNop())

	tests := []struct {
		name    string
		req     core.ScanRequest
		verdict core.VerdictKind
		score   int
	}{
		{
			name:    "prize lure",
			req:     core.ScanRequest{Type: core.AnalysisScam, Text: "You won a prize! Click now to claim, urgent!"},
			verdict: core.VerdictScam,
			score:   90,
		},
		{
			name:    "credential harvesting",
			req:     core.ScanRequest{Type: core.AnalysisScam, Text: "Share your OTP with the BANK agent"},
			verdict: core.VerdictScam,
			score:   90,
		},
		{
			name:    "bare link",
			req:     core.ScanRequest{Type: core.AnalysisURL, Text: "https://example.com/login", URL: "https://example.com/login"},
			verdict: core.VerdictSuspicious,
			score:   60,
		},
		{
			name:    "embedded link",
			req:     core.ScanRequest{Type: core.AnalysisNews, Text: "Read the full story at http://news.example"},
			verdict: core.VerdictSuspicious,
			score:   60,
		},
		{
			name:    "harmless text",
			req:     core.ScanRequest{Type: core.AnalysisNews, Text: "The city council met on Tuesday."},
			verdict: core.VerdictSafe,
			score:   10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := client.Analyze(context.Background(), &tt.req)

			assert.Equal(t, tt.verdict, v.Verdict)
			assert.Equal(t, tt.score, v.Score)
			assert.NotEmpty(t, v.Reason)
			assert.Equal(t, string(tt.req.Type), v.Category)
			assert.NotNil(t, v.SuggestedSources)
			assert.False(t, v.IsError())
		})
	}
}

func TestMockClient_Deterministic(t *testing.T) {
	client := NewMockClient(90, 60, 10, zap.NewNop())
	req := &core.ScanRequest{Type: core.AnalysisScam, Text: "urgent: verify now"}

	assert.Equal(t, client.Analyze(context.Background(), req), client.Analyze(context.Background(), req))
	assert.Equal(t, "mock", client.Provider())
}
