package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/mikey/fraud-shield/internal/core"
	"github.com/mikey/fraud-shield/internal/utils"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *GeminiClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewGeminiClient("test-key", "gemini-test", 500, 0.1, 0.9, timeout, 500,
		zap.NewNop(), utils.NewTextProcessor(zap.NewNop()),
		option.WithEndpoint(server.URL),
		option.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func candidate(text string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{{
			"content": map[string]interface{}{
				"role":  "model",
				"parts": []map[string]string{{"text": text}},
			},
			"finishReason": "STOP",
		}},
	})
	return string(body)
}

type capturedRequest struct {
	path string
	body map[string]interface{}
}

func TestAnalyze_FencedReply(t *testing.T) {
	captured := make(chan capturedRequest, 1)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := capturedRequest{path: r.URL.Path}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &req.body)
		captured <- req

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, candidate("```json\n{\"verdict\":\"scam\",\"score\":93,\"reason\":\"fake courier fee\",\"category\":\"scam\"}\n```"))
	}, time.Second)

	verdict := client.Analyze(context.Background(), &core.ScanRequest{Type: core.AnalysisScam, Text: "Pay the parcel fee now"})

	assert.Equal(t, core.VerdictScam, verdict.Verdict)
	assert.Equal(t, 93, verdict.Score)
	assert.Equal(t, "fake courier fee", verdict.Reason)
	assert.Empty(t, verdict.Failure)

	req := <-captured
	assert.True(t, strings.HasSuffix(req.path, "models/gemini-test:generateContent"), req.path)
	require.NotNil(t, req.body)
	assert.Contains(t, req.body, "systemInstruction")
	assert.Contains(t, req.body, "generationConfig")
	contents, _ := json.Marshal(req.body["contents"])
	assert.Contains(t, string(contents), "Pay the parcel fee now")
}

func TestAnalyze_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`)
	}, time.Second)

	verdict := client.Analyze(context.Background(), &core.ScanRequest{Type: core.AnalysisURL, Text: "http://x.test"})

	assert.Equal(t, core.VerdictError, verdict.Verdict)
	assert.Equal(t, core.FailureBackendHTTP, verdict.Failure)
	assert.Contains(t, verdict.Reason, "status 403")
	assert.Equal(t, "url", verdict.Category)
}

func TestAnalyze_EmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[]}`)
	}, time.Second)

	verdict := client.Analyze(context.Background(), &core.ScanRequest{Type: core.AnalysisNews, Text: "headline"})

	assert.Equal(t, core.VerdictError, verdict.Verdict)
	assert.Equal(t, core.FailureEmptyReply, verdict.Failure)
}

func TestAnalyze_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 50*time.Millisecond)

	verdict := client.Analyze(context.Background(), &core.ScanRequest{Type: core.AnalysisScam, Text: "hello"})

	assert.Equal(t, core.VerdictError, verdict.Verdict)
	assert.Equal(t, core.FailureNetworkOrTimeout, verdict.Failure)
}

func TestAnalyze_MissingCredential(t *testing.T) {
	client, err := NewGeminiClient("", "gemini-2.0-flash-exp", 500, 0.1, 0.9, time.Second, 500,
		zap.NewNop(), utils.NewTextProcessor(zap.NewNop()))
	require.NoError(t, err)
	defer client.Close()

	verdict := client.Analyze(context.Background(), &core.ScanRequest{Type: core.AnalysisNews, Text: "headline"})

	assert.Equal(t, core.VerdictError, verdict.Verdict)
	assert.Equal(t, 0, verdict.Score)
	assert.Equal(t, "configuration", verdict.Category)
	assert.Equal(t, core.FailureMissingCredential, verdict.Failure)
	assert.Contains(t, verdict.Reason, "Gemini API key not configured")
	assert.NotNil(t, verdict.SuggestedSources)
	assert.Equal(t, "gemini", client.Provider())
}

func TestReplyText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text(`{"verdict":"scam",`),
				genai.Blob{MIMEType: "image/png"},
				genai.Text(`"score":80}`),
			}},
		}},
	}
	assert.Equal(t, `{"verdict":"scam","score":80}`, replyText(resp))

	assert.Empty(t, replyText(nil))
	assert.Empty(t, replyText(&genai.GenerateContentResponse{}))
	assert.Empty(t, replyText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))
}

func TestClassifyError(t *testing.T) {
	httpErr := classifyError(fmt.Errorf("generate: %w", &googleapi.Error{Code: 429, Message: "quota"}))
	assert.Equal(t, core.FailureBackendHTTP, httpErr.Kind)
	assert.Equal(t, 429, httpErr.StatusCode)
	assert.Contains(t, httpErr.Error(), "gemini API request failed with status 429")

	netErr := classifyError(context.DeadlineExceeded)
	assert.Equal(t, core.FailureNetworkOrTimeout, netErr.Kind)
	assert.True(t, errors.Is(netErr, context.DeadlineExceeded))
}
