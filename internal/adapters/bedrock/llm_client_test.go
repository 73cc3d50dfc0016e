package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/fraud-shield/internal/core"
	"github.com/mikey/fraud-shield/internal/utils"
)

type fakeInvoker struct {
	body  []byte
	err   error
	input *bedrockruntime.InvokeModelInput
}

func (f *fakeInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: f.body}, nil
}

type responseError struct{ status int }

func (e *responseError) Error() string       { return "https response error" }
func (e *responseError) HTTPStatusCode() int { return e.status }

func newTestClient(invoker ModelInvoker, modelID string) *BedrockClient {
	return NewBedrockClient(invoker, modelID, 500, 0.1, 0.9, time.Second, 500,
		zap.NewNop(), utils.NewTextProcessor(zap.NewNop()))
}

func TestAnalyze_Claude(t *testing.T) {
	invoker := &fakeInvoker{body: []byte(`{"content":[{"type":"text","text":"{\"verdict\":\"scam\",\"score\":91,\"reason\":\"otp request\",\"category\":\"scam\"}"}]}`)}
	client := newTestClient(invoker, "anthropic.claude-3-haiku-20240307-v1:0")

	verdict := client.Analyze(context.Background(), &core.ScanRequest{Type: core.AnalysisScam, Text: "Share your OTP"})

	assert.Equal(t, core.VerdictScam, verdict.Verdict)
	assert.Equal(t, 91, verdict.Score)
	require.NotNil(t, invoker.input)
	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", aws.ToString(invoker.input.ModelId))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(invoker.input.Body, &payload))
	assert.Equal(t, "bedrock-2023-05-31", payload["anthropic_version"])
	assert.Equal(t, utils.SystemPrompt, payload["system"])
	assert.Len(t, payload["messages"], 1)
}

func TestAnalyze_Titan(t *testing.T) {
	invoker := &fakeInvoker{body: []byte(`{"results":[{"outputText":"{\"verdict\":\"safe\",\"score\":3,\"reason\":\"benign\",\"category\":\"news\"}"}]}`)}
	client := newTestClient(invoker, "amazon.titan-text-express-v1")

	verdict := client.Analyze(context.Background(), &core.ScanRequest{Type: core.AnalysisNews, Text: "Local team wins"})

	assert.Equal(t, core.VerdictSafe, verdict.Verdict)
	assert.Equal(t, 3, verdict.Score)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(invoker.input.Body, &payload))
	assert.Contains(t, payload["inputText"], "Local team wins")
}

func TestAnalyze_TitanNoResults(t *testing.T) {
	client := newTestClient(&fakeInvoker{body: []byte(`{"results":[]}`)}, "amazon.titan-text-express-v1")

	verdict := client.Analyze(context.Background(), &core.ScanRequest{Type: core.AnalysisScam, Text: "x"})

	assert.Equal(t, core.FailureEmptyReply, verdict.Failure)
}

func TestAnalyze_GenericModel(t *testing.T) {
	client := newTestClient(&fakeInvoker{body: []byte(`{"output":"{\"verdict\":\"suspicious\",\"score\":\"47\"}"}`)}, "meta.llama3-8b-instruct-v1:0")

	verdict := client.Analyze(context.Background(), &core.ScanRequest{Type: core.AnalysisURL, Text: "http://x.test"})

	assert.Equal(t, core.VerdictSuspicious, verdict.Verdict)
	assert.Equal(t, 47, verdict.Score)
}

func TestAnalyze_HTTPStatusError(t *testing.T) {
	client := newTestClient(&fakeInvoker{err: &responseError{status: 403}}, "anthropic.claude-v2")

	verdict := client.Analyze(context.Background(), &core.ScanRequest{Type: core.AnalysisScam, Text: "x"})

	assert.Equal(t, core.VerdictError, verdict.Verdict)
	assert.Equal(t, core.FailureBackendHTTP, verdict.Failure)
	assert.Contains(t, verdict.Reason, "status 403")
}

func TestAnalyze_TransportError(t *testing.T) {
	client := newTestClient(&fakeInvoker{err: errors.New("dial tcp: connection refused")}, "anthropic.claude-v2")

	verdict := client.Analyze(context.Background(), &core.ScanRequest{Type: core.AnalysisScam, Text: "x"})

	assert.Equal(t, core.FailureNetworkOrTimeout, verdict.Failure)
	assert.Equal(t, "bedrock", client.Provider())
}

func TestAnalyze_UndecodableBody(t *testing.T) {
	client := newTestClient(&fakeInvoker{body: []byte(`not json`)}, "anthropic.claude-v2")

	verdict := client.Analyze(context.Background(), &core.ScanRequest{Type: core.AnalysisScam, Text: "x"})

	assert.Equal(t, core.FailureMalformedJSON, verdict.Failure)
}
