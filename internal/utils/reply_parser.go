package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mikey/fraud-shield/internal/core"
)

var (
	leadingJSONFence = regexp.MustCompile("(?i)^```json\\s*")
	leadingFence     = regexp.MustCompile("^```\\s*")
	trailingFence    = regexp.MustCompile("```\\s*$")

	// greedy: first '{' to last '}'
	jsonSpan = regexp.MustCompile(`(?s)\{.*\}`)

	// Quotes bare object keys. This can also rewrite a "word:" sequence
	// inside a string value, so it only runs after a strict parse failed.
	bareKey = regexp.MustCompile(`(\w+):`)
)

// replyPayload is the loosely-typed object a backend is asked to return
type replyPayload struct {
	Verdict          string          `json:"verdict"`
	Score            json.RawMessage `json:"score"`
	Reason           string          `json:"reason"`
	Category         string          `json:"category"`
	SuggestedSources []interface{}   `json:"suggestedSources"`
}

// StripCodeFences removes leading and trailing markdown code fences
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = leadingJSONFence.ReplaceAllString(text, "")
	text = leadingFence.ReplaceAllString(text, "")
	text = trailingFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ExtractJSONObject returns the span from the first '{' to the last '}'
func ExtractJSONObject(text string) (string, bool) {
	span := jsonSpan.FindString(text)
	return span, span != ""
}

// QuoteBareKeys rewrites `key:` as `"key":`
func QuoteBareKeys(text string) string {
	return bareKey.ReplaceAllString(text, `"$1":`)
}

// ParseVerdictReply turns raw backend text into a Verdict. Failures are
// returned as *core.AnalysisError with EmptyReply, NoJsonFound or
// MalformedJson.
func ParseVerdictReply(raw string) (core.Verdict, error) {
	text := StripCodeFences(raw)
	if text == "" {
		return core.Verdict{}, core.NewAnalysisError(core.FailureEmptyReply, errors.New("empty API response"))
	}

	span, ok := ExtractJSONObject(text)
	if !ok {
		return core.Verdict{}, core.NewAnalysisError(core.FailureNoJSON,
			fmt.Errorf("no JSON in response: %q", preview(text, 200)))
	}

	var payload replyPayload
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		repaired := QuoteBareKeys(span)
		payload = replyPayload{}
		if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
			return core.Verdict{}, core.NewAnalysisError(core.FailureMalformedJSON,
				fmt.Errorf("failed to parse response JSON: %w", err))
		}
	}

	return coerceVerdict(&payload)
}

func coerceVerdict(p *replyPayload) (core.Verdict, error) {
	kind := core.VerdictKind(strings.ToLower(strings.TrimSpace(p.Verdict)))
	if !kind.IsClassification() {
		return core.Verdict{}, core.NewAnalysisError(core.FailureMalformedJSON,
			fmt.Errorf("unrecognised verdict %q", p.Verdict))
	}

	sources := make([]string, 0, len(p.SuggestedSources))
	for _, s := range p.SuggestedSources {
		if str, ok := s.(string); ok && strings.TrimSpace(str) != "" {
			sources = append(sources, str)
		}
	}

	return core.Verdict{
		Verdict:          kind,
		Score:            CoerceScore(p.Score),
		Reason:           p.Reason,
		Category:         p.Category,
		SuggestedSources: sources,
	}, nil
}

// CoerceScore converts a JSON number or numeric string to an integer in
// 0..100. Anything else is 0.
func CoerceScore(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		f = parsed
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	score := int(math.Round(f))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
