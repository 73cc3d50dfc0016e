package core

import (
	"encoding/json"
	"time"
)

// TimestampLayout is RFC3339 in UTC with exactly three fractional digits
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// AnalysisType identifies which kind of submission is being scanned
type AnalysisType string

const (
	AnalysisScam AnalysisType = "scam"
	AnalysisURL  AnalysisType = "url"
	AnalysisNews AnalysisType = "news"
)

// ParseAnalysisType validates an analysis type name
func ParseAnalysisType(s string) (AnalysisType, error) {
	switch t := AnalysisType(s); t {
	case AnalysisScam, AnalysisURL, AnalysisNews:
		return t, nil
	default:
		return "", &UnknownAnalysisTypeError{Name: s}
	}
}

// VerdictKind is the classification outcome
type VerdictKind string

const (
	VerdictSafe       VerdictKind = "safe"
	VerdictSuspicious VerdictKind = "suspicious"
	VerdictScam       VerdictKind = "scam"
	VerdictError      VerdictKind = "error"

	// VerdictUnknown is only produced by the scan service for a verdict that
	// is absent altogether. Analyzers never return it.
	VerdictUnknown VerdictKind = "unknown"
)

// IsClassification reports whether k is one of the three analysis outcomes
func (k VerdictKind) IsClassification() bool {
	return k == VerdictSafe || k == VerdictSuspicious || k == VerdictScam
}

// Verdict is the normalized output of an analyzer.
// Score runs from 0 (completely safe) to 100 (maximum risk).
type Verdict struct {
	Verdict          VerdictKind `json:"verdict"`
	Score            int         `json:"score"`
	Reason           string      `json:"reason"`
	Category         string      `json:"category"`
	SuggestedSources []string    `json:"suggestedSources"`
	Failure          FailureKind `json:"failure,omitempty"`
}

// IsError reports whether the verdict represents a failed analysis
func (v Verdict) IsError() bool {
	return v.Verdict == VerdictError
}

// ScanRequest is a single submission to be classified
type ScanRequest struct {
	Type AnalysisType
	Text string
	URL  string
}

// ScanRecord is the finished, immutable result of one scan request
type ScanRecord struct {
	ID               string       `json:"id"`
	Timestamp        time.Time    `json:"timestamp"`
	UserInput        string       `json:"userInput"`
	Type             AnalysisType `json:"type"`
	Score            int          `json:"score"`
	Verdict          VerdictKind  `json:"verdict"`
	Reason           string       `json:"reason"`
	Category         string       `json:"category"`
	SuggestedSources []string     `json:"suggestedSources"`
	Cached           bool         `json:"cached"`
	Failure          FailureKind  `json:"failure,omitempty"`
}

// MarshalJSON encodes the timestamp with fixed millisecond precision
func (r ScanRecord) MarshalJSON() ([]byte, error) {
	type plain ScanRecord
	return json.Marshal(struct {
		plain
		Timestamp string `json:"timestamp"`
	}{
		plain:     plain(r),
		Timestamp: r.Timestamp.UTC().Format(TimestampLayout),
	})
}
