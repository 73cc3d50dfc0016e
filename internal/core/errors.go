package core

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyContent is returned when a submission has nothing to scan
	ErrEmptyContent = errors.New("missing content to scan")
	// ErrRecordNotFound is returned when a history record does not exist
	ErrRecordNotFound = errors.New("record not found")
)

// UnknownAnalysisTypeError is returned for an unsupported analysis type name
type UnknownAnalysisTypeError struct {
	Name string
}

func (e *UnknownAnalysisTypeError) Error() string {
	return fmt.Sprintf("unknown analysis type: %q", e.Name)
}

// FailureKind names why an analyzer could not produce a classification
type FailureKind string

const (
	FailureMissingCredential FailureKind = "MissingCredential"
	FailureBackendHTTP       FailureKind = "BackendHttpError"
	FailureEmptyReply        FailureKind = "EmptyReply"
	FailureNoJSON            FailureKind = "NoJsonFound"
	FailureMalformedJSON     FailureKind = "MalformedJson"
	FailureNetworkOrTimeout  FailureKind = "NetworkOrTimeout"
)

// AnalysisError is the error type used inside analyzers. It is converted
// into an error verdict at the analyzer boundary with VerdictFromError.
type AnalysisError struct {
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (e *AnalysisError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewAnalysisError wraps err with a failure kind
func NewAnalysisError(kind FailureKind, err error) *AnalysisError {
	return &AnalysisError{Kind: kind, Err: err}
}

// NewHTTPStatusError builds a BackendHttpError for a non-2xx reply
func NewHTTPStatusError(provider string, status int, err error) *AnalysisError {
	return &AnalysisError{
		Kind:       FailureBackendHTTP,
		StatusCode: status,
		Err:        fmt.Errorf("%s API request failed with status %d: %w", provider, status, err),
	}
}

// statusCoder is implemented by the HTTP response errors of the AWS and
// Google API clients
type statusCoder interface {
	HTTPStatusCode() int
}

type httpCoder interface {
	HTTPCode() int
}

// ClassifyTransportError maps an error returned by a backend client to a
// failure kind. Errors carrying an HTTP status become BackendHttpError,
// everything else is treated as a network failure or timeout.
func ClassifyTransportError(provider string, err error) *AnalysisError {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae
	}

	var sc statusCoder
	if errors.As(err, &sc) && sc.HTTPStatusCode() > 0 {
		return NewHTTPStatusError(provider, sc.HTTPStatusCode(), err)
	}
	var hc httpCoder
	if errors.As(err, &hc) && hc.HTTPCode() > 0 {
		return NewHTTPStatusError(provider, hc.HTTPCode(), err)
	}

	return NewAnalysisError(FailureNetworkOrTimeout, fmt.Errorf("%s provider error: %w", provider, err))
}

// VerdictFromError converts an analyzer failure into an error verdict.
// Credential failures are categorised as configuration problems.
func VerdictFromError(err error, analysisType AnalysisType) Verdict {
	kind := FailureNetworkOrTimeout
	var ae *AnalysisError
	if errors.As(err, &ae) {
		kind = ae.Kind
	}

	category := string(analysisType)
	if kind == FailureMissingCredential {
		category = "configuration"
	}

	return Verdict{
		Verdict:          VerdictError,
		Score:            0,
		Reason:           err.Error(),
		Category:         category,
		SuggestedSources: []string{},
		Failure:          kind,
	}
}
