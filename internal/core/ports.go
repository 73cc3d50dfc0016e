package core

import (
	"context"
	"time"
)

// Analyzer classifies content through one analysis backend
type Analyzer interface {
	// Analyze classifies the request. Failures are reported as a Verdict
	// with VerdictError, never as a Go error.
	Analyze(ctx context.Context, req *ScanRequest) Verdict

	// Provider returns the backend name used in logs and metrics
	Provider() string
}

// CacheStore is the durable backing of the fingerprint cache
type CacheStore interface {
	// Load reads every persisted entry
	Load(ctx context.Context) (map[CacheKey]Verdict, error)

	// Put persists a single entry
	Put(ctx context.Context, key CacheKey, verdict Verdict) error

	// Clear removes every persisted entry
	Clear(ctx context.Context) error
}

// HistoryLedger is the append-only store of finished scan records
type HistoryLedger interface {
	Append(ctx context.Context, record *ScanRecord) error
	List(ctx context.Context) ([]*ScanRecord, error)
	Get(ctx context.Context, id string) (*ScanRecord, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// ScanObserver receives scan lifecycle events, typically for metrics
type ScanObserver interface {
	CacheHit(analysisType AnalysisType)
	CacheMiss(analysisType AnalysisType)
	ProviderResult(provider string, verdict Verdict, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) CacheHit(AnalysisType)                         {}
func (nopObserver) CacheMiss(AnalysisType)                        {}
func (nopObserver) ProviderResult(string, Verdict, time.Duration) {}
