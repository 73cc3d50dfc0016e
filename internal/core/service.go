package core

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultReason = "No reason provided."

// ScanService is the core orchestrator for content scans
type ScanService struct {
	analyzer Analyzer
	cache    *FingerprintCache
	logger   *zap.Logger
	observer ScanObserver
	flights  singleflight.Group

	now   func() time.Time
	newID func() string
}

// NewScanService creates a new scan service. observer may be nil.
func NewScanService(
	analyzer Analyzer,
	cache *FingerprintCache,
	logger *zap.Logger,
	observer ScanObserver,
) *ScanService {
	if observer == nil {
		observer = nopObserver{}
	}
	return &ScanService{
		analyzer: analyzer,
		cache:    cache,
		logger:   logger,
		observer: observer,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Provider returns the name of the configured analysis backend
func (s *ScanService) Provider() string {
	return s.analyzer.Provider()
}

// Handle scans a submission and returns a finished record. The only error is
// ErrEmptyContent; analysis failures are carried inside the record.
func (s *ScanService) Handle(ctx context.Context, req *ScanRequest) (*ScanRecord, error) {
	content := req.Text
	if strings.TrimSpace(content) == "" {
		content = req.URL
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	key := ComputeKey(content, req.Type)

	if verdict, ok := s.cache.Lookup(key); ok {
		s.logger.Debug("Cache hit, no provider call needed",
			zap.String("type", string(req.Type)),
			zap.String("key", string(key)))
		s.observer.CacheHit(req.Type)
		return s.newRecord(req.Type, content, verdict, true), nil
	}

	s.observer.CacheMiss(req.Type)
	verdict := s.analyze(ctx, key, &ScanRequest{Type: req.Type, Text: content, URL: req.URL})

	return s.newRecord(req.Type, content, verdict, false), nil
}

// analyze calls the analyzer once for concurrent misses on the same key and
// caches successful classifications. The call is not cancelled when the
// caller goes away; it is bounded by the analyzer's own timeout.
func (s *ScanService) analyze(ctx context.Context, key CacheKey, req *ScanRequest) Verdict {
	detached := context.WithoutCancel(ctx)

	result, _, shared := s.flights.Do(string(key), func() (interface{}, error) {
		// a flight that finished between Lookup and Do already cached the answer
		if verdict, ok := s.cache.Lookup(key); ok {
			return verdict, nil
		}

		start := s.now()
		verdict := s.analyzer.Analyze(detached, req)
		elapsed := s.now().Sub(start)
		s.observer.ProviderResult(s.analyzer.Provider(), verdict, elapsed)

		if verdict.IsError() {
			s.logger.Warn("Analysis failed, result not cached",
				zap.String("provider", s.analyzer.Provider()),
				zap.String("failure", string(verdict.Failure)),
				zap.String("reason", verdict.Reason))
			return verdict, nil
		}

		s.cache.Store(detached, key, verdict)
		s.logger.Debug("Response cached for future use",
			zap.String("key", string(key)),
			zap.Duration("elapsed", elapsed))
		return verdict, nil
	})

	if shared {
		s.logger.Debug("Joined in-flight analysis", zap.String("key", string(key)))
	}
	return cloneVerdict(result.(Verdict))
}

// newRecord wraps a verdict in a fresh record, filling absent fields
func (s *ScanService) newRecord(analysisType AnalysisType, content string, v Verdict, cached bool) *ScanRecord {
	record := &ScanRecord{
		ID:               s.newID(),
		Timestamp:        s.now().UTC().Truncate(time.Millisecond),
		UserInput:        content,
		Type:             analysisType,
		Score:            v.Score,
		Verdict:          v.Verdict,
		Reason:           v.Reason,
		Category:         v.Category,
		SuggestedSources: v.SuggestedSources,
		Cached:           cached,
		Failure:          v.Failure,
	}

	if record.Verdict == "" {
		record.Verdict = VerdictUnknown
	}
	if record.Reason == "" {
		record.Reason = defaultReason
	}
	if record.Category == "" {
		record.Category = string(analysisType)
	}
	if record.SuggestedSources == nil {
		record.SuggestedSources = []string{}
	}

	return record
}
