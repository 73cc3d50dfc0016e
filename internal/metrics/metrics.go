package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mikey/fraud-shield/internal/core"
)

var cacheEntriesDesc = prometheus.NewDesc(
	"fraudshield_cache_entries",
	"Number of verdicts held in the fingerprint cache",
	nil,
	nil,
)

// CacheSizer reports the current number of cached verdicts
type CacheSizer interface {
	Size() int
}

// CacheCollector is a custom Prometheus collector that reads the cache size
// on each scrape.
type CacheCollector struct {
	cache CacheSizer
}

// Describe sends the metric descriptor to the channel.
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- cacheEntriesDesc
}

// Collect emits the current cache size as a gauge.
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(cacheEntriesDesc, prometheus.GaugeValue, float64(c.cache.Size()))
}

// Recorder implements core.ScanObserver with Prometheus counters
type Recorder struct {
	scans            *prometheus.CounterVec
	providerCalls    *prometheus.CounterVec
	providerFailures *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
}

// NewRecorder creates the scan metrics and registers them, together with a
// cache size collector, on reg.
func NewRecorder(reg prometheus.Registerer, cache CacheSizer) (*Recorder, error) {
	r := &Recorder{
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fraudshield_scans_total",
			Help: "Total scans by analysis type and verdict source",
		}, []string{"type", "source"}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fraudshield_provider_calls_total",
			Help: "Total analysis backend calls by verdict",
		}, []string{"provider", "verdict"}),
		providerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fraudshield_provider_failures_total",
			Help: "Total analysis backend failures by failure kind",
		}, []string{"provider", "kind"}),
		providerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fraudshield_provider_duration_seconds",
			Help:    "Analysis backend call latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
	}

	collectors := []prometheus.Collector{r.scans, r.providerCalls, r.providerFailures, r.providerDuration}
	if cache != nil {
		collectors = append(collectors, &CacheCollector{cache: cache})
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// CacheHit counts a scan answered from the cache
func (r *Recorder) CacheHit(analysisType core.AnalysisType) {
	r.scans.WithLabelValues(string(analysisType), "cache").Inc()
}

// CacheMiss counts a scan that needed a backend call
func (r *Recorder) CacheMiss(analysisType core.AnalysisType) {
	r.scans.WithLabelValues(string(analysisType), "provider").Inc()
}

// ProviderResult records the outcome and latency of a backend call
func (r *Recorder) ProviderResult(provider string, verdict core.Verdict, elapsed time.Duration) {
	r.providerCalls.WithLabelValues(provider, string(verdict.Verdict)).Inc()
	r.providerDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
	if verdict.IsError() {
		r.providerFailures.WithLabelValues(provider, string(verdict.Failure)).Inc()
	}
}
