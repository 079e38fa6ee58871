package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ExtractionsTotal  *prometheus.CounterVec
	ConceptsExtracted prometheus.Counter

	LLMCallsTotal   *prometheus.CounterVec
	LLMCallDuration *prometheus.HistogramVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	RateLimitedTotal prometheus.Counter
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide metrics set, registering collectors on first
// use.
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "recall_http_requests_total",
				Help: "Total HTTP requests by method, route and status code.",
			}, []string{"method", "route", "status"}),
			HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "recall_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "route"}),
			ExtractionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "recall_extractions_total",
				Help: "Concept extraction runs by method (single_pass, multi_pass, cache) and outcome.",
			}, []string{"method", "outcome"}),
			ConceptsExtracted: promauto.NewCounter(prometheus.CounterOpts{
				Name: "recall_concepts_extracted_total",
				Help: "Total concepts produced by extraction.",
			}),
			LLMCallsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "recall_llm_calls_total",
				Help: "LLM API calls by purpose and outcome.",
			}, []string{"purpose", "outcome"}),
			LLMCallDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "recall_llm_call_duration_seconds",
				Help:    "LLM API call latency by purpose.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
			}, []string{"purpose"}),
			CacheHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "recall_cache_hits_total",
				Help: "Analysis cache hits.",
			}),
			CacheMissesTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "recall_cache_misses_total",
				Help: "Analysis cache misses.",
			}),
			RateLimitedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "recall_rate_limited_requests_total",
				Help: "Requests rejected by the rate limiter.",
			}),
		}
	})
	return instance
}
