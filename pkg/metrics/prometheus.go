package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes application counters for the cache, upstream fetch and
// mail paths.
type Recorder struct {
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	upstreamFetches *prometheus.CounterVec
	emailsSent      *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// NewRecorder registers the application metrics on the default registry.
func NewRecorder() *Recorder {
	return &Recorder{
		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stockpull_cache_hits_total",
			Help: "Cache hits by layer (request, month)",
		}, []string{"layer"}),
		cacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stockpull_cache_misses_total",
			Help: "Cache misses by layer (request, month)",
		}, []string{"layer"}),
		upstreamFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stockpull_upstream_fetches_total",
			Help: "Upstream fetch attempts by symbol and outcome",
		}, []string{"symbol", "outcome"}),
		emailsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stockpull_emails_sent_total",
			Help: "Outgoing report emails by outcome",
		}, []string{"outcome"}),
		latency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockpull_operation_duration_seconds",
			Help:    "Duration of internal operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (r *Recorder) RecordCacheHit(layer string) {
	r.cacheHits.WithLabelValues(layer).Inc()
}

func (r *Recorder) RecordCacheMiss(layer string) {
	r.cacheMisses.WithLabelValues(layer).Inc()
}

func (r *Recorder) RecordFetch(symbol, outcome string) {
	r.upstreamFetches.WithLabelValues(symbol, outcome).Inc()
}

func (r *Recorder) RecordEmail(outcome string) {
	r.emailsSent.WithLabelValues(outcome).Inc()
}

func (r *Recorder) RecordLatency(operation string, d time.Duration) {
	r.latency.WithLabelValues(operation).Observe(d.Seconds())
}
