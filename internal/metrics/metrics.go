// Package metrics is Anchor's admin sidecar: Prometheus counters/gauges
// for the main HTTP surface plus a small gin app serving /healthz,
// /metrics, and a mounted Swagger UI. It listens on its own address
// (config.Config.MetricsAddr), separate from the main chi router, so a
// deployment can firewall it off from the public API port.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter/gauge/histogram the main HTTP surface and
// snapshot engine report into.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	snapshotsSaved   prometheus.Counter
	snapshotBytes    prometheus.Histogram
	objectCacheHits  prometheus.Counter
	objectCacheMiss  prometheus.Counter
	rateLimitTripped prometheus.Counter

	reposTotal prometheus.Gauge
}

// New creates and registers Anchor's metric set against the default
// Prometheus registry.
func New() *Metrics {
	const namespace = "anchor"

	return &Metrics{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests handled, by route, method, and status code.",
		}, []string{"route", "method", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),

		snapshotsSaved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "saved_total",
			Help:      "Total snapshots saved across all repositories.",
		}),

		snapshotBytes: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "bytes",
			Help:      "Size in bytes of the tree captured by a saved snapshot.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 12), // 1KB..~4GB
		}),

		objectCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "objectstore",
			Name:      "cache_hits_total",
			Help:      "Reads served from the in-process ristretto cache.",
		}),

		objectCacheMiss: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "objectstore",
			Name:      "cache_misses_total",
			Help:      "Reads that fell through to the configured backend.",
		}),

		rateLimitTripped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "tripped_total",
			Help:      "Requests rejected for exceeding the per-IP rate limit.",
		}),

		reposTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "repo",
			Name:      "total",
			Help:      "Current number of repositories under the configured root.",
		}),
	}
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(route, method, status string, seconds float64) {
	m.requestsTotal.WithLabelValues(route, method, status).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(seconds)
}

// RecordSnapshotSaved records a successful snapshot save.
func (m *Metrics) RecordSnapshotSaved(treeBytes int64) {
	m.snapshotsSaved.Inc()
	m.snapshotBytes.Observe(float64(treeBytes))
}

// RecordCacheHit records an objectstore read satisfied by the cache.
func (m *Metrics) RecordCacheHit() { m.objectCacheHits.Inc() }

// RecordCacheMiss records an objectstore read that reached the backend.
func (m *Metrics) RecordCacheMiss() { m.objectCacheMiss.Inc() }

// RecordRateLimited records a request rejected by internal/ratelimit.
func (m *Metrics) RecordRateLimited() { m.rateLimitTripped.Inc() }

// SetRepoCount reports the current repository count.
func (m *Metrics) SetRepoCount(n int) { m.reposTotal.Set(float64(n)) }
