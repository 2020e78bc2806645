package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector exported by the service
type Metrics struct {
	// HTTP
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Search index
	IndexDocuments       prometheus.Gauge
	IndexRebuildDuration prometheus.Histogram
	IndexSyncFailures    *prometheus.CounterVec
	SearchQueriesTotal   *prometheus.CounterVec
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		IndexDocuments: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "search_index_documents",
				Help: "Number of shops in the search index after the last rebuild",
			},
		),
		IndexRebuildDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_index_rebuild_duration_seconds",
				Help:    "Duration of full search index rebuilds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
			},
		),
		IndexSyncFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_index_sync_failures_total",
				Help: "Index updates that failed after a committed write",
			},
			[]string{"operation"},
		),
		SearchQueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_search_queries_total",
				Help: "Shop searches by whether any criterion was given",
			},
			[]string{"kind"},
		),
	}
}
