package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rowmap_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rowmap_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	// EvaluationsTotal counts mapping evaluations by outcome.
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rowmap_evaluations_total",
			Help: "Total number of mapping evaluations",
		},
		[]string{"status"},
	)
	// RowsReturned is the number of rows produced per evaluation.
	RowsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rowmap_rows_returned",
			Help:    "Rows returned per mapping evaluation",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
	// FetchTotal counts document fetches by source type and outcome.
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rowmap_fetch_total",
			Help: "Total number of document fetches",
		},
		[]string{"source", "status"},
	)
	// StoreFallbackTotal counts configuration store operations served by the fallback.
	StoreFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rowmap_store_fallback_total",
			Help: "Configuration store operations that used the in-memory fallback",
		},
		[]string{"op"},
	)
)

// Status is the outcome label shared by the counters above.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveEvaluation records the outcome of one mapping evaluation.
func ObserveEvaluation(rows int, err error) {
	EvaluationsTotal.WithLabelValues(Status(err)).Inc()
	if err == nil {
		RowsReturned.Observe(float64(rows))
	}
}
