package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buscaprecios_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buscaprecios_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	MalformedListingsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buscaprecios_malformed_listings_total",
			Help: "Listings dropped during normalization for missing or invalid fields",
		},
	)

	StoreFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buscaprecios_store_fetch_failures_total",
			Help: "Store fetches that failed or timed out",
		},
		[]string{"store"},
	)

	StoreFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buscaprecios_store_fetch_duration_seconds",
			Help:    "Per-store fetch latency including retries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store"},
	)
)
