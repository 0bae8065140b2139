// Package metrics exposes Prometheus collectors for the clipper service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	webFetchesTotal            *prometheus.CounterVec
	cacheLookupsTotal          *prometheus.CounterVec
	extractionsTotal           *prometheus.CounterVec
	citationOpsTotal           *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		webFetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clipper_web_fetches_total",
				Help: "Total number of source fetches, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		cacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clipper_cache_lookups_total",
				Help: "Total number of content cache lookups, labeled by result.",
			},
			[]string{"result"},
		)

		extractionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clipper_extractions_total",
				Help: "Total number of article extractions, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		citationOpsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clipper_citation_ops_total",
				Help: "Total number of citation store operations, labeled by op and outcome.",
			},
			[]string{"op", "outcome"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch increments the fetch counter for the given outcome.
func ObserveFetch(outcome string) {
	webFetchesTotal.WithLabelValues(outcome).Inc()
}

// ObserveCacheLookup records a cache hit or miss.
func ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveExtraction increments the extraction counter for the given outcome.
func ObserveExtraction(outcome string) {
	extractionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveCitationOp increments the citation operation counter.
func ObserveCitationOp(op, outcome string) {
	citationOpsTotal.WithLabelValues(op, outcome).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
