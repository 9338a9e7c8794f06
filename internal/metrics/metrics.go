// Package metrics exposes Prometheus collectors for the word-frequency service.
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
	fetchesTotal               *prometheus.CounterVec
	jobsTotal                  *prometheus.CounterVec
	retryDelaySeconds          prometheus.Histogram
	batchesCommittedTotal      prometheus.Counter
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordfreq_fetches_total",
				Help: "Total number of URL fetch outcomes, labeled by result.",
			},
			[]string{"result"},
		)

		jobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordfreq_jobs_total",
				Help: "Total number of jobs finalized, labeled by status.",
			},
			[]string{"status"},
		)

		retryDelaySeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wordfreq_retry_delay_seconds",
				Help:    "Histogram of rate-limit backoff wait durations.",
				Buckets: []float64{1, 2, 4, 8, 16, 32},
			},
		)

		batchesCommittedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "wordfreq_batches_committed_total",
				Help: "Total number of batches merged into the cache.",
			},
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

// ObserveFetch increments the fetch outcome counter.
func ObserveFetch(result string) {
	if fetchesTotal != nil {
		fetchesTotal.WithLabelValues(result).Inc()
	}
}

// ObserveJob increments the job counter for the given status.
func ObserveJob(status string) {
	if jobsTotal != nil {
		jobsTotal.WithLabelValues(status).Inc()
	}
}

// ObserveRetryDelay records the duration of a backoff wait.
func ObserveRetryDelay(d time.Duration) {
	if retryDelaySeconds != nil {
		retryDelaySeconds.Observe(d.Seconds())
	}
}

// ObserveBatchCommit increments the batch commit counter.
func ObserveBatchCommit() {
	if batchesCommittedTotal != nil {
		batchesCommittedTotal.Inc()
	}
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
