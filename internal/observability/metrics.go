package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	insightRunsTotal      *prometheus.CounterVec
	insightRunSeconds     prometheus.Histogram
	insightStudentsTotal  prometheus.Counter
	insightFailuresTotal  prometheus.Counter
	requestsTotal         *prometheus.CounterVec
	requestLatencySeconds *prometheus.HistogramVec
	requestErrorsTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		insightRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "insight_runs_total",
			Help: "Total number of weekly insight generation runs.",
		}, []string{"outcome"})

		insightRunSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "insight_run_duration_seconds",
			Help:    "Wall-clock duration of insight generation runs.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		})

		insightStudentsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "insight_students_processed_total",
			Help: "Total number of (student, course) pairs processed by the insight engine.",
		})

		insightFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "insight_student_failures_total",
			Help: "Total number of per-student insight computations skipped due to errors.",
		})

		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		requestLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		requestErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_request_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		prometheus.MustRegister(
			insightRunsTotal,
			insightRunSeconds,
			insightStudentsTotal,
			insightFailuresTotal,
			requestsTotal,
			requestLatencySeconds,
			requestErrorsTotal,
		)
	})
}

// InsightRuns exposes the counter for engine runs, labelled by outcome.
func InsightRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return insightRunsTotal
}

// InsightRunDuration exposes the engine run duration histogram.
func InsightRunDuration() prometheus.Histogram {
	RegisterMetrics()
	return insightRunSeconds
}

// InsightStudentsProcessed exposes the per-pair processing counter.
func InsightStudentsProcessed() prometheus.Counter {
	RegisterMetrics()
	return insightStudentsTotal
}

// InsightStudentFailures exposes the skipped-computation counter.
func InsightStudentFailures() prometheus.Counter {
	RegisterMetrics()
	return insightFailuresTotal
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// RequestLatency exposes the latency histogram for API requests.
func RequestLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatencySeconds
}

// RequestErrors exposes the counter for API error responses.
func RequestErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return requestErrorsTotal
}
