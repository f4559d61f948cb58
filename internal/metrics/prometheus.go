package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the Lingopal job client
type Metrics struct {
	// Job submission metrics
	JobsSubmitted  *prometheus.CounterVec
	SubmitFailures *prometheus.CounterVec

	// Polling metrics
	PollsTotal     prometheus.Counter
	PollErrors     prometheus.Counter
	JobsCompleted  prometheus.Counter
	JobsFailed     prometheus.Counter
	JobsTimedOut   prometheus.Counter
	JobWaitSeconds prometheus.Histogram

	// Download metrics
	DownloadsTotal   prometheus.Counter
	DownloadFailures prometheus.Counter
	DownloadBytes    prometheus.Histogram

	// Mock API server metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Job submission metrics
		JobsSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lingopal_jobs_submitted_total",
			Help: "Total number of jobs submitted",
		}, []string{"kind"}),
		SubmitFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lingopal_submit_failures_total",
			Help: "Total number of failed job submissions",
		}, []string{"kind"}),

		// Polling metrics
		PollsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingopal_status_polls_total",
			Help: "Total number of job status polls issued",
		}),
		PollErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingopal_status_poll_errors_total",
			Help: "Total number of job status polls that failed and were retried",
		}),
		JobsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingopal_jobs_completed_total",
			Help: "Total number of jobs that reached the completed status",
		}),
		JobsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingopal_jobs_failed_total",
			Help: "Total number of jobs that reached the failed status",
		}),
		JobsTimedOut: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingopal_jobs_timed_out_total",
			Help: "Total number of jobs abandoned after the local polling budget elapsed",
		}),
		JobWaitSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lingopal_job_wait_duration_seconds",
			Help:    "Wall-clock time spent waiting for jobs to reach a terminal status",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68 minutes
		}),

		// Download metrics
		DownloadsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingopal_downloads_total",
			Help: "Total number of result artifacts downloaded",
		}),
		DownloadFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingopal_download_failures_total",
			Help: "Total number of result artifact downloads that failed",
		}),
		DownloadBytes: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lingopal_download_size_bytes",
			Help:    "Size of downloaded result artifacts in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to ~256MB
		}),

		// Mock API server metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lingopal_http_requests_total",
			Help: "Total number of HTTP requests handled by the mock API server",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lingopal_http_request_duration_seconds",
			Help:    "Duration of HTTP requests handled by the mock API server",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lingopal_http_errors_total",
			Help: "Total number of HTTP errors returned by the mock API server",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordSubmit increments the jobs submitted counter for a job kind
func (m *Metrics) RecordSubmit(kind string) {
	m.JobsSubmitted.WithLabelValues(kind).Inc()
}

// RecordSubmitFailure increments the submit failures counter for a job kind
func (m *Metrics) RecordSubmitFailure(kind string) {
	m.SubmitFailures.WithLabelValues(kind).Inc()
}

// RecordPoll increments the status polls counter
func (m *Metrics) RecordPoll() {
	m.PollsTotal.Inc()
}

// RecordPollError increments the poll errors counter
func (m *Metrics) RecordPollError() {
	m.PollErrors.Inc()
}

// RecordJobCompleted records a completed job and its wait duration
func (m *Metrics) RecordJobCompleted(waitSeconds float64) {
	m.JobsCompleted.Inc()
	m.JobWaitSeconds.Observe(waitSeconds)
}

// RecordJobFailed records a failed job and its wait duration
func (m *Metrics) RecordJobFailed(waitSeconds float64) {
	m.JobsFailed.Inc()
	m.JobWaitSeconds.Observe(waitSeconds)
}

// RecordJobTimedOut records a job abandoned on timeout
func (m *Metrics) RecordJobTimedOut(waitSeconds float64) {
	m.JobsTimedOut.Inc()
	m.JobWaitSeconds.Observe(waitSeconds)
}

// RecordDownload records a successful artifact download
func (m *Metrics) RecordDownload(sizeBytes int64) {
	m.DownloadsTotal.Inc()
	m.DownloadBytes.Observe(float64(sizeBytes))
}

// RecordDownloadFailure increments the download failures counter
func (m *Metrics) RecordDownloadFailure() {
	m.DownloadFailures.Inc()
}

// RecordHTTPRequest records an HTTP request handled by the mock API server
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error returned by the mock API server
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
