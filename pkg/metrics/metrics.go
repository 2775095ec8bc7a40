// Package metrics exposes Prometheus instrumentation for the correlation
// engine: job lifecycle, tracker request outcomes, and fetch retries.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	jobsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "correlator_jobs_started_total",
		Help: "Correlation jobs started.",
	})

	jobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "correlator_jobs_finished_total",
		Help: "Correlation jobs finished, by terminal status.",
	}, []string{"status"})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "correlator_job_duration_seconds",
		Help:    "Wall-clock duration of correlation jobs.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"status"})

	trackerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "correlator_tracker_requests_total",
		Help: "Tracker API requests, by outcome.",
	}, []string{"outcome"})

	fetchRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "correlator_fetch_retries_total",
		Help: "Per-key fetch retries in the candidate pool.",
	})
)

// JobTimer measures one job's wall-clock duration.
type JobTimer struct {
	start time.Time
}

// JobStarted counts a new job and returns its timer.
func JobStarted() *JobTimer {
	jobsStarted.Inc()
	return &JobTimer{start: time.Now()}
}

// JobFinished counts a finished job and observes its duration.
func JobFinished(t *JobTimer, status string) {
	jobsFinished.WithLabelValues(status).Inc()
	if t != nil {
		jobDuration.WithLabelValues(status).Observe(time.Since(t.start).Seconds())
	}
}

// TrackerRequest counts one tracker API request by outcome
// ("ok", "error", or the HTTP status class like "4xx"/"5xx").
func TrackerRequest(outcome string) {
	trackerRequests.WithLabelValues(outcome).Inc()
}

// FetchRetry counts one retry in the fetch pool.
func FetchRetry() {
	fetchRetries.Inc()
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
