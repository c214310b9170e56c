package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobsProcessed tracks terminally resolved jobs by type and outcome.
	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bidworker_jobs_total",
			Help: "Total number of jobs resolved, by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	// Retries tracks transient failures that led to a requeue.
	Retries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bidworker_retries_total",
			Help: "Total number of job requeues after transient failures",
		},
	)

	// DeadLetters tracks jobs that exhausted all retries.
	DeadLetters = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bidworker_dead_letters_total",
			Help: "Total number of jobs moved to the dead-letter list",
		},
	)

	// JobDuration tracks processing latency per job type.
	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bidworker_job_duration_seconds",
			Help:    "Job processing latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	// QueueDepth tracks the number of jobs waiting in the queue.
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bidworker_queue_depth",
			Help: "Number of jobs waiting in the bid queue",
		},
	)

	// PendingJobs tracks the size of the recovery store.
	PendingJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bidworker_pending_jobs",
			Help: "Number of in-flight jobs recorded in the recovery store",
		},
	)
)
