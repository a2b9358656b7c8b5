// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	NormalizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcript_normalizations_total",
			Help: "Normalization results by status code",
		},
		[]string{"status"},
	)

	DateRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transcript_date_rejected_total",
			Help: "Normalization results flagged DateRejected",
		},
	)

	NLURequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nlu_request_duration_seconds",
			Help:    "Latency of NLU queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	ResultCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalization_result_cache_lookups_total",
			Help: "Result cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)
