package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics tracks cron job execution and configuration fallbacks for
// the worker process. All metrics live on the default registry so the
// sidecar metrics server in cmd/worker exposes them without extra wiring.
type WorkerMetrics struct {
	// ConfigFallbacksTotal counts rejected configuration overrides per
	// field. A non-zero value means the worker is running on a default
	// instead of its configured value.
	ConfigFallbacksTotal *prometheus.CounterVec

	// CronJobRunsTotal counts runs per job and outcome (success/failure).
	CronJobRunsTotal *prometheus.CounterVec

	// CronJobDurationSeconds is the per-job execution duration histogram.
	CronJobDurationSeconds *prometheus.HistogramVec

	// CronJobRecordsProcessedTotal counts records processed per job.
	CronJobRecordsProcessedTotal *prometheus.CounterVec

	// CronJobLastSuccessTimestamp is the Unix time of the last successful
	// run per job; alerting keys off its staleness.
	CronJobLastSuccessTimestamp *prometheus.GaugeVec
}

// Cron job label values.
const (
	JobIngest  = "ingest"
	JobResolve = "resolve"
)

// NewWorkerMetrics registers the worker metrics on the default registry.
// Call it once per process.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigFallbacksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_config_fallbacks_total",
			Help: "Configuration overrides rejected in favor of defaults, by field",
		}, []string{"field"}),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Cron job runs by job and status (success/failure)",
		}, []string{"job", "status"}),

		CronJobDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of cron job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}, []string{"job"}),

		CronJobRecordsProcessedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_records_processed_total",
			Help: "Records processed across all cron job runs, by job",
		}, []string{"job"}),

		CronJobLastSuccessTimestamp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful cron job run",
		}, []string{"job"}),
	}
}

// RecordConfigFallback counts one rejected override for the given field.
func (m *WorkerMetrics) RecordConfigFallback(field string) {
	m.ConfigFallbacksTotal.WithLabelValues(field).Inc()
}

// RecordJobRun increments the run counter; status is "success" or "failure".
func (m *WorkerMetrics) RecordJobRun(job, status string) {
	m.CronJobRunsTotal.WithLabelValues(job, status).Inc()
}

// RecordJobDuration observes one job execution in seconds.
func (m *WorkerMetrics) RecordJobDuration(job string, seconds float64) {
	m.CronJobDurationSeconds.WithLabelValues(job).Observe(seconds)
}

// RecordRecordsProcessed adds to the per-job processed counter.
func (m *WorkerMetrics) RecordRecordsProcessed(job string, count int) {
	m.CronJobRecordsProcessedTotal.WithLabelValues(job).Add(float64(count))
}

// RecordLastSuccess stamps now as the job's last successful completion.
func (m *WorkerMetrics) RecordLastSuccess(job string) {
	m.CronJobLastSuccessTimestamp.WithLabelValues(job).SetToCurrentTime()
}
