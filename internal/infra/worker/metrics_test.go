package worker

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWorkerMetrics(t *testing.T) {
	// testMetrics is the package-wide instance; promauto registration on
	// the default registry only allows one per process.
	m := testMetrics

	if m == nil {
		t.Fatal("NewWorkerMetrics returned nil")
	}
	if m.ConfigFallbacksTotal == nil {
		t.Error("ConfigFallbacksTotal is nil")
	}
	if m.CronJobRunsTotal == nil {
		t.Error("CronJobRunsTotal is nil")
	}
	if m.CronJobDurationSeconds == nil {
		t.Error("CronJobDurationSeconds is nil")
	}
	if m.CronJobRecordsProcessedTotal == nil {
		t.Error("CronJobRecordsProcessedTotal is nil")
	}
	if m.CronJobLastSuccessTimestamp == nil {
		t.Error("CronJobLastSuccessTimestamp is nil")
	}
}

func TestWorkerMetrics_RecordConfigFallback(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_worker_config_fallbacks_total",
		Help: "Test counter",
	}, []string{"field"})

	m := &WorkerMetrics{ConfigFallbacksTotal: counter}

	m.RecordConfigFallback("ingest_schedule")
	m.RecordConfigFallback("ingest_schedule")
	m.RecordConfigFallback("timezone")

	got := testutil.ToFloat64(counter.WithLabelValues("ingest_schedule"))
	if got != 2 {
		t.Errorf("ingest_schedule fallbacks = %f, want 2", got)
	}
	got = testutil.ToFloat64(counter.WithLabelValues("timezone"))
	if got != 1 {
		t.Errorf("timezone fallbacks = %f, want 1", got)
	}
}

func TestWorkerMetrics_RecordJobRun(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_worker_cron_job_runs_total",
		Help: "Test counter",
	}, []string{"job", "status"})

	m := &WorkerMetrics{CronJobRunsTotal: counter}

	m.RecordJobRun(JobIngest, "success")
	m.RecordJobRun(JobIngest, "success")
	m.RecordJobRun(JobIngest, "failure")
	m.RecordJobRun(JobResolve, "success")

	if got := testutil.ToFloat64(counter.WithLabelValues(JobIngest, "success")); got != 2 {
		t.Errorf("ingest success = %f, want 2", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues(JobIngest, "failure")); got != 1 {
		t.Errorf("ingest failure = %f, want 1", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues(JobResolve, "success")); got != 1 {
		t.Errorf("resolve success = %f, want 1", got)
	}
}

func TestWorkerMetrics_RecordJobDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	histogram := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "test_worker_cron_job_duration_seconds",
		Help:    "Test histogram",
		Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
	}, []string{"job"})
	reg.MustRegister(histogram)

	m := &WorkerMetrics{CronJobDurationSeconds: histogram}

	m.RecordJobDuration(JobIngest, 10.5)
	m.RecordJobDuration(JobIngest, 120.0)
	m.RecordJobDuration(JobIngest, 600.0)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) != 1 {
		t.Fatalf("want 1 metric family, got %d", len(families))
	}
	hist := families[0].GetMetric()[0].GetHistogram()
	if hist.GetSampleCount() != 3 {
		t.Errorf("sample count = %d, want 3", hist.GetSampleCount())
	}
}

func TestWorkerMetrics_RecordRecordsProcessed(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_worker_cron_job_records_processed_total",
		Help: "Test counter",
	}, []string{"job"})

	m := &WorkerMetrics{CronJobRecordsProcessedTotal: counter}

	m.RecordRecordsProcessed(JobIngest, 10)
	m.RecordRecordsProcessed(JobIngest, 25)
	m.RecordRecordsProcessed(JobResolve, 5)
	m.RecordRecordsProcessed(JobResolve, 0) // empty sweep is fine

	if got := testutil.ToFloat64(counter.WithLabelValues(JobIngest)); got != 35 {
		t.Errorf("ingest records = %f, want 35", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues(JobResolve)); got != 5 {
		t.Errorf("resolve records = %f, want 5", got)
	}
}

func TestWorkerMetrics_RecordLastSuccess(t *testing.T) {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "test_worker_cron_job_last_success_timestamp",
		Help: "Test gauge",
	}, []string{"job"})

	m := &WorkerMetrics{CronJobLastSuccessTimestamp: gauge}

	before := float64(time.Now().Unix())
	m.RecordLastSuccess(JobIngest)
	after := float64(time.Now().Unix())

	recorded := testutil.ToFloat64(gauge.WithLabelValues(JobIngest))
	if recorded < before || recorded > after+1 {
		t.Errorf("timestamp %f outside [%f, %f]", recorded, before, after)
	}

	// The other job's gauge stays untouched.
	if got := testutil.ToFloat64(gauge.WithLabelValues(JobResolve)); got != 0 {
		t.Errorf("resolve timestamp = %f, want 0", got)
	}
}
