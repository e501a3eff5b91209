package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/marchebantum/caymanmyass-sub002/pkg/config"
)

// WorkerConfig controls the scheduling side of the worker process: when
// ingestion and resolver sweeps run, how long a cycle may take, and where
// the health server listens.
type WorkerConfig struct {
	// IngestSchedule is the five-field cron expression for scheduled
	// ingestion runs. Default: "0 * * * *" (hourly).
	IngestSchedule string

	// ResolveSchedule is the cron expression for entity-resolution sweeps.
	// Default: "*/15 * * * *".
	ResolveSchedule string

	// Timezone is the IANA zone the cron scheduler evaluates in.
	// Default: "UTC".
	Timezone string

	// RunTimeout bounds one ingestion cycle across all sources. A cycle
	// cancelled by the timeout still finalizes its run records.
	// Accepted range 30s to 2h, default 10m.
	RunTimeout time.Duration

	// ResolveBatchSize is how many classified articles one resolver sweep
	// picks up. Range 1-500, default 50.
	ResolveBatchSize int

	// HealthPort is the listen port for the worker health server.
	// Unprivileged ports only. Default: 9091.
	HealthPort int
}

// DefaultConfig returns the production defaults: hourly ingestion,
// 15-minute resolver sweeps, a 10-minute cycle timeout.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		IngestSchedule:   "0 * * * *",
		ResolveSchedule:  "*/15 * * * *",
		Timezone:         "UTC",
		RunTimeout:       10 * time.Minute,
		ResolveBatchSize: 50,
		HealthPort:       9091,
	}
}

// scheduleParser accepts the classic five-field cron syntax, the same one
// the scheduler in cmd/worker runs the expressions with.
var scheduleParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

func validateSchedule(expr string) error {
	if _, err := scheduleParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

func validateTimezone(name string) error {
	if name == "" {
		return errors.New("timezone must not be empty")
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return nil
}

// Validate reports every invalid field at once rather than stopping at the
// first, so a bad deployment surfaces all its mistakes in one log line.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := validateSchedule(c.IngestSchedule); err != nil {
		errs = append(errs, fmt.Errorf("ingest schedule: %w", err))
	}
	if err := validateSchedule(c.ResolveSchedule); err != nil {
		errs = append(errs, fmt.Errorf("resolve schedule: %w", err))
	}
	if err := validateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.RunTimeout); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	} else if c.RunTimeout < 30*time.Second || c.RunTimeout > 2*time.Hour {
		errs = append(errs, fmt.Errorf("run timeout %v outside 30s-2h", c.RunTimeout))
	}
	if c.ResolveBatchSize < 1 || c.ResolveBatchSize > 500 {
		errs = append(errs, fmt.Errorf("resolve batch size %d outside 1-500", c.ResolveBatchSize))
	}
	if c.HealthPort < 1024 || c.HealthPort > 65535 {
		errs = append(errs, fmt.Errorf("health port %d outside 1024-65535", c.HealthPort))
	}

	if len(errs) > 0 {
		return fmt.Errorf("worker config: %w", errors.Join(errs...))
	}
	return nil
}

// LoadConfigFromEnv reads the worker configuration from environment
// variables. Loading is fail-open: an invalid override is replaced by its
// default, logged and counted, and the worker keeps running on a known-good
// schedule instead of crash-looping on a typo.
//
// Environment variables:
//   - INGEST_CRON_SCHEDULE
//   - RESOLVE_CRON_SCHEDULE
//   - WORKER_TIMEZONE
//   - RUN_TIMEOUT (duration string, e.g. "10m")
//   - RESOLVE_BATCH_SIZE
//   - WORKER_HEALTH_PORT
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) *WorkerConfig {
	def := DefaultConfig()
	cfg := def

	cfg.IngestSchedule = config.GetEnvString("INGEST_CRON_SCHEDULE", def.IngestSchedule)
	cfg.ResolveSchedule = config.GetEnvString("RESOLVE_CRON_SCHEDULE", def.ResolveSchedule)
	cfg.Timezone = config.GetEnvString("WORKER_TIMEZONE", def.Timezone)
	cfg.RunTimeout = config.GetEnvDuration("RUN_TIMEOUT", def.RunTimeout)
	cfg.ResolveBatchSize = config.GetEnvInt("RESOLVE_BATCH_SIZE", def.ResolveBatchSize)
	cfg.HealthPort = config.GetEnvInt("WORKER_HEALTH_PORT", def.HealthPort)

	reject := func(field string, err error, reset func()) {
		logger.Warn("worker config override rejected, using default",
			slog.String("field", field),
			slog.Any("error", err))
		metrics.RecordConfigFallback(field)
		reset()
	}

	if err := validateSchedule(cfg.IngestSchedule); err != nil {
		reject("ingest_schedule", err, func() { cfg.IngestSchedule = def.IngestSchedule })
	}
	if err := validateSchedule(cfg.ResolveSchedule); err != nil {
		reject("resolve_schedule", err, func() { cfg.ResolveSchedule = def.ResolveSchedule })
	}
	if err := validateTimezone(cfg.Timezone); err != nil {
		reject("timezone", err, func() { cfg.Timezone = def.Timezone })
	}
	if cfg.RunTimeout < 30*time.Second || cfg.RunTimeout > 2*time.Hour {
		reject("run_timeout", fmt.Errorf("%v outside 30s-2h", cfg.RunTimeout),
			func() { cfg.RunTimeout = def.RunTimeout })
	}
	if cfg.ResolveBatchSize < 1 || cfg.ResolveBatchSize > 500 {
		reject("resolve_batch_size", fmt.Errorf("%d outside 1-500", cfg.ResolveBatchSize),
			func() { cfg.ResolveBatchSize = def.ResolveBatchSize })
	}
	if cfg.HealthPort < 1024 || cfg.HealthPort > 65535 {
		reject("health_port", fmt.Errorf("%d outside 1024-65535", cfg.HealthPort),
			func() { cfg.HealthPort = def.HealthPort })
	}

	return &cfg
}
