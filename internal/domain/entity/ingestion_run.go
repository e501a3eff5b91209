package entity

import "time"

// IngestionRun statuses. A run starts as started, is implicitly running while
// the pipeline iterates records, and is finalized exactly once to either
// completed or failed. A run record is never left open after its invocation
// returns, even on error.
const (
	RunStatusStarted   = "started"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run trigger origins.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// IngestionRun is the bookkeeping record for one fetch-classify-dedup-store
// cycle against one external source. It is exclusively owned and mutated by
// the ingestion run coordinator.
type IngestionRun struct {
	ID          string // UUID
	Source      string
	Status      string
	TriggeredBy string

	// Counters finalized on completion.
	Fetched   int
	New       int
	Duplicate int
	Relevant  int

	// Errors collects per-record failures; they never abort the run.
	Errors []string

	StartedAt  time.Time
	FinishedAt *time.Time

	// Metadata captured at run start.
	LookbackDays   int
	QuotaRemaining *int
}

// Finalized reports whether the run has reached a terminal status.
func (r *IngestionRun) Finalized() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}
