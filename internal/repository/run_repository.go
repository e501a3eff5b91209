package repository

import (
	"context"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
)

type RunRepository interface {
	// Create persists a freshly started run record.
	Create(ctx context.Context, run *entity.IngestionRun) error

	// Finalize writes the run's terminal status, counters, error list and
	// finish timestamp. Called exactly once per run.
	Finalize(ctx context.Context, run *entity.IngestionRun) error

	// Get returns a run by ID, or (nil, nil) when absent.
	Get(ctx context.Context, id string) (*entity.IngestionRun, error)

	// ListRecent returns the newest runs first, optionally filtered by source
	// (empty string means all sources).
	ListRecent(ctx context.Context, source string, limit int) ([]*entity.IngestionRun, error)
}
