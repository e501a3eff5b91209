package repository

import (
	"context"
	"time"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
)

// SettingsRepository exposes the single shared settings/quota row.
//
// The row is a process-external resource: each run re-reads it rather than
// caching it, and the request counter is advanced through a guarded
// compare-and-increment so concurrent runs cannot both consume the last
// request of the quota.
type SettingsRepository interface {
	Get(ctx context.Context) (*entity.AppSettings, error)

	// TryIncrementRequestCount atomically increments the NewsAPI request
	// counter if and only if it is still below the daily limit. Returns
	// false when the quota is already exhausted; the counter is unchanged
	// in that case.
	TryIncrementRequestCount(ctx context.Context) (bool, error)

	// ResetPeriod zeroes the request counter and records the new billing
	// period start. Called when a run observes a stale period.
	ResetPeriod(ctx context.Context, periodStart time.Time) error
}
