package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	"github.com/marchebantum/caymanmyass-sub002/internal/repository"
)

type SettingsRepo struct {
	db DB
}

func NewSettingsRepo(db DB) repository.SettingsRepository {
	return &SettingsRepo{db: db}
}

func (repo *SettingsRepo) Get(ctx context.Context) (*entity.AppSettings, error) {
	const query = `
SELECT newsapi_enabled, newsapi_request_count, newsapi_daily_limit, period_start, keywords
FROM app_settings
WHERE id = 1`

	var (
		settings entity.AppSettings
		keywords pq.StringArray
	)
	err := repo.db.QueryRowContext(ctx, query).Scan(
		&settings.NewsAPIEnabled, &settings.NewsAPIRequestCount,
		&settings.NewsAPIDailyLimit, &settings.PeriodStart, &keywords)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	settings.Keywords = []string(keywords)
	return &settings, nil
}

// TryIncrementRequestCount advances the request counter only while it is
// below the daily limit. The guarded UPDATE makes the check-and-increment a
// single statement, so two concurrent runs cannot both consume the final
// request of the quota.
func (repo *SettingsRepo) TryIncrementRequestCount(ctx context.Context) (bool, error) {
	const query = `
UPDATE app_settings
SET newsapi_request_count = newsapi_request_count + 1
WHERE id = 1 AND newsapi_request_count < newsapi_daily_limit`

	res, err := repo.db.ExecContext(ctx, query)
	if err != nil {
		return false, fmt.Errorf("TryIncrementRequestCount: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("TryIncrementRequestCount: RowsAffected: %w", err)
	}
	return affected > 0, nil
}

func (repo *SettingsRepo) ResetPeriod(ctx context.Context, periodStart time.Time) error {
	const query = `
UPDATE app_settings
SET newsapi_request_count = 0, period_start = $1
WHERE id = 1 AND period_start < $1`
	if _, err := repo.db.ExecContext(ctx, query, periodStart); err != nil {
		return fmt.Errorf("ResetPeriod: %w", err)
	}
	return nil
}
