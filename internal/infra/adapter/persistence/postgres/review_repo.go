package postgres

import (
	"context"
	"fmt"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	"github.com/marchebantum/caymanmyass-sub002/internal/repository"
)

type ReviewRepo struct {
	db DB
}

func NewReviewRepo(db DB) repository.ReviewRepository {
	return &ReviewRepo{db: db}
}

func (repo *ReviewRepo) Enqueue(ctx context.Context, item *entity.ReviewItem) error {
	const query = `
INSERT INTO review_queue (item_type, item_ref, reason, priority, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

	err := repo.db.QueryRowContext(ctx, query,
		item.ItemType, item.ItemRef, item.Reason, item.Priority, item.CreatedAt,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("Enqueue: %w", err)
	}
	return nil
}

func (repo *ReviewRepo) ListRecent(ctx context.Context, limit int) ([]*entity.ReviewItem, error) {
	const query = `
SELECT id, item_type, item_ref, reason, priority, created_at
FROM review_queue
ORDER BY created_at DESC
LIMIT $1`

	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*entity.ReviewItem, 0, limit)
	for rows.Next() {
		var item entity.ReviewItem
		if err := rows.Scan(&item.ID, &item.ItemType, &item.ItemRef,
			&item.Reason, &item.Priority, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListRecent: Scan: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}
