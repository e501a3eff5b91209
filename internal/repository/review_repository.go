package repository

import (
	"context"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
)

type ReviewRepository interface {
	// Enqueue stores a review item. Dispatch is fire-and-forget at the
	// use-case layer; an enqueue failure is logged, never propagated.
	Enqueue(ctx context.Context, item *entity.ReviewItem) error

	// ListRecent returns the newest review items first.
	ListRecent(ctx context.Context, limit int) ([]*entity.ReviewItem, error)
}
