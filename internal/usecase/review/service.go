// Package review provides the manual review queue use case.
// Review items are dispatched asynchronously so that an enqueue failure or a
// slow store never blocks or fails the ingestion and resolution pipelines.
package review

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	"github.com/marchebantum/caymanmyass-sub002/internal/observability/metrics"
	"github.com/marchebantum/caymanmyass-sub002/internal/repository"
)

const (
	workerPoolTimeout = 5 * time.Second  // Timeout for acquiring a worker slot
	enqueueTimeout    = 10 * time.Second // Timeout for a single enqueue
)

// Service dispatches review items to the review queue.
type Service interface {
	// Dispatch enqueues a review item in the background and returns
	// immediately. Failures are logged, never propagated.
	Dispatch(ctx context.Context, item *entity.ReviewItem)

	// Shutdown waits for in-flight dispatches to complete or the context
	// to expire.
	Shutdown(ctx context.Context) error
}

// service is the concrete implementation of Service.
type service struct {
	repo           repository.ReviewRepository
	workerPool     chan struct{} // Semaphore limiting concurrent enqueues
	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// NewService creates a review dispatch service.
// maxConcurrent bounds the number of in-flight enqueues (recommended: 4-10).
func NewService(repo repository.ReviewRepository, maxConcurrent int) Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	return &service{
		repo:           repo,
		workerPool:     make(chan struct{}, maxConcurrent),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
}

// Dispatch implements Service.Dispatch.
func (s *service) Dispatch(_ context.Context, item *entity.ReviewItem) {
	if item == nil {
		slog.Warn("nil review item dropped")
		return
	}
	if item.Priority == "" {
		item.Priority = entity.ReviewPriorityMedium
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	s.wg.Add(1)
	go s.enqueue(item)
}

// enqueue stores a single review item in a background goroutine.
func (s *service) enqueue(item *entity.ReviewItem) {
	defer s.wg.Done()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in review dispatch",
				slog.String("item_type", item.ItemType),
				slog.String("item_ref", item.ItemRef),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-time.After(workerPoolTimeout):
		slog.Warn("review item dropped: worker pool full",
			slog.String("item_type", item.ItemType),
			slog.String("item_ref", item.ItemRef))
		return
	case <-s.shutdownCtx.Done():
		return
	}

	ctx, cancel := context.WithTimeout(s.shutdownCtx, enqueueTimeout)
	defer cancel()

	if err := s.repo.Enqueue(ctx, item); err != nil {
		slog.Warn("failed to enqueue review item",
			slog.String("item_type", item.ItemType),
			slog.String("item_ref", item.ItemRef),
			slog.String("reason", item.Reason),
			slog.Any("error", err))
		return
	}

	metrics.RecordReviewItem(item.ItemType)
	slog.Debug("review item enqueued",
		slog.String("item_type", item.ItemType),
		slog.String("item_ref", item.ItemRef),
		slog.String("priority", item.Priority))
}

// Shutdown implements Service.Shutdown.
func (s *service) Shutdown(ctx context.Context) error {
	s.shutdownCancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
