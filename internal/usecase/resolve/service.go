// Package resolve implements the entity resolver: it sweeps classified
// articles, extracts entity mentions, canonicalizes names, upserts entity
// records and links them to articles idempotently under concurrent
// execution. Convergence relies on storage uniqueness constraints and
// insert-then-reread-on-conflict, never on locks.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	"github.com/marchebantum/caymanmyass-sub002/internal/normalizer"
	"github.com/marchebantum/caymanmyass-sub002/internal/observability/metrics"
	"github.com/marchebantum/caymanmyass-sub002/internal/observability/tracing"
	"github.com/marchebantum/caymanmyass-sub002/internal/repository"
	"github.com/marchebantum/caymanmyass-sub002/internal/usecase/review"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBatchSize bounds one resolver sweep.
	DefaultBatchSize = 50

	// articleParallelism bounds concurrent article resolution in a sweep.
	articleParallelism = 5

	// reviewConfidenceThreshold: mentions below this confidence are
	// emitted to the review queue.
	reviewConfidenceThreshold = 0.85
)

// errMentionUnresolvable marks a mention that can never resolve, no matter
// how often it is retried. Storage errors deliberately do not carry it.
var errMentionUnresolvable = errors.New("mention cannot be resolved")

// SweepResult summarizes one resolver sweep.
type SweepResult struct {
	Articles        int
	Mentions        int
	EntitiesCreated int
	LinksCreated    int
	Errors          []string
}

// Service is the entity resolver.
type Service struct {
	Articles repository.ArticleRepository
	Entities repository.EntityRepository
	Review   review.Service // optional, nil disables review emission
}

// NewService creates an entity resolver with the provided dependencies.
func NewService(articles repository.ArticleRepository, entities repository.EntityRepository, reviewSvc review.Service) *Service {
	return &Service{
		Articles: articles,
		Entities: entities,
		Review:   reviewSvc,
	}
}

// ResolveArticles sweeps up to batchSize unresolved relevant articles and
// resolves their entity mentions. A failure on one article or one mention is
// recorded and does not abort the rest of the batch.
func (s *Service) ResolveArticles(ctx context.Context, batchSize int) (*SweepResult, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	ctx, span := tracing.GetTracer().Start(ctx, "resolve.sweep")
	defer span.End()

	articles, err := s.Articles.ListUnresolved(ctx, batchSize)
	if err != nil {
		return nil, fmt.Errorf("ResolveArticles: list unresolved: %w", err)
	}

	result := &SweepResult{Articles: len(articles)}
	if len(articles) == 0 {
		return result, nil
	}

	type articleOutcome struct {
		mentions int
		created  int
		links    int
		errs     []string
	}
	outcomes := make([]articleOutcome, len(articles))

	sem := make(chan struct{}, articleParallelism)
	g, gctx := errgroup.WithContext(ctx)
	for i, art := range articles {
		i, art := i, art
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			mentions, created, links, errs := s.resolveArticle(gctx, art)
			outcomes[i] = articleOutcome{mentions: mentions, created: created, links: links, errs: errs}
			metrics.RecordResolutionDuration(time.Since(start))
			return nil
		})
	}
	_ = g.Wait()

	for _, out := range outcomes {
		result.Mentions += out.mentions
		result.EntitiesCreated += out.created
		result.LinksCreated += out.links
		result.Errors = append(result.Errors, out.errs...)
	}

	slog.Info("entity resolution sweep completed",
		slog.Int("articles", result.Articles),
		slog.Int("mentions", result.Mentions),
		slog.Int("entities_created", result.EntitiesCreated),
		slog.Int("links_created", result.LinksCreated),
		slog.Int("errors", len(result.Errors)))

	return result, nil
}

// resolveArticle extracts and resolves all mentions for one article, then
// marks it resolved. The article is marked resolved even when individual
// mentions failed, so a poison article cannot wedge the sweep; its failures
// stay visible in the sweep's error list. The one exception is a sweep
// where every mention failed on storage rather than extraction: that is an
// outage, not a poison article, and the article stays unresolved so the
// next sweep retries it.
func (s *Service) resolveArticle(ctx context.Context, art *entity.Article) (mentionCount, entitiesCreated, linksCreated int, errs []string) {
	var created, links, storageFailures int

	mentions := ExtractMentions(art.Title, art.Content)
	seenAt := art.IngestedAt
	if art.PublishedAt != nil {
		seenAt = *art.PublishedAt
	}

	for _, m := range mentions {
		c, l, err := s.resolveMention(ctx, art, m, seenAt)
		if err != nil {
			if !errors.Is(err, errMentionUnresolvable) {
				storageFailures++
			}
			errs = append(errs, fmt.Sprintf("article %d mention %q: %v", art.ID, m.Name, err))
			continue
		}
		created += c
		links += l
	}

	if s.Review != nil && len(mentions) == 0 {
		s.Review.Dispatch(ctx, &entity.ReviewItem{
			ItemType: entity.ReviewItemArticle,
			ItemRef:  strconv.FormatInt(art.ID, 10),
			Reason:   "entity extraction found no mentions",
			Priority: entity.ReviewPriorityLow,
		})
	}

	if len(mentions) > 0 && storageFailures == len(mentions) {
		slog.Warn("leaving article unresolved for retry, all mentions failed on storage",
			slog.Int64("article_id", art.ID),
			slog.Int("mentions", len(mentions)))
		return len(mentions), created, links, errs
	}

	if err := s.Articles.MarkResolved(ctx, art.ID, time.Now()); err != nil {
		errs = append(errs, fmt.Sprintf("article %d: mark resolved: %v", art.ID, err))
	}

	return len(mentions), created, links, errs
}

// resolveMention upserts one entity and its link to the article. Returns the
// number of entities and links created (0 or 1 each).
func (s *Service) resolveMention(ctx context.Context, art *entity.Article, m Mention, seenAt time.Time) (entitiesCreated, linksCreated int, err error) {
	ent, created, err := s.getOrCreate(ctx, m, seenAt)
	if err != nil {
		return 0, 0, err
	}
	if created {
		entitiesCreated = 1
		metrics.RecordEntityMention(ent.EntityType)
	}

	linkCreated, err := s.Entities.InsertLink(ctx, &entity.ArticleEntityLink{
		ArticleID:    art.ID,
		EntityID:     ent.ID,
		Confidence:   m.Confidence,
		MentionCount: 1,
	})
	if err != nil {
		return entitiesCreated, 0, fmt.Errorf("link: %w", err)
	}

	if linkCreated {
		linksCreated = 1
		// Counter advances only for a new distinct article, keeping
		// mention_count equal to the number of linked articles.
		if err := s.Entities.RecordMention(ctx, ent.ID, seenAt); err != nil {
			return entitiesCreated, linksCreated, fmt.Errorf("record mention: %w", err)
		}
	} else if err := s.Entities.TouchLastSeen(ctx, ent.ID, seenAt); err != nil {
		return entitiesCreated, linksCreated, fmt.Errorf("touch last seen: %w", err)
	}

	if s.Review != nil && m.Confidence < reviewConfidenceThreshold {
		s.Review.Dispatch(ctx, &entity.ReviewItem{
			ItemType: entity.ReviewItemEntity,
			ItemRef:  strconv.FormatInt(ent.ID, 10),
			Reason:   fmt.Sprintf("low extraction confidence %.2f for %q", m.Confidence, m.Name),
			Priority: entity.ReviewPriorityMedium,
		})
	}

	return entitiesCreated, linksCreated, nil
}

// getOrCreate is the lock-free optimistic entity upsert: look up by
// normalized name, insert when absent, and on a uniqueness conflict re-read
// and use the concurrent winner.
func (s *Service) getOrCreate(ctx context.Context, m Mention, seenAt time.Time) (*entity.MonitoredEntity, bool, error) {
	normalized := normalizer.NormalizeTitle(m.Name)
	if normalized == "" {
		return nil, false, fmt.Errorf("getOrCreate: empty normalized name for %q: %w", m.Name, errMentionUnresolvable)
	}

	existing, err := s.Entities.GetByNormalizedName(ctx, normalized)
	if err != nil {
		return nil, false, fmt.Errorf("getOrCreate: lookup: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	ent := &entity.MonitoredEntity{
		Name:           m.Name,
		NormalizedName: normalized,
		EntityType:     m.Type,
		FirstSeenAt:    seenAt,
		LastSeenAt:     seenAt,
	}
	err = s.Entities.Insert(ctx, ent)
	if err == nil {
		return ent, true, nil
	}
	if !errors.Is(err, entity.ErrDuplicate) {
		return nil, false, fmt.Errorf("getOrCreate: insert: %w", err)
	}

	// A concurrent resolver created the same entity first; proceed with
	// the winner's identifier.
	winner, err := s.Entities.GetByNormalizedName(ctx, normalized)
	if err != nil {
		return nil, false, fmt.Errorf("getOrCreate: re-read after conflict: %w", err)
	}
	if winner == nil {
		return nil, false, fmt.Errorf("getOrCreate: entity %q vanished after conflict", normalized)
	}
	return winner, false, nil
}
