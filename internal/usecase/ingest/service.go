// Package ingest implements the ingestion run coordinator and the
// deduplication gate: one fetch-classify-dedup-store cycle per external
// source, with rate-limit accounting and run-record bookkeeping.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/marchebantum/caymanmyass-sub002/internal/classifier"
	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	"github.com/marchebantum/caymanmyass-sub002/internal/normalizer"
	"github.com/marchebantum/caymanmyass-sub002/internal/observability/metrics"
	"github.com/marchebantum/caymanmyass-sub002/internal/observability/tracing"
	"github.com/marchebantum/caymanmyass-sub002/internal/repository"
	"github.com/marchebantum/caymanmyass-sub002/internal/usecase/review"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// SourceRecord is the shape the coordinator requires from any ingestion
// source: a canonical URL, a title, optional description/body and author, a
// source-provided identifier, and the publication timestamp as the source
// sent it. Timestamp parsing happens in the coordinator so the
// nil-on-malformed rule holds for every source.
type SourceRecord struct {
	Title       string
	URL         string
	Description string
	Content     string
	Author      string
	SourceID    string
	Published   string
}

// SourceQuery carries the fetch window and keyword set to a source client.
type SourceQuery struct {
	Keywords []string
	From     time.Time
}

// SourceClient is an interface for fetching raw records from one external
// news source.
type SourceClient interface {
	// Name returns the source system tag (entity.SourceNewsAPI, ...).
	Name() string

	// Validate reports a configuration problem (e.g. missing API key)
	// before any external call is made.
	Validate() error

	// Fetch retrieves raw records for the given query.
	Fetch(ctx context.Context, q SourceQuery) ([]SourceRecord, error)
}

// Config holds coordinator tunables.
type Config struct {
	// LookbackDays bounds the fetch window captured on each run.
	LookbackDays int

	// SnippetMaxLen bounds stored content snippets, in runes.
	SnippetMaxLen int

	// ReviewConfidenceThreshold: relevant articles classified below this
	// confidence are emitted to the review queue.
	ReviewConfidenceThreshold float64
}

// DefaultConfig returns the default coordinator configuration.
func DefaultConfig() Config {
	return Config{
		LookbackDays:              3,
		SnippetMaxLen:             500,
		ReviewConfidenceThreshold: 0.5,
	}
}

// RunResult is the structured outcome of one ingestion run. Failures are
// reported through Success and Message, never as a bare stack trace.
type RunResult struct {
	Success   bool   `json:"success"`
	RunID     string `json:"run_id,omitempty"`
	Source    string `json:"source"`
	Message   string `json:"message,omitempty"`
	Fetched   int    `json:"fetched"`
	New       int    `json:"new"`
	Duplicate int    `json:"duplicate"`
	Relevant  int    `json:"relevant"`
}

// Service is the ingestion run coordinator. Each invocation is a stateless
// unit of work; all shared state lives in the backing store, so concurrent
// runs (scheduled overlapping manual) converge through storage constraints
// rather than in-process locks.
type Service struct {
	Articles   repository.ArticleRepository
	Runs       repository.RunRepository
	Settings   repository.SettingsRepository
	Clients    map[string]SourceClient
	Classifier *classifier.Classifier
	Review     review.Service // optional, nil disables review emission

	cfg Config
}

// NewService creates an ingestion coordinator with the provided dependencies.
func NewService(
	articles repository.ArticleRepository,
	runs repository.RunRepository,
	settings repository.SettingsRepository,
	clients map[string]SourceClient,
	cls *classifier.Classifier,
	reviewSvc review.Service,
	cfg Config,
) *Service {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = DefaultConfig().LookbackDays
	}
	if cfg.SnippetMaxLen <= 0 {
		cfg.SnippetMaxLen = DefaultConfig().SnippetMaxLen
	}
	if cfg.ReviewConfidenceThreshold <= 0 {
		cfg.ReviewConfidenceThreshold = DefaultConfig().ReviewConfidenceThreshold
	}
	return &Service{
		Articles:   articles,
		Runs:       runs,
		Settings:   settings,
		Clients:    clients,
		Classifier: cls,
		Review:     reviewSvc,
		cfg:        cfg,
	}
}

// IngestSource runs one fetch-classify-dedup-store cycle for the named
// source. The returned RunResult is always non-nil; the error, when non-nil,
// is one of the package sentinels (for status mapping) or a run-aborting
// fetch error. Per-record failures never surface here: they are collected
// into the run's error list and the run still completes.
func (s *Service) IngestSource(ctx context.Context, source, trigger string) (*RunResult, error) {
	client, ok := s.Clients[source]
	if !ok {
		return &RunResult{Source: source, Message: "unknown source: " + source},
			fmt.Errorf("IngestSource: %w: %s", ErrUnknownSource, source)
	}

	ctx, span := tracing.GetTracer().Start(ctx, "ingest."+source)
	defer span.End()

	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return &RunResult{Source: source, Message: "settings unavailable"},
			fmt.Errorf("IngestSource: read settings: %w", err)
	}

	// Pre-flight configuration checks happen before the run record exists:
	// a misconfigured trigger is a client error, not a pipeline attempt.
	if source == entity.SourceNewsAPI {
		if !settings.NewsAPIEnabled {
			return &RunResult{Source: source, Message: "newsapi ingestion is disabled"},
				fmt.Errorf("IngestSource: %w", ErrSourceDisabled)
		}

		// A stale billing period means the daily counter belongs to a
		// previous day; reset before quota admission.
		today := time.Now().UTC().Truncate(24 * time.Hour)
		if settings.PeriodStart.Before(today) {
			if err := s.Settings.ResetPeriod(ctx, today); err != nil {
				slog.Warn("failed to reset quota period",
					slog.Any("error", err))
			} else if settings, err = s.Settings.Get(ctx); err != nil {
				return &RunResult{Source: source, Message: "settings unavailable"},
					fmt.Errorf("IngestSource: re-read settings: %w", err)
			}
		}
	}
	if err := client.Validate(); err != nil {
		return &RunResult{Source: source, Message: err.Error()},
			fmt.Errorf("IngestSource: %w", err)
	}

	run := &entity.IngestionRun{
		ID:           uuid.New().String(),
		Source:       source,
		Status:       entity.RunStatusStarted,
		TriggeredBy:  trigger,
		StartedAt:    time.Now(),
		LookbackDays: s.cfg.LookbackDays,
	}
	if source == entity.SourceNewsAPI {
		remaining := settings.QuotaRemaining()
		run.QuotaRemaining = &remaining
	}

	if err := s.Runs.Create(ctx, run); err != nil {
		return &RunResult{Source: source, Message: "failed to start run"},
			fmt.Errorf("IngestSource: create run: %w", err)
	}

	// The run record is finalized exactly once, whatever path the pipeline
	// takes out of this function.
	var runErr error
	defer s.finalize(ctx, run, &runErr)

	// Quota admission control for metered sources: fail fast with a
	// distinguishable rate-limit outcome, zero external calls, counter
	// untouched.
	if source == entity.SourceNewsAPI {
		allowed, qerr := s.Settings.TryIncrementRequestCount(ctx)
		if qerr != nil {
			runErr = fmt.Errorf("IngestSource: quota check: %w", qerr)
			run.Errors = append(run.Errors, "quota check: "+qerr.Error())
			return s.result(run, "quota check failed"), runErr
		}
		if !allowed {
			runErr = ErrQuotaExhausted
			run.Errors = append(run.Errors, ErrQuotaExhausted.Error())
			metrics.UpdateNewsAPIQuotaRemaining(0)
			return s.result(run, "daily request quota exhausted"), fmt.Errorf("IngestSource: %w", ErrQuotaExhausted)
		}
		metrics.UpdateNewsAPIQuotaRemaining(settings.QuotaRemaining() - 1)
	}

	query := SourceQuery{
		Keywords: settings.Keywords,
		From:     run.StartedAt.AddDate(0, 0, -s.cfg.LookbackDays),
	}

	records, err := client.Fetch(ctx, query)
	if err != nil {
		// The source itself is unreachable or unhealthy: this aborts the
		// whole run, but the run record still gets its finish timestamp.
		runErr = fmt.Errorf("IngestSource: fetch %s: %w", source, err)
		run.Errors = append(run.Errors, "fetch: "+err.Error())
		metrics.RecordSourceFetchError(source, "fetch_failed")
		return s.result(run, "source fetch failed"), runErr
	}

	run.Fetched = len(records)
	metrics.RecordArticlesFetched(source, len(records))

	for _, rec := range records {
		if ctx.Err() != nil {
			runErr = fmt.Errorf("IngestSource: %w", ctx.Err())
			run.Errors = append(run.Errors, "canceled: "+ctx.Err().Error())
			return s.result(run, "run canceled"), runErr
		}
		s.processRecord(ctx, run, settings.Keywords, rec)
	}

	return s.result(run, ""), nil
}

// IngestAll fans out over all configured sources. A sub-run failure does not
// prevent sibling sub-runs from executing; overall success is the
// conjunction of sub-run successes.
func (s *Service) IngestAll(ctx context.Context, trigger string) []*RunResult {
	names := make([]string, 0, len(s.Clients))
	for name := range s.Clients {
		names = append(names, name)
	}

	var mu sync.Mutex
	results := make([]*RunResult, 0, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		source := name
		g.Go(func() error {
			res, err := s.IngestSource(gctx, source, trigger)
			if err != nil {
				slog.Warn("source ingestion failed",
					slog.String("source", source),
					slog.Any("error", err))
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			// Errors are captured in the result; returning nil keeps
			// sibling sub-runs alive.
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// processRecord runs Normalizer → Classifier → Dedup Gate → store for one
// raw record. All failures are absorbed into the run's counters and error
// list; one bad record never loses the rest of the batch.
func (s *Service) processRecord(ctx context.Context, run *entity.IngestionRun, keywords []string, rec SourceRecord) {
	if strings.TrimSpace(rec.URL) == "" || strings.TrimSpace(rec.Title) == "" {
		run.Errors = append(run.Errors, "malformed record: missing url or title")
		return
	}
	if err := entity.ValidateURL(rec.URL); err != nil {
		run.Errors = append(run.Errors, fmt.Sprintf("malformed record url %q: %v", rec.URL, err))
		return
	}

	body := rec.Content
	if body == "" {
		body = rec.Description
	}

	art := &entity.Article{
		Source:            run.Source,
		URL:               rec.URL,
		URLHash:           normalizer.URLHash(rec.URL),
		Title:             rec.Title,
		NormalizedTitle:   normalizer.NormalizeTitle(rec.Title),
		Content:           body,
		NormalizedContent: normalizer.NormalizeContent(body),
		Snippet:           normalizer.Snippet(body, s.cfg.SnippetMaxLen),
		PublishedAt:       normalizer.ParseDate(rec.Published),
		SourceDomain:      normalizer.ExtractDomain(rec.URL),
		Status:            entity.ArticleStatusPending,
		IngestedAt:        time.Now(),
	}

	res := s.Classifier.Classify(art.Title, art.Content, keywords)
	if !res.Relevant {
		// Out-of-domain records are filtered, not stored.
		return
	}
	run.Relevant++
	metrics.RecordArticleRelevant(run.Source)

	art.MatchedKeywords = res.MatchedKeywords
	art.Relevant = true
	art.Signals = res.Signals
	confidence := res.Confidence
	art.Confidence = &confidence
	art.Status = entity.ArticleStatusClassified

	// Dedup gate: two point lookups as a cheap pre-filter. The storage
	// uniqueness constraints remain the true arbiter under concurrency.
	if dup, reason := s.isDuplicate(ctx, run, art); dup {
		run.Duplicate++
		metrics.RecordArticleDuplicate(run.Source, reason)
		return
	}

	if err := s.Articles.Create(ctx, art); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			// Lost the insert race to a concurrent run. A normal
			// duplicate outcome, never logged as an error.
			run.Duplicate++
			metrics.RecordArticleDuplicate(run.Source, "constraint")
			return
		}
		run.Errors = append(run.Errors, fmt.Sprintf("store %q: %v", rec.URL, err))
		return
	}

	run.New++
	metrics.RecordArticleStored(run.Source)

	if s.Review != nil && res.Confidence < s.cfg.ReviewConfidenceThreshold {
		s.Review.Dispatch(ctx, &entity.ReviewItem{
			ItemType: entity.ReviewItemArticle,
			ItemRef:  strconv.FormatInt(art.ID, 10),
			Reason:   fmt.Sprintf("low classification confidence %.2f", res.Confidence),
			Priority: entity.ReviewPriorityMedium,
		})
	}
}

// isDuplicate applies the two-lookup dedup policy: exact (URL hash) first,
// then near-duplicate (normalized title). Lookup errors are recorded on the
// run and the record falls through to the insert, where the constraint has
// the final say.
func (s *Service) isDuplicate(ctx context.Context, run *entity.IngestionRun, art *entity.Article) (bool, string) {
	existing, err := s.Articles.GetByURLHash(ctx, art.URLHash)
	if err != nil {
		run.Errors = append(run.Errors, "dedup lookup (hash): "+err.Error())
		return false, ""
	}
	if existing != nil {
		return true, "url_hash"
	}

	existing, err = s.Articles.GetByNormalizedTitle(ctx, art.NormalizedTitle)
	if err != nil {
		run.Errors = append(run.Errors, "dedup lookup (title): "+err.Error())
		return false, ""
	}
	if existing != nil {
		return true, "title"
	}

	return false, ""
}

// finalize writes the run's terminal status exactly once. The run is failed
// when a run-aborting error occurred, completed otherwise; per-record errors
// alone do not fail a run.
func (s *Service) finalize(ctx context.Context, run *entity.IngestionRun, runErr *error) {
	if run.Finalized() {
		return
	}

	now := time.Now()
	run.FinishedAt = &now
	if *runErr != nil {
		run.Status = entity.RunStatusFailed
	} else {
		run.Status = entity.RunStatusCompleted
	}

	// The run record must never be left open, even when the triggering
	// context is already canceled.
	safeCtx := context.WithoutCancel(ctx)
	if err := s.Runs.Finalize(safeCtx, run); err != nil {
		slog.Error("failed to finalize ingestion run",
			slog.String("run_id", run.ID),
			slog.String("source", run.Source),
			slog.Any("error", err))
	}

	duration := now.Sub(run.StartedAt)
	metrics.RecordIngestionRun(run.Source, run.Status, duration)

	slog.Info("ingestion run finalized",
		slog.String("run_id", run.ID),
		slog.String("source", run.Source),
		slog.String("status", run.Status),
		slog.String("trigger", run.TriggeredBy),
		slog.Int("fetched", run.Fetched),
		slog.Int("new", run.New),
		slog.Int("duplicate", run.Duplicate),
		slog.Int("relevant", run.Relevant),
		slog.Int("errors", len(run.Errors)),
		slog.Duration("duration", duration))
}

// result builds the structured outcome for a finalized (or failing) run.
func (s *Service) result(run *entity.IngestionRun, failMessage string) *RunResult {
	res := &RunResult{
		Success:   failMessage == "",
		RunID:     run.ID,
		Source:    run.Source,
		Message:   failMessage,
		Fetched:   run.Fetched,
		New:       run.New,
		Duplicate: run.Duplicate,
		Relevant:  run.Relevant,
	}
	if res.Success && len(run.Errors) > 0 {
		res.Message = fmt.Sprintf("completed with %d record errors", len(run.Errors))
	}
	return res
}
