package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	"github.com/marchebantum/caymanmyass-sub002/internal/classifier"
	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	"github.com/marchebantum/caymanmyass-sub002/internal/handler/http/respond"
	pgRepo "github.com/marchebantum/caymanmyass-sub002/internal/infra/adapter/persistence/postgres"
	"github.com/marchebantum/caymanmyass-sub002/internal/infra/db"
	"github.com/marchebantum/caymanmyass-sub002/internal/infra/source"
	workerPkg "github.com/marchebantum/caymanmyass-sub002/internal/infra/worker"
	"github.com/marchebantum/caymanmyass-sub002/internal/observability/logging"
	"github.com/marchebantum/caymanmyass-sub002/internal/resilience/circuitbreaker"
	ingestUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/ingest"
	resolveUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/resolve"
	reviewUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/review"
)

func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM articles LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := logging.NewLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("ingest_schedule", workerConfig.IngestSchedule),
		slog.String("resolve_schedule", workerConfig.ResolveSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.Int("resolve_batch_size", workerConfig.ResolveBatchSize),
		slog.Int("health_port", workerConfig.HealthPort))

	ingestSvc, resolveSvc, reviewSvc := setupServices(logger, database)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := reviewSvc.Shutdown(shutdownCtx); err != nil {
			logger.Error("review queue shutdown incomplete", slog.Any("error", err))
		}
	}()

	// Start metrics HTTP server
	startMetricsServer(ctx, logger)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	startCronWorker(ctx, logger, ingestSvc, resolveSvc, workerConfig, workerMetrics, healthServer)
}

// initDatabase opens the database connection and waits for migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

// setupServices wires the ingestion coordinator, the entity resolver and the
// shared review queue over the postgres repositories.
func setupServices(logger *slog.Logger, database *sql.DB) (*ingestUC.Service, *resolveUC.Service, reviewUC.Service) {
	guarded := circuitbreaker.GuardDB(database)

	articleRepo := pgRepo.NewArticleRepo(guarded)
	runRepo := pgRepo.NewRunRepo(guarded)
	settingsRepo := pgRepo.NewSettingsRepo(guarded)
	entityRepo := pgRepo.NewEntityRepo(guarded)
	reviewRepo := pgRepo.NewReviewRepo(guarded)

	reviewSvc := reviewUC.NewService(reviewRepo, 4)

	cls := loadClassifier(logger)

	srcConfig, err := source.LoadConfigFromEnv()
	if err != nil {
		logger.Error("failed to load source configuration", slog.Any("error", err))
		os.Exit(1)
	}
	clients := map[string]ingestUC.SourceClient{}
	newsapi := source.NewNewsAPIClient(srcConfig)
	clients[newsapi.Name()] = newsapi
	gdelt := source.NewGDELTClient(srcConfig)
	clients[gdelt.Name()] = gdelt

	ingestSvc := ingestUC.NewService(articleRepo, runRepo, settingsRepo,
		clients, cls, reviewSvc, ingestUC.DefaultConfig())
	resolveSvc := resolveUC.NewService(articleRepo, entityRepo, reviewSvc)

	logger.Info("pipeline services initialized", slog.Int("sources", len(clients)))
	return ingestSvc, resolveSvc, reviewSvc
}

// loadClassifier builds the relevance classifier, optionally from a YAML
// keyword/signal cluster file named by CLASSIFIER_CONFIG_PATH.
func loadClassifier(logger *slog.Logger) *classifier.Classifier {
	path := os.Getenv("CLASSIFIER_CONFIG_PATH")
	cfg, err := classifier.LoadConfig(path)
	if err != nil {
		logger.Error("failed to load classifier configuration",
			slog.String("path", path), slog.Any("error", err))
		os.Exit(1)
	}
	if path != "" {
		logger.Info("classifier configuration loaded", slog.String("path", path))
	}
	return classifier.New(cfg)
}

// startCronWorker starts the cron scheduler with the ingestion and resolver
// jobs and blocks until a termination signal arrives.
func startCronWorker(
	ctx context.Context,
	logger *slog.Logger,
	ingestSvc *ingestUC.Service,
	resolveSvc *resolveUC.Service,
	cfg *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.IngestSchedule, func() {
		runIngestJob(logger, ingestSvc, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add ingest cron job", slog.Any("error", err))
		os.Exit(1)
	}

	_, err = c.AddFunc(cfg.ResolveSchedule, func() {
		runResolveJob(logger, resolveSvc, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add resolve cron job", slog.Any("error", err))
		os.Exit(1)
	}

	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started",
		slog.String("ingest_schedule", cfg.IngestSchedule),
		slog.String("resolve_schedule", cfg.ResolveSchedule),
		slog.String("timezone", cfg.Timezone))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	case <-ctx.Done():
	}

	// Let an in-flight job finish before tearing the process down.
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(cfg.RunTimeout):
		logger.Warn("cron jobs did not finish before shutdown deadline")
	}
}

// runIngestJob executes one scheduled ingestion cycle across all sources.
func runIngestJob(logger *slog.Logger, svc *ingestUC.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	logger.Info("scheduled ingestion started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	results := svc.IngestAll(ctx, entity.TriggerScheduled)

	fetched, stored, duplicates, relevant := 0, 0, 0, 0
	success := true
	for _, res := range results {
		fetched += res.Fetched
		stored += res.New
		duplicates += res.Duplicate
		relevant += res.Relevant
		if !res.Success {
			success = false
			// 機密情報をマスクしてログ出力
			logger.Error("ingestion sub-run failed",
				slog.String("source", res.Source),
				slog.Any("error", respond.SanitizeError(fmt.Errorf("%s", res.Message))))
		}
	}

	status := "success"
	if !success {
		status = "failure"
	}
	metrics.RecordJobRun(workerPkg.JobIngest, status)
	metrics.RecordJobDuration(workerPkg.JobIngest, time.Since(startTime).Seconds())
	metrics.RecordRecordsProcessed(workerPkg.JobIngest, fetched)
	if success {
		metrics.RecordLastSuccess(workerPkg.JobIngest)
	}

	logger.Info("scheduled ingestion completed",
		slog.Int("sources", len(results)),
		slog.Int("fetched", fetched),
		slog.Int("new", stored),
		slog.Int("duplicate", duplicates),
		slog.Int("relevant", relevant),
		slog.Duration("duration", time.Since(startTime)),
	)
}

// runResolveJob executes one entity-resolution sweep over classified articles.
func runResolveJob(logger *slog.Logger, svc *resolveUC.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	logger.Info("resolver sweep started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	result, err := svc.ResolveArticles(ctx, cfg.ResolveBatchSize)
	if err != nil {
		logger.Error("resolver sweep failed", slog.Any("error", respond.SanitizeError(err)))
		metrics.RecordJobRun(workerPkg.JobResolve, "failure")
		metrics.RecordJobDuration(workerPkg.JobResolve, time.Since(startTime).Seconds())
		return
	}

	metrics.RecordJobRun(workerPkg.JobResolve, "success")
	metrics.RecordJobDuration(workerPkg.JobResolve, time.Since(startTime).Seconds())
	metrics.RecordRecordsProcessed(workerPkg.JobResolve, result.Articles)
	metrics.RecordLastSuccess(workerPkg.JobResolve)

	logger.Info("resolver sweep completed",
		slog.Int("articles", result.Articles),
		slog.Int("mentions", result.Mentions),
		slog.Int("entities_created", result.EntitiesCreated),
		slog.Int("links_created", result.LinksCreated),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("duration", time.Since(startTime)),
	)
}
