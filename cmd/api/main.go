package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/marchebantum/caymanmyass-sub002/internal/classifier"
	"github.com/marchebantum/caymanmyass-sub002/internal/common/pagination"
	pgRepo "github.com/marchebantum/caymanmyass-sub002/internal/infra/adapter/persistence/postgres"
	"github.com/marchebantum/caymanmyass-sub002/internal/infra/db"
	"github.com/marchebantum/caymanmyass-sub002/internal/infra/source"
	"github.com/marchebantum/caymanmyass-sub002/internal/observability/logging"
	"github.com/marchebantum/caymanmyass-sub002/internal/observability/slo"
	"github.com/marchebantum/caymanmyass-sub002/internal/observability/tracing"
	"github.com/marchebantum/caymanmyass-sub002/internal/resilience/circuitbreaker"
	"github.com/marchebantum/caymanmyass-sub002/pkg/config"

	artUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/article"
	ingestUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/ingest"
	monUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/monitored"
	reviewUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/review"
	statsUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/stats"

	hhttp "github.com/marchebantum/caymanmyass-sub002/internal/handler/http"
	harticle "github.com/marchebantum/caymanmyass-sub002/internal/handler/http/article"
	hingest "github.com/marchebantum/caymanmyass-sub002/internal/handler/http/ingest"
	hmonitored "github.com/marchebantum/caymanmyass-sub002/internal/handler/http/monitored"
	"github.com/marchebantum/caymanmyass-sub002/internal/handler/http/requestid"
	hrun "github.com/marchebantum/caymanmyass-sub002/internal/handler/http/run"
	hstats "github.com/marchebantum/caymanmyass-sub002/internal/handler/http/stats"
)

func main() {
	logger := logging.NewLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	handler, reviewSvc := setupServer(logger, database, version)

	runServer(logger, handler, version)

	// Drain the review queue after the HTTP server has stopped so no
	// in-flight dispatch is lost.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := reviewSvc.Shutdown(shutdownCtx); err != nil {
		logger.Error("review queue shutdown incomplete", slog.Any("error", err))
	}
}

// initDatabase opens the database connection and applies pending migrations.
// The API process owns the schema; the worker only waits for it.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from the VERSION environment
// variable, falling back to "dev".
func getVersion() string {
	return config.GetEnvString("VERSION", "dev")
}

// setupServer wires repositories, services and handlers into the root HTTP
// handler. It returns the review service so main can drain it on shutdown.
func setupServer(logger *slog.Logger, database *sql.DB, version string) (http.Handler, reviewUC.Service) {
	// Repository queries run behind a shared breaker so a dead database
	// fails fast instead of tying up every request in driver timeouts.
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
	newsapi := source.NewNewsAPIClient(srcConfig)
	gdelt := source.NewGDELTClient(srcConfig)
	clients := map[string]ingestUC.SourceClient{
		newsapi.Name(): newsapi,
		gdelt.Name():   gdelt,
	}
	breakers := []*circuitbreaker.CircuitBreaker{newsapi.Breaker(), gdelt.Breaker()}

	ingestSvc := ingestUC.NewService(articleRepo, runRepo, settingsRepo,
		clients, cls, reviewSvc, ingestUC.DefaultConfig())
	artSvc := &artUC.Service{Repo: articleRepo}
	monSvc := &monUC.Service{Repo: entityRepo}
	statsSvc := &statsUC.Service{
		Articles: articleRepo,
		Entities: entityRepo,
		Runs:     runRepo,
		Settings: settingsRepo,
	}

	paginationCfg := pagination.LoadFromEnv()

	// SLO gauges are recomputed from the last minute of traffic.
	sloTracker := slo.NewTracker()
	sloTracker.StartUpdater(context.Background(), time.Minute)

	mux := http.NewServeMux()
	harticle.Register(mux, artSvc, paginationCfg, logger)
	hmonitored.Register(mux, monSvc, paginationCfg, logger)
	hrun.Register(mux, statsSvc, logger)
	hstats.Register(mux, statsSvc, logger)

	// レート制限: 手動トリガーは1分間に5リクエストまで
	ingestLimiter := hhttp.NewRateLimiter(5, 1*time.Minute)
	hingest.Register(mux, ingestSvc, logger, ingestLimiter)

	mux.Handle("GET /healthz", &hhttp.HealthHandler{DB: database, Version: version, Breakers: breakers})
	mux.Handle("GET /readyz", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /livez", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	logger.Info("routes registered", slog.Int("sources", len(clients)))
	return applyMiddleware(logger, mux, sloTracker), reviewSvc
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

// applyMiddleware wraps the handler with the middleware chain.
// Order (outermost first): request ID, recovery, logging, tracing, timeout,
// input validation, body limit, SLO tracking, metrics.
func applyMiddleware(logger *slog.Logger, handler http.Handler, tracker *slo.Tracker) http.Handler {
	chain := handler

	// Apply in reverse order (innermost to outermost)
	chain = hhttp.MetricsMiddleware(chain)
	chain = tracker.Middleware(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain) // 1MB limit
	chain = hhttp.InputValidation()(chain)
	chain = hhttp.Timeout(30 * time.Second)(chain)
	chain = tracing.Middleware(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = requestid.Middleware(chain)

	return chain
}

// runServer starts the HTTP server and blocks until a termination signal
// arrives, then shuts it down gracefully.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := ":" + config.GetEnvString("API_PORT", "8080")

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
