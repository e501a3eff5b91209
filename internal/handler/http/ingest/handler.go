// Package ingest provides the HTTP handlers for manually triggering
// ingestion runs. Scheduled runs go through the worker, not through here.
package ingest

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	hhttp "github.com/marchebantum/caymanmyass-sub002/internal/handler/http"
	"github.com/marchebantum/caymanmyass-sub002/internal/handler/http/respond"
	"github.com/marchebantum/caymanmyass-sub002/internal/observability/logging"
	ingestUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/ingest"
)

// TriggerAllHandler runs an ingestion cycle against every configured source.
type TriggerAllHandler struct {
	Svc    *ingestUC.Service
	Logger *slog.Logger
}

func (h TriggerAllHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	results := h.Svc.IngestAll(ctx, entity.TriggerManual)
	for _, res := range results {
		if !res.Success {
			logger.Warn("Manual ingestion sub-run failed",
				"source", res.Source, "message", res.Message)
		}
	}

	respond.JSON(w, http.StatusOK, map[string]any{"results": results})
}

// TriggerSourceHandler runs an ingestion cycle against one named source.
type TriggerSourceHandler struct {
	Svc    *ingestUC.Service
	Logger *slog.Logger
}

func (h TriggerSourceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	source := strings.TrimPrefix(r.URL.Path, "/ingest/")

	result, err := h.Svc.IngestSource(ctx, source, entity.TriggerManual)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			logger.Error("Manual ingestion failed", "source", source, "error", err.Error())
		}
		respond.JSON(w, code, result)
		return
	}

	respond.JSON(w, http.StatusOK, result)
}

// statusFor maps run fail-fast sentinels to HTTP statuses. The RunResult
// body is returned alongside so callers see the structured outcome either way.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ingestUC.ErrUnknownSource):
		return http.StatusBadRequest
	case errors.Is(err, ingestUC.ErrSourceDisabled), errors.Is(err, ingestUC.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, ingestUC.ErrQuotaExhausted):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// Register registers the manual trigger handlers with the given mux.
// Trigger routes cost an external API call per hit, so they sit behind
// their own rate limiter when one is supplied.
func Register(mux *http.ServeMux, svc *ingestUC.Service, logger *slog.Logger, rl *hhttp.RateLimiter) {
	var all http.Handler = TriggerAllHandler{Svc: svc, Logger: logger}
	var one http.Handler = TriggerSourceHandler{Svc: svc, Logger: logger}
	if rl != nil {
		all = rl.Limit(all)
		one = rl.Limit(one)
	}
	mux.Handle("POST /ingest", all)
	mux.Handle("POST /ingest/", one)
}
