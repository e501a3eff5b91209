package run

import (
	"log/slog"
	"net/http"

	statsUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/stats"
)

// Register registers the ingestion run HTTP handlers with the given mux.
func Register(mux *http.ServeMux, svc *statsUC.Service, logger *slog.Logger) {
	mux.Handle("GET /runs", ListHandler{Svc: svc, Logger: logger})
	mux.Handle("GET /runs/", GetHandler{Svc: svc})
}
