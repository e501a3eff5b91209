package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthServer is the worker's probe endpoint. The worker has no request
// traffic of its own, so liveness and readiness get a minimal dedicated
// listener: /livez always answers 200, /readyz answers 503 until the cron
// scheduler is up and 200 after.
type HealthServer struct {
	addr   string
	logger *slog.Logger
	ready  atomic.Bool
	server *http.Server
}

type probeResponse struct {
	Status string `json:"status"`
}

// NewHealthServer creates a health server listening on addr once Start is
// called. It reports not-ready until SetReady(true).
func NewHealthServer(addr string, logger *slog.Logger) *HealthServer {
	return &HealthServer{addr: addr, logger: logger}
}

// Start serves the probe endpoints until ctx is cancelled, then shuts down
// gracefully within 5 seconds. It returns http.ErrServerClosed on a clean
// shutdown, like http.Server does.
func (h *HealthServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", h.handleLive)
	mux.HandleFunc("GET /readyz", h.handleReady)

	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("worker health server starting", slog.String("addr", h.addr))
		if err := h.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("worker health server shutdown failed", slog.Any("error", err))
			return err
		}
		h.logger.Info("worker health server stopped")
		return http.ErrServerClosed
	case err := <-errCh:
		if err != http.ErrServerClosed {
			h.logger.Error("worker health server failed", slog.Any("error", err))
		}
		return err
	}
}

// SetReady flips the readiness state reported by /readyz.
func (h *HealthServer) SetReady(ready bool) {
	h.ready.Store(ready)
	h.logger.Info("worker readiness changed", slog.Bool("ready", ready))
}

func (h *HealthServer) handleLive(w http.ResponseWriter, r *http.Request) {
	h.writeProbe(w, http.StatusOK, "alive")
}

func (h *HealthServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.ready.Load() {
		h.writeProbe(w, http.StatusOK, "ready")
		return
	}
	h.writeProbe(w, http.StatusServiceUnavailable, "not ready")
}

func (h *HealthServer) writeProbe(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(probeResponse{Status: status}); err != nil {
		h.logger.Error("failed to encode probe response", slog.Any("error", err))
	}
}
