package http

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Timeout enforces a per-request deadline. Requests that outlive the
// deadline receive 504 Gateway Timeout, and any later writes from the
// still-running handler are discarded. The request context carries the
// deadline so repositories and source clients stop work early.
func Timeout(limit time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), limit)
			defer cancel()

			guard := &deadlineWriter{ResponseWriter: w}
			finished := make(chan struct{})

			go func() {
				next.ServeHTTP(guard, r.WithContext(ctx))
				close(finished)
			}()

			select {
			case <-finished:
			case <-ctx.Done():
				guard.expire()
			}
		})
	}
}

// deadlineWriter serializes writes between the handler goroutine and the
// timeout path. Whichever side writes first wins; the other side's writes
// are dropped.
type deadlineWriter struct {
	http.ResponseWriter

	mu      sync.Mutex
	wrote   bool
	expired bool
}

func (d *deadlineWriter) WriteHeader(status int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.expired || d.wrote {
		return
	}
	d.wrote = true
	d.ResponseWriter.WriteHeader(status)
}

func (d *deadlineWriter) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.expired {
		return 0, http.ErrHandlerTimeout
	}
	if !d.wrote {
		d.wrote = true
		d.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return d.ResponseWriter.Write(p)
}

// expire emits the 504 response unless the handler already wrote one.
func (d *deadlineWriter) expire() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.expired = true
	if !d.wrote {
		d.ResponseWriter.Header().Set("Content-Type", "application/json")
		d.ResponseWriter.WriteHeader(http.StatusGatewayTimeout)
		_, _ = d.ResponseWriter.Write([]byte(`{"error":"request timeout"}`))
	}
}
