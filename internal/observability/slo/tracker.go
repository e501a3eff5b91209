package slo

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"
)

// maxSamples bounds the per-window latency sample buffer. One minute of
// traffic above this rate still yields stable quantiles from the prefix.
const maxSamples = 4096

// Tracker accumulates per-window request outcomes and publishes the derived
// SLO gauges on each flush. One Tracker serves the whole process.
type Tracker struct {
	mu        sync.Mutex
	total     int64
	errors    int64 // 5xx responses
	durations []float64
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{durations: make([]float64, 0, maxSamples)}
}

// Observe records one finished request.
func (t *Tracker) Observe(statusCode int, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	if statusCode >= 500 {
		t.errors++
	}
	if len(t.durations) < maxSamples {
		t.durations = append(t.durations, duration.Seconds())
	}
}

// Middleware wraps next so every response is observed by the tracker.
func (t *Tracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		t.Observe(sw.status, time.Since(start))
	})
}

// Flush computes the window's availability, error rate and latency quantiles,
// publishes them to the SLO gauges and resets the window. Windows with no
// traffic leave the gauges untouched.
func (t *Tracker) Flush() {
	t.mu.Lock()
	total, errors := t.total, t.errors
	durations := t.durations
	t.total, t.errors = 0, 0
	t.durations = make([]float64, 0, maxSamples)
	t.mu.Unlock()

	if total == 0 {
		return
	}

	publishAvailability(float64(total-errors) / float64(total))
	publishErrorRate(float64(errors) / float64(total))

	if len(durations) > 0 {
		sort.Float64s(durations)
		publishLatencyP95(quantile(durations, 0.95))
		publishLatencyP99(quantile(durations, 0.99))
	}
}

// StartUpdater flushes the tracker every interval until ctx is cancelled.
func (t *Tracker) StartUpdater(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.Flush()
			}
		}
	}()
}

// quantile returns the q-quantile of sorted (nearest-rank method).
func quantile(sorted []float64, q float64) float64 {
	idx := int(q*float64(len(sorted))+0.5) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
