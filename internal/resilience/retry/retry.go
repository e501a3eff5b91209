// Package retry runs operations again after transient failures, with
// exponential backoff and jitter between attempts. The source clients
// wrap their NewsAPI and GDELT fetches in it.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Config controls how often and how patiently an operation is retried.
type Config struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64 // fraction of the delay added as random jitter, 0..1
}

// DefaultConfig is a moderate three-attempt policy.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   1 * time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// FeedFetchConfig is the policy for GDELT feed fetches. The feed is free,
// so transient network failures get retried aggressively.
func FeedFetchConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 5
	return cfg
}

// NewsAPIConfig is the policy for NewsAPI calls. Every request counts
// against the daily quota, so only one retry is worth its price.
func NewsAPIConfig() Config {
	return Config{
		MaxAttempts:    2,
		InitialDelay:   2 * time.Second,
		MaxDelay:       10 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// WithBackoff runs fn until it succeeds, fails with a non-retryable
// error, or exhausts cfg.MaxAttempts. The wait between attempts grows by
// cfg.Multiplier up to cfg.MaxDelay and is cut short if ctx ends.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	delay := cfg.InitialDelay

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			if attempt > 1 {
				slog.Info("retry succeeded", slog.Int("attempt", attempt))
			}
			return nil
		}

		if !IsRetryable(err) {
			slog.Warn("giving up, error is not retryable",
				slog.Int("attempt", attempt), slog.Any("error", err))
			return err
		}
		if attempt == cfg.MaxAttempts {
			return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, err)
		}

		slog.Warn("attempt failed, backing off",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("delay", delay),
			slog.Any("error", err))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}
		delay = nextDelay(cfg, delay)
	}
}

// transientSyscalls are connection-level failures a retry can plausibly
// outlive.
var transientSyscalls = []error{
	syscall.ECONNREFUSED,
	syscall.ECONNRESET,
	syscall.ETIMEDOUT,
	syscall.ENETUNREACH,
}

// IsRetryable reports whether err is transient: network timeouts,
// connection-level syscall failures, and HTTP 5xx/429/408 responses.
// Context cancellation is never retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	for _, transient := range transientSyscalls {
		if errors.Is(err, transient) {
			return true
		}
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusRequestTimeout:
			return true
		}
		return httpErr.StatusCode >= 500 && httpErr.StatusCode < 600
	}

	return false
}

// HTTPError carries a response status code so IsRetryable can separate
// server-side failures from client mistakes.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// nextDelay grows the delay exponentially, caps it at cfg.MaxDelay, and
// adds jitter so synchronized clients do not retry in lockstep.
func nextDelay(cfg Config, delay time.Duration) time.Duration {
	delay = time.Duration(float64(delay) * cfg.Multiplier)
	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return jittered(delay, cfg.JitterFraction)
}

func jittered(delay time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return delay
	}
	if fraction > 1.0 {
		fraction = 1.0
	}
	// #nosec G404 -- backoff jitter does not need cryptographic randomness.
	return delay + time.Duration(rand.Float64()*float64(delay)*fraction)
}
