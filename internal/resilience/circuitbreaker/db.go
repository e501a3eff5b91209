package circuitbreaker

import (
	"context"
	"database/sql"
	"time"

	"github.com/sony/gobreaker"
)

// StoreConfig returns configuration for the Postgres store breaker.
// The store backs every read and write path, so the breaker only trips on
// sustained total failure and recovers quickly once the database answers again.
func StoreConfig() Config {
	return Config{
		Name:             "postgres",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
	}
}

// GuardedDB runs repository queries through a circuit breaker. When Postgres
// stops answering, the open circuit fails ingestion runs and API requests
// immediately instead of letting every caller wait out its own timeout.
//
// GuardedDB satisfies the postgres.DB interface used by the repositories.
type GuardedDB struct {
	inner *sql.DB
	cb    *CircuitBreaker
}

// GuardDB wraps db with the StoreConfig breaker.
func GuardDB(db *sql.DB) *GuardedDB {
	return GuardDBWithConfig(db, StoreConfig())
}

// GuardDBWithConfig wraps db with a breaker built from cfg.
func GuardDBWithConfig(db *sql.DB, cfg Config) *GuardedDB {
	return &GuardedDB{inner: db, cb: New(cfg)}
}

// QueryContext runs a query through the breaker. With the circuit open it
// returns gobreaker.ErrOpenState without touching the database.
func (g *GuardedDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	res, err := g.cb.Execute(func() (interface{}, error) {
		return g.inner.QueryContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return res.(*sql.Rows), nil
}

// ExecContext runs a statement through the breaker.
func (g *GuardedDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	res, err := g.cb.Execute(func() (interface{}, error) {
		return g.inner.ExecContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return res.(sql.Result), nil
}

// QueryRowContext bypasses the breaker. sql.Row defers its error to Scan, so
// there is no failure to record here; the surrounding QueryContext and
// ExecContext traffic keeps the breaker state honest.
func (g *GuardedDB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return g.inner.QueryRowContext(ctx, query, args...)
}

// State reports the current breaker state.
func (g *GuardedDB) State() gobreaker.State {
	return g.cb.State()
}

// Unwrap returns the underlying connection for callers that must not go
// through the breaker, such as health pings and migrations.
func (g *GuardedDB) Unwrap() *sql.DB {
	return g.inner
}
