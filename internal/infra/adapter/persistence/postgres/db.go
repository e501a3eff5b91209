package postgres

import (
	"context"
	"database/sql"
)

// DB is the subset of database/sql the repositories use. Both *sql.DB and
// the circuit-breaker wrapper in resilience/circuitbreaker satisfy it, so
// callers choose whether repository queries run behind breaker protection.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}
