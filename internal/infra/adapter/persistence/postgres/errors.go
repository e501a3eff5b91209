// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint violation.
// Concurrent ingestion or resolution runs may both pass an in-process dedup
// check before either commits; the constraint violation on insert is the
// expected outcome of that race and is mapped to entity.ErrDuplicate by the
// repositories rather than surfaced as a failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
