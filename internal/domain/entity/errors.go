package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks lookups for articles, entities or runs that
	// matched nothing. Handlers translate it to a 404.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput marks malformed caller input. Handlers translate
	// it to a 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed marks field-level validation failures.
	ErrValidationFailed = errors.New("validation failed")

	// ErrDuplicate marks inserts that hit a uniqueness constraint.
	// For articles, entities and links this is an expected race
	// outcome, not a failure: callers treat it as "already exists".
	ErrDuplicate = errors.New("duplicate record")
)

// ValidationError carries the field that failed validation along with
// a caller-facing message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
