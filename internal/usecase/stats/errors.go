package stats

import "errors"

var (
	// ErrUnknownSource indicates a run listing filter named a source that
	// no ingestion client serves.
	ErrUnknownSource = errors.New("unknown run source")

	// ErrRunNotFound indicates no ingestion run exists for the given ID.
	ErrRunNotFound = errors.New("ingestion run not found")

	// ErrInvalidRunID indicates the run ID is not a UUID.
	ErrInvalidRunID = errors.New("invalid run ID")
)
