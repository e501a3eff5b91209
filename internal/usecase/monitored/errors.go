// Package monitored provides read-side use cases for monitored entities,
// the named organizations, people, and service providers accumulated by
// entity resolution.
package monitored

import "errors"

// Sentinel errors for monitored entity use case operations.
var (
	// ErrEntityNotFound indicates that the requested entity was not found.
	ErrEntityNotFound = errors.New("monitored entity not found")

	// ErrInvalidEntityID indicates that the provided entity ID is invalid.
	// Entity IDs must be positive integers.
	ErrInvalidEntityID = errors.New("invalid entity ID")
)
