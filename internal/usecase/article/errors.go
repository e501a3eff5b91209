// Package article provides read-side use cases for ingested articles:
// filtered and paginated listing plus single-article retrieval.
package article

import "errors"

var (
	// ErrArticleNotFound is returned when the requested article does
	// not exist. The handler maps it to a 404.
	ErrArticleNotFound = errors.New("article not found")

	// ErrInvalidArticleID is returned for non-positive IDs. The
	// handler maps it to a 400.
	ErrInvalidArticleID = errors.New("invalid article ID")
)
