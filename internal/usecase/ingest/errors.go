package ingest

import "errors"

// Sentinel errors for run fail-fast outcomes. Handlers map these to
// distinguishable HTTP statuses (400 unknown source, 503 disabled,
// 429 quota exhausted).
var (
	// ErrUnknownSource indicates the requested source tag has no client.
	ErrUnknownSource = errors.New("unknown ingestion source")

	// ErrSourceDisabled indicates the source is switched off in settings.
	ErrSourceDisabled = errors.New("source is disabled")

	// ErrMissingAPIKey indicates the source client has no credential
	// configured. Client-actionable, never retried automatically.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrQuotaExhausted indicates the daily request quota is used up.
	// The run fails before any external call and the counter is unchanged.
	ErrQuotaExhausted = errors.New("request quota exhausted")
)
