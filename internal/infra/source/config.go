// Package source provides clients for the external news sources the
// ingestion pipeline fetches from: the NewsAPI JSON API and a GDELT-style
// RSS feed. Both clients carry rate limiting, retry and circuit breaker
// protection so one misbehaving upstream cannot take a run down with it.
package source

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/marchebantum/caymanmyass-sub002/pkg/config"
)

// Config holds the configuration for the external source clients.
type Config struct {
	// NewsAPIKey is the NewsAPI credential. An empty key fails runs for
	// the newsapi source before any external call.
	NewsAPIKey string

	// NewsAPIBaseURL is the NewsAPI endpoint root.
	// Default: https://newsapi.org/v2
	NewsAPIBaseURL string

	// GDELTFeedURL is the GDELT-style feed endpoint root.
	// Default: https://api.gdeltproject.org/api/v2/doc/doc
	GDELTFeedURL string

	// Timeout is the maximum duration for a single fetch request.
	// Default: 30s
	Timeout time.Duration

	// PageSize bounds the number of records requested from NewsAPI per
	// call (NewsAPI caps this at 100).
	// Default: 100
	PageSize int

	// RequestsPerMinute paces outbound calls per client.
	// Default: 30
	RequestsPerMinute int
}

// DefaultConfig returns the default source client configuration.
func DefaultConfig() Config {
	return Config{
		NewsAPIBaseURL:    "https://newsapi.org/v2",
		GDELTFeedURL:      "https://api.gdeltproject.org/api/v2/doc/doc",
		Timeout:           30 * time.Second,
		PageSize:          100,
		RequestsPerMinute: 30,
	}
}

// Validate checks that the configuration values are usable.
// The API key is deliberately not checked here: a missing key is a
// per-source runtime condition surfaced by the client's Validate method,
// not a process-fatal misconfiguration.
func (c *Config) Validate() error {
	if c.NewsAPIBaseURL == "" {
		return fmt.Errorf("newsapi base URL must not be empty")
	}
	if c.GDELTFeedURL == "" {
		return fmt.Errorf("gdelt feed URL must not be empty")
	}
	if err := config.ValidatePositiveDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("page size must be between 1 and 100, got %d", c.PageSize)
	}
	if c.RequestsPerMinute < 1 {
		return fmt.Errorf("requests per minute must be positive, got %d", c.RequestsPerMinute)
	}
	return nil
}

// LoadConfigFromEnv loads source client configuration from environment
// variables, falling back to defaults for unset values.
//
// Environment variables:
//   - NEWSAPI_API_KEY: NewsAPI credential (no default)
//   - NEWSAPI_BASE_URL: endpoint root (default: https://newsapi.org/v2)
//   - GDELT_FEED_URL: feed endpoint root
//   - SOURCE_FETCH_TIMEOUT: duration string, e.g. "30s"
//   - NEWSAPI_PAGE_SIZE: integer 1-100
//   - SOURCE_REQUESTS_PER_MINUTE: integer
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.NewsAPIKey = os.Getenv("NEWSAPI_API_KEY")

	if val := os.Getenv("NEWSAPI_BASE_URL"); val != "" {
		cfg.NewsAPIBaseURL = val
	}
	if val := os.Getenv("GDELT_FEED_URL"); val != "" {
		cfg.GDELTFeedURL = val
	}
	if val := os.Getenv("SOURCE_FETCH_TIMEOUT"); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid SOURCE_FETCH_TIMEOUT: %v (expected format: '30s', '1m')", err)
		}
		cfg.Timeout = parsed
	}
	if val := os.Getenv("NEWSAPI_PAGE_SIZE"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid NEWSAPI_PAGE_SIZE: %v", err)
		}
		cfg.PageSize = parsed
	}
	if val := os.Getenv("SOURCE_REQUESTS_PER_MINUTE"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid SOURCE_REQUESTS_PER_MINUTE: %v", err)
		}
		cfg.RequestsPerMinute = parsed
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
