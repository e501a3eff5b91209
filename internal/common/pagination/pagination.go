// Package pagination implements offset pagination for the read API's
// list endpoints. Handlers parse Params from the query string, the
// service layer turns them into a repository window through
// OffsetStrategy, and each response carries Metadata next to the page
// of results.
package pagination

import (
	appconfig "github.com/marchebantum/caymanmyass-sub002/pkg/config"
)

// Params is a page request as supplied by the client. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// Config bounds what a client may request in a single page.
type Config struct {
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns the limits used when nothing is configured:
// 20 items per page, capped at 100.
func DefaultConfig() Config {
	return Config{
		DefaultPage:  1,
		DefaultLimit: 20,
		MaxLimit:     100,
	}
}

// LoadFromEnv reads PAGINATION_DEFAULT_PAGE, PAGINATION_DEFAULT_LIMIT
// and PAGINATION_MAX_LIMIT. Unset or unparseable variables keep the
// DefaultConfig values.
func LoadFromEnv() Config {
	def := DefaultConfig()
	return Config{
		DefaultPage:  appconfig.GetEnvInt("PAGINATION_DEFAULT_PAGE", def.DefaultPage),
		DefaultLimit: appconfig.GetEnvInt("PAGINATION_DEFAULT_LIMIT", def.DefaultLimit),
		MaxLimit:     appconfig.GetEnvInt("PAGINATION_MAX_LIMIT", def.MaxLimit),
	}
}
