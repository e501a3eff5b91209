package pathutil

import (
	"regexp"
	"strings"
)

// routeTemplate maps a concrete request path onto the label the metrics
// layer records for it.
type routeTemplate struct {
	pattern  *regexp.Regexp
	template string
}

// Compiled once at startup; evaluated most specific first.
var routeTemplates = []routeTemplate{
	{regexp.MustCompile(`^/articles/\d+$`), "/articles/:id"},
	{regexp.MustCompile(`^/entities/\d+$`), "/entities/:id"},
	{regexp.MustCompile(`^/entities/\d+/articles$`), "/entities/:id/articles"},
	{regexp.MustCompile(`^/runs/[0-9a-fA-F-]{36}$`), "/runs/:id"},
	{regexp.MustCompile(`^/ingest/[a-z]+$`), "/ingest/:source"},
}

// NormalizePath collapses ID-bearing paths to their route template so the
// path label on request metrics stays bounded. Query strings and trailing
// slashes are ignored; paths that match no template pass through, which
// covers the static endpoints.
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, rt := range routeTemplates {
		if rt.pattern.MatchString(path) {
			return rt.template
		}
	}
	return path
}
