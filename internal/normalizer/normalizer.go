// Package normalizer provides pure functions that turn raw external records
// into canonical, comparable forms: normalized titles, URL hashes, source
// domains, bounded snippets and parsed publication timestamps.
//
// Every function here is deterministic and locale-independent. The normalized
// title and the URL hash double as storage dedup keys, so any change to the
// normalization rules invalidates existing dedup guarantees.
package normalizer

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
	"unicode"
)

// DomainUnknown is returned by ExtractDomain for unparseable input.
const DomainUnknown = "unknown"

// NormalizeTitle lowercases the input, strips punctuation and collapses
// whitespace. The result is used both for storage and as the secondary
// deduplication key for near-duplicate suppression.
func NormalizeTitle(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	lastSpace := true // suppress leading whitespace
	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		default:
			// Punctuation is dropped entirely. A separating space is only
			// emitted for whitespace so "U.S." normalizes to "us", not "u s".
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// NormalizeContent applies the same canonicalization rules as NormalizeTitle.
// Kept as a separate name so call sites document which field they feed.
func NormalizeContent(raw string) string {
	return NormalizeTitle(raw)
}

// ExtractDomain parses a URL and returns its host with any leading "www."
// stripped. Unparseable input yields the DomainUnknown sentinel rather than
// an error: a bad URL must not fail record normalization.
func ExtractDomain(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return DomainUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return DomainUnknown
	}
	return host
}

// URLHash returns the SHA-256 hex digest of the canonical URL string.
// It is a pure function of the URL (no time or salt component) so that the
// same URL always maps to the same primary dedup key across runs.
func URLHash(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

// Snippet truncates text to at most maxLen runes without corrupting UTF-8
// encoding. maxLen <= 0 yields an empty snippet.
func Snippet(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen])
}

// dateLayouts are tried in order by ParseDate. RFC3339 first: both NewsAPI
// and GDELT-style feeds emit ISO-8601 timestamps in practice.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
	"20060102150405", // GDELT compact form
}

// ParseDate tolerantly parses a source-provided publication timestamp.
// It never returns an error: unparseable input yields nil, which is a valid,
// storable state. It deliberately does not fall back to the current time,
// since a fabricated timestamp would poison date-range queries.
func ParseDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
