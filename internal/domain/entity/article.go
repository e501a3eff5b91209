// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Article, IngestionRun and
// MonitoredEntity, along with their validation rules and domain-specific errors.
package entity

import "time"

// Article lifecycle statuses. An article is created as pending, moves to
// classified once the relevance classifier has run, and ends in failed only
// when classification itself errored. Articles are never hard-deleted.
const (
	ArticleStatusPending    = "pending"
	ArticleStatusClassified = "classified"
	ArticleStatusFailed     = "failed"
)

// Known source system tags.
const (
	SourceNewsAPI = "newsapi"
	SourceGDELT   = "gdelt"
)

// ValidSource reports whether s is a known source system tag.
func ValidSource(s string) bool {
	return s == SourceNewsAPI || s == SourceGDELT
}

// SignalFlags is the closed set of per-article classification signals.
// Each flag marks that the article text matched the corresponding signal
// term cluster with at least the configured number of distinct terms.
type SignalFlags struct {
	FinancialDecline        bool
	Fraud                   bool
	MisstatedFinancials     bool
	ShareholderIssues       bool
	DirectorDuties          bool
	RegulatoryInvestigation bool
}

// Any reports whether at least one signal flag is set.
func (f SignalFlags) Any() bool {
	return f.FinancialDecline || f.Fraud || f.MisstatedFinancials ||
		f.ShareholderIssues || f.DirectorDuties || f.RegulatoryInvestigation
}

// Article represents an ingested news article.
//
// URLHash is the primary deduplication key (SHA-256 of the canonical URL);
// NormalizedTitle is the secondary key used for near-duplicate suppression.
// Both carry unique constraints in storage, which are the true arbiter of
// duplicate detection under concurrent ingestion runs.
type Article struct {
	ID                int64
	Source            string
	URL               string
	URLHash           string
	Title             string
	NormalizedTitle   string
	Content           string
	NormalizedContent string
	Snippet           string
	PublishedAt       *time.Time // nil when the source timestamp was unparseable
	SourceDomain      string
	MatchedKeywords   []string
	Relevant          bool
	Signals           SignalFlags
	Confidence        *float64
	Status            string
	IngestedAt        time.Time
}

// ArticleEntityLink connects an article to a monitored entity.
// At most one link exists per (article, entity) pair; repeat mentions within
// the same article update MentionCount instead of creating a second row.
type ArticleEntityLink struct {
	ArticleID    int64
	EntityID     int64
	Confidence   float64
	MentionCount int
}
