// Package classifier decides whether a normalized article is relevant to the
// monitored jurisdiction and which signal categories it matches.
//
// The relevance decision is a case-insensitive keyword match over title and
// content; signal tagging counts distinct term-cluster hits per text segment
// against a configurable threshold.
package classifier

import (
	"strings"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
)

// Result carries the outcome of classifying one article.
type Result struct {
	Relevant        bool
	MatchedKeywords []string
	Signals         entity.SignalFlags
	Confidence      float64
}

// Classifier scores articles against a configured keyword set and signal
// term clusters. It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	cfg Config
}

// New creates a Classifier from the given configuration.
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// ContainsKeywords returns every keyword from keywords that occurs in text,
// matched case-insensitively as a substring. Results preserve keyword-list
// order so classification output is deterministic.
func ContainsKeywords(text string, keywords []string) []string {
	lower := strings.ToLower(text)
	matched := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// Classify scores an article's title and content against the keyword list.
// An article is relevant when title or content yields at least one keyword
// match; the matched set is persisted with the article for later
// signal-breakdown statistics.
//
// The keywords argument overrides the configured fallback list; pass nil to
// use the configuration (callers normally pass the list read from the
// settings store at the start of the run).
func (c *Classifier) Classify(title, content string, keywords []string) Result {
	if keywords == nil {
		keywords = c.cfg.Keywords
	}

	combined := title + "\n" + content
	matched := ContainsKeywords(combined, keywords)

	res := Result{
		Relevant:        len(matched) > 0,
		MatchedKeywords: matched,
	}
	if !res.Relevant {
		return res
	}

	res.Signals = c.tagSignals(combined)
	res.Confidence = c.confidence(matched, res.Signals)
	return res
}

// tagSignals sets a signal flag when any text segment contains at least
// MinSignalMatches distinct terms from the signal's cluster. Segments are
// paragraph-ish: text split on line breaks, with the whole text as a final
// segment so clusters spread over short lines still register.
func (c *Classifier) tagSignals(text string) entity.SignalFlags {
	segments := splitSegments(text)

	var flags entity.SignalFlags
	for name, terms := range c.cfg.SignalClusters {
		if !c.clusterHits(segments, terms) {
			continue
		}
		switch name {
		case SignalFinancialDecline:
			flags.FinancialDecline = true
		case SignalFraud:
			flags.Fraud = true
		case SignalMisstatedFinancials:
			flags.MisstatedFinancials = true
		case SignalShareholderIssues:
			flags.ShareholderIssues = true
		case SignalDirectorDuties:
			flags.DirectorDuties = true
		case SignalRegulatoryInvestigation:
			flags.RegulatoryInvestigation = true
		}
	}
	return flags
}

func (c *Classifier) clusterHits(segments []string, terms []string) bool {
	for _, seg := range segments {
		distinct := 0
		for _, term := range terms {
			if strings.Contains(seg, strings.ToLower(term)) {
				distinct++
				if distinct >= c.cfg.MinSignalMatches {
					return true
				}
			}
		}
	}
	return false
}

func splitSegments(text string) []string {
	lower := strings.ToLower(text)
	parts := strings.FieldsFunc(lower, func(r rune) bool { return r == '\n' || r == '\r' })
	segments := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			segments = append(segments, s)
		}
	}
	segments = append(segments, lower)
	return segments
}

// confidence derives a score from match breadth: a base for being relevant
// at all, a bonus per matched keyword, and a bonus per tagged signal, capped
// at 1.0. Articles below the review threshold get queued for human review by
// the caller.
func (c *Classifier) confidence(matched []string, flags entity.SignalFlags) float64 {
	score := 0.3 + 0.15*float64(len(matched))

	signalCount := 0
	for _, set := range []bool{
		flags.FinancialDecline, flags.Fraud, flags.MisstatedFinancials,
		flags.ShareholderIssues, flags.DirectorDuties, flags.RegulatoryInvestigation,
	} {
		if set {
			signalCount++
		}
	}
	score += 0.1 * float64(signalCount)

	if score > 1.0 {
		score = 1.0
	}
	return score
}
