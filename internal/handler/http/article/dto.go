// Package article provides HTTP handlers for article-related endpoints.
// It includes handlers for listing ingested articles with filters and
// retrieving article details.
package article

import (
	"time"

	"github.com/marchebantum/caymanmyass-sub002/internal/classifier"
	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
)

// DTO represents the JSON structure for article data transfer.
type DTO struct {
	ID              int64      `json:"id" example:"1"`
	Source          string     `json:"source" example:"newsapi"`
	Title           string     `json:"title" example:"CIMA fines fund administrator"`
	URL             string     `json:"url" example:"https://example.com/article/1"`
	Snippet         string     `json:"snippet" example:"The Cayman Islands Monetary Authority announced..."`
	SourceDomain    string     `json:"source_domain" example:"example.com"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	IngestedAt      time.Time  `json:"ingested_at"`
	Relevant        bool       `json:"relevant"`
	MatchedKeywords []string   `json:"matched_keywords,omitempty"`
	Signals         []string   `json:"signals,omitempty"`
	Confidence      *float64   `json:"confidence,omitempty"`
	Status          string     `json:"status" example:"classified"`
}

// DetailDTO extends DTO with the full article content for the detail endpoint.
type DetailDTO struct {
	DTO
	Content string `json:"content"`
}

// toDTO converts a domain article to its transfer representation.
func toDTO(a *entity.Article) DTO {
	return DTO{
		ID:              a.ID,
		Source:          a.Source,
		Title:           a.Title,
		URL:             a.URL,
		Snippet:         a.Snippet,
		SourceDomain:    a.SourceDomain,
		PublishedAt:     a.PublishedAt,
		IngestedAt:      a.IngestedAt,
		Relevant:        a.Relevant,
		MatchedKeywords: a.MatchedKeywords,
		Signals:         signalNames(a.Signals),
		Confidence:      a.Confidence,
		Status:          a.Status,
	}
}

// signalNames flattens the signal flags to the list of set signal names.
func signalNames(f entity.SignalFlags) []string {
	var out []string
	if f.FinancialDecline {
		out = append(out, classifier.SignalFinancialDecline)
	}
	if f.Fraud {
		out = append(out, classifier.SignalFraud)
	}
	if f.MisstatedFinancials {
		out = append(out, classifier.SignalMisstatedFinancials)
	}
	if f.ShareholderIssues {
		out = append(out, classifier.SignalShareholderIssues)
	}
	if f.DirectorDuties {
		out = append(out, classifier.SignalDirectorDuties)
	}
	if f.RegulatoryInvestigation {
		out = append(out, classifier.SignalRegulatoryInvestigation)
	}
	return out
}
