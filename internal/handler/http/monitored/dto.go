// Package monitored provides HTTP handlers for monitored entity endpoints.
// It includes handlers for listing entities by mention count and retrieving
// an entity together with its linked articles.
package monitored

import (
	"time"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
)

// DTO represents the JSON structure for monitored entity data transfer.
type DTO struct {
	ID           int64     `json:"id" example:"1"`
	Name         string    `json:"name" example:"Acme Fund Ltd"`
	EntityType   string    `json:"entity_type" example:"organization"`
	FirstSeenAt  time.Time `json:"first_seen_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
	MentionCount int       `json:"mention_count" example:"12"`
}

// LinkedArticleDTO is the compact article representation embedded in the
// entity detail response.
type LinkedArticleDTO struct {
	ID          int64      `json:"id"`
	Source      string     `json:"source"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// DetailDTO is an entity with its most recently linked articles.
type DetailDTO struct {
	DTO
	Articles []LinkedArticleDTO `json:"articles"`
}

func toDTO(e *entity.MonitoredEntity) DTO {
	return DTO{
		ID:           e.ID,
		Name:         e.Name,
		EntityType:   e.EntityType,
		FirstSeenAt:  e.FirstSeenAt,
		LastSeenAt:   e.LastSeenAt,
		MentionCount: e.MentionCount,
	}
}

func toLinkedArticleDTO(a *entity.Article) LinkedArticleDTO {
	return LinkedArticleDTO{
		ID:          a.ID,
		Source:      a.Source,
		Title:       a.Title,
		URL:         a.URL,
		PublishedAt: a.PublishedAt,
	}
}
