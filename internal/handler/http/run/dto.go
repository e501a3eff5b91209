// Package run provides HTTP handlers for ingestion run history endpoints.
package run

import (
	"time"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
)

// DTO represents the JSON structure for ingestion run data transfer.
type DTO struct {
	ID          string     `json:"id" example:"3f2a9c1e-7b4d-4e8a-9c6f-1d2e3a4b5c6d"`
	Source      string     `json:"source" example:"newsapi"`
	Status      string     `json:"status" example:"completed"`
	TriggeredBy string     `json:"triggered_by" example:"scheduled"`
	Fetched     int        `json:"fetched"`
	New         int        `json:"new"`
	Duplicate   int        `json:"duplicate"`
	Relevant    int        `json:"relevant"`
	Errors      []string   `json:"errors,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

func toDTO(r *entity.IngestionRun) DTO {
	return DTO{
		ID:          r.ID,
		Source:      r.Source,
		Status:      r.Status,
		TriggeredBy: r.TriggeredBy,
		Fetched:     r.Fetched,
		New:         r.New,
		Duplicate:   r.Duplicate,
		Relevant:    r.Relevant,
		Errors:      r.Errors,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
	}
}
