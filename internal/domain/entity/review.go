package entity

import "time"

// Review item priorities.
const (
	ReviewPriorityLow    = "low"
	ReviewPriorityMedium = "medium"
	ReviewPriorityHigh   = "high"
)

// Review item types.
const (
	ReviewItemArticle = "article"
	ReviewItemEntity  = "entity"
)

// ReviewItem is a request for human review emitted when classification
// confidence is low or entity extraction failed. Emission is fire-and-forget:
// a failure to enqueue a review item never fails the run that produced it.
type ReviewItem struct {
	ID        int64
	ItemType  string
	ItemRef   string
	Reason    string
	Priority  string
	CreatedAt time.Time
}
