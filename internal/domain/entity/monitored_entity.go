package entity

import "time"

// Monitored entity types.
const (
	EntityTypeOrganization             = "organization"
	EntityTypePerson                   = "person"
	EntityTypePlace                    = "place"
	EntityTypeRegisteredOfficeProvider = "registered_office_provider"
)

// MonitoredEntity is an organization, person or place recognized in ingested
// articles. NormalizedName is the unique identity key (same normalization as
// article titles). MentionCount equals the number of distinct articles linked
// to the entity and is monotonically non-decreasing; entities are created
// lazily on first mention and never deleted.
type MonitoredEntity struct {
	ID             int64
	Name           string
	NormalizedName string
	EntityType     string
	Aliases        []string
	FirstSeenAt    time.Time
	LastSeenAt     time.Time
	MentionCount   int
}

// ValidEntityType reports whether t is one of the known entity types.
func ValidEntityType(t string) bool {
	switch t {
	case EntityTypeOrganization, EntityTypePerson, EntityTypePlace, EntityTypeRegisteredOfficeProvider:
		return true
	}
	return false
}
