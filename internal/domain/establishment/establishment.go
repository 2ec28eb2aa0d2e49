package establishment

import "github.com/envie-local/envie/internal/domain/geo"

// Status is the moderation state of an establishment.
type Status string

const (
	// StatusActive marks a published establishment.
	StatusActive Status = "active"
	// StatusApproved marks an establishment validated by moderation.
	StatusApproved Status = "approved"
	// StatusPending marks an establishment awaiting moderation.
	StatusPending Status = "pending"
	// StatusRejected marks an establishment refused by moderation.
	StatusRejected Status = "rejected"
)

// CandidateStatuses lists the statuses eligible for search.
var CandidateStatuses = []Status{StatusActive, StatusApproved}

// Tag is a weighted descriptive label ("poids" is the weight).
type Tag struct {
	Tag   string  `json:"tag" yaml:"tag"`
	Poids float64 `json:"poids" yaml:"poids"`
}

// Establishment is the read-only view of a listed business.
type Establishment struct {
	ID           string
	Name         string
	Slug         string
	Description  string
	Activities   []string
	Tags         []Tag
	Coordinates  *geo.Coordinates
	Status       Status
	City         string
	Address      string
	PrimaryImage string
	OpeningHours Hours
}

// IsCandidate reports whether the establishment may appear in search results.
func (e *Establishment) IsCandidate() bool {
	for _, s := range CandidateStatuses {
		if e.Status == s {
			return true
		}
	}
	return false
}

// HasCoordinates reports whether the establishment is geocoded.
func (e *Establishment) HasCoordinates() bool {
	return e.Coordinates != nil
}
