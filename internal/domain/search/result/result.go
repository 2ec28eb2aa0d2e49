package result

import (
	"github.com/envie-local/envie/internal/domain/establishment"
	"github.com/envie-local/envie/internal/domain/geo"
	"github.com/envie-local/envie/internal/domain/search/keyword"
)

// Scored is one establishment evaluated against a keyword set.
type Scored struct {
	establishment *establishment.Establishment
	thematicScore float64
	finalScore    float64
	distanceKm    float64
	hasDistance   bool
	isOpen        bool
	matchedTags   []string
}

// New creates a scored result. distanceKm is meaningful only when hasDistance.
func New(
	e *establishment.Establishment,
	thematicScore, finalScore, distanceKm float64,
	hasDistance, isOpen bool,
	matchedTags []string,
) Scored {
	return Scored{
		establishment: e,
		thematicScore: thematicScore,
		finalScore:    finalScore,
		distanceKm:    distanceKm,
		hasDistance:   hasDistance,
		isOpen:        isOpen,
		matchedTags:   matchedTags,
	}
}

// Establishment returns the scored establishment (shared, read-only).
func (s *Scored) Establishment() *establishment.Establishment { return s.establishment }

// ThematicScore returns the location-independent content score.
func (s *Scored) ThematicScore() float64 { return s.thematicScore }

// FinalScore returns the thematic score plus the proximity bonus.
func (s *Scored) FinalScore() float64 { return s.finalScore }

// DistanceKm returns the distance from the origin, 0 when unknown.
func (s *Scored) DistanceKm() float64 { return s.distanceKm }

// HasDistance reports whether both origin and establishment were located.
func (s *Scored) HasDistance() bool { return s.hasDistance }

// IsOpen reports whether the establishment was open at scoring time.
func (s *Scored) IsOpen() bool { return s.isOpen }

// MatchedTags returns the deduplicated tags that contributed to the score.
func (s *Scored) MatchedTags() []string { return s.matchedTags }

// OriginSource tells how the search origin was resolved.
type OriginSource string

const (
	// OriginExplicit means coordinates came with the request.
	OriginExplicit OriginSource = "coordinates"
	// OriginGeocoded means the city name was geocoded.
	OriginGeocoded OriginSource = "city"
	// OriginDefault means the service's home city was used.
	OriginDefault OriginSource = "default"
)

// Diagnostics echoes how a query was processed.
type Diagnostics struct {
	Keywords     keyword.KeywordSet
	Origin       geo.Coordinates
	OriginSource OriginSource
	City         string
	RadiusKm     float64
	Candidates   int
	WithinRadius int
	Relevant     int
	Returned     int
}

// Page is the ranked response of an envie search.
type Page struct {
	Results     []Scored
	Diagnostics Diagnostics
}
