package search

import (
	"context"
	"time"

	"github.com/paulmach/orb"

	"github.com/envie-local/envie/internal/domain/establishment"
	"github.com/envie-local/envie/internal/domain/geo"
	"github.com/envie-local/envie/internal/domain/search/keyword"
)

// Repository defines the storage contract for candidate retrieval.
type Repository interface {
	// ListCandidates returns active/approved establishments. When bound is
	// non-nil, geocoded establishments outside it may be omitted; establishments
	// without coordinates are always returned.
	ListCandidates(ctx context.Context, bound *orb.Bound) ([]establishment.Establishment, error)
}

// Geocoder resolves a city name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, city string) (geo.Coordinates, error)
}

// KeywordExtractor decomposes intent text.
type KeywordExtractor interface {
	Extract(text string) keyword.KeywordSet
}

// Clock provides the current local time for open-now computation.
type Clock interface {
	Now() time.Time
}
