package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/envie-local/envie/internal/domain"
	"github.com/envie-local/envie/internal/domain/geo"
)

// Search parameter limits.
const (
	// MaxTextLength is the maximum allowed intent text length in characters.
	MaxTextLength   = 500
	DefaultRadiusKm = 5.0
	MaxRadiusKm     = 100.0
)

// AroundMe is the city sentinel meaning "search around the caller's position".
const AroundMe = "Autour de moi"

// Envie is a validated intent search query.
type Envie struct {
	text     string
	city     string
	radiusKm float64
	origin   *geo.Coordinates
}

// New validates and normalizes search parameters.
// Radius defaults to DefaultRadiusKm and is clamped to MaxRadiusKm. Explicit
// coordinates are used only when both are present and non-zero.
func New(text, city string, radiusKm float64, lat, lng *float64) (Envie, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Envie{}, domain.ErrEnvieRequired
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return Envie{}, domain.NewParameterError("envie", fmt.Sprintf("too long (max %d chars)", MaxTextLength))
	}
	if radiusKm < 0 {
		return Envie{}, domain.NewParameterError("rayon", "must be positive")
	}
	if radiusKm == 0 {
		radiusKm = DefaultRadiusKm
	}
	if radiusKm > MaxRadiusKm {
		radiusKm = MaxRadiusKm
	}

	city = strings.TrimSpace(city)
	if strings.EqualFold(city, AroundMe) {
		city = ""
	}

	var origin *geo.Coordinates
	if lat != nil && lng != nil && *lat != 0 && *lng != 0 {
		if !geo.ValidateCoordinates(*lat, *lng) {
			return Envie{}, domain.NewParameterError("lat/lng", "out of range")
		}
		origin = &geo.Coordinates{Lat: *lat, Lng: *lng}
	}

	return Envie{text: text, city: city, radiusKm: radiusKm, origin: origin}, nil
}

// Text returns the raw intent text.
func (e *Envie) Text() string { return e.text }

// City returns the city to geocode, empty when none or "around me".
func (e *Envie) City() string { return e.city }

// RadiusKm returns the search radius.
func (e *Envie) RadiusKm() float64 { return e.radiusKm }

// Origin returns the explicit coordinates, nil when not supplied.
func (e *Envie) Origin() *geo.Coordinates { return e.origin }
