package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// EarthRadiusKm is the mean radius of Earth used for Haversine distance.
const EarthRadiusKm = 6371.0

// boundPadding widens prefilter boxes so the box never clips a point the
// haversine check would accept (orb measures on a slightly larger sphere).
const boundPadding = 1.02

// Coordinates is a WGS84 position in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point converts coordinates to an orb point ([lng, lat] order).
func (c Coordinates) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// DistanceKm returns the great-circle distance in kilometers between a and b.
func DistanceKm(a, b Coordinates) float64 {
	lat1r := a.Lat * math.Pi / 180
	lat2r := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// IsWithinRadius reports whether point lies within radiusKm of origin.
// A missing origin or point always passes: establishments indexed without
// precise geocoding must stay searchable.
func IsWithinRadius(origin, point *Coordinates, radiusKm float64) bool {
	if origin == nil || point == nil {
		return true
	}
	return DistanceKm(*origin, *point) <= radiusKm
}

// BoundAround returns a box enclosing the radiusKm circle around center.
// It is a coarse prefilter only; IsWithinRadius stays authoritative.
func BoundAround(center Coordinates, radiusKm float64) orb.Bound {
	return orbgeo.NewBoundAroundPoint(center.Point(), radiusKm*1000*boundPadding)
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
