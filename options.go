package envie

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	driver        string
	dsn           string
	maxOpenConns  int
	migrate       bool
	defaultOrigin *Coordinates
	location      *time.Location
	geocoder      Geocoder
	resultLimit   int
	logger        *zap.Logger
}

// Geocoder resolves a city name to coordinates.
// Implementations should return an error when the city is unknown.
type Geocoder interface {
	Geocode(ctx context.Context, city string) (Coordinates, error)
}

// WithSQLite stores establishments in a SQLite database (":memory:" for a throwaway store).
func WithSQLite(dsn string) Option {
	return func(c *clientConfig) {
		c.driver = "sqlite"
		c.dsn = dsn
	}
}

// WithPostgres stores establishments in PostgreSQL.
func WithPostgres(dsn string, maxOpenConns int) Option {
	return func(c *clientConfig) {
		c.driver = "postgres"
		c.dsn = dsn
		c.maxOpenConns = maxOpenConns
	}
}

// WithoutMigrate skips schema creation on connect.
func WithoutMigrate() Option {
	return func(c *clientConfig) {
		c.migrate = false
	}
}

// WithDefaultOrigin sets the fallback search origin (Dijon centre by default).
func WithDefaultOrigin(lat, lng float64) Option {
	return func(c *clientConfig) {
		c.defaultOrigin = &Coordinates{Lat: lat, Lng: lng}
	}
}

// WithLocation sets the timezone used to decide whether places are open.
func WithLocation(loc *time.Location) Option {
	return func(c *clientConfig) {
		c.location = loc
	}
}

// WithGeocoder enables city lookups. Without it the city parameter is ignored.
func WithGeocoder(g Geocoder) Option {
	return func(c *clientConfig) {
		c.geocoder = g
	}
}

// WithResultLimit lowers the number of results per search. Values above 15 are clamped to 15.
func WithResultLimit(n int) Option {
	return func(c *clientConfig) {
		c.resultLimit = n
	}
}

// WithLogger sets the logger for malformed rows and geocoding failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
