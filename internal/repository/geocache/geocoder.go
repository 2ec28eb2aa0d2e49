package geocache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/envie-local/envie/internal/db"
	"github.com/envie-local/envie/internal/domain"
	"github.com/envie-local/envie/internal/domain/geo"
	"github.com/envie-local/envie/internal/domain/search/keyword"
)

var cacheKeyPrefix = domain.KeyPrefix + "geocode:"

// DefaultTTL is how long a resolved city stays cached.
const DefaultTTL = 7 * 24 * time.Hour

// Geocoder is the decorated lookup.
type Geocoder interface {
	Geocode(ctx context.Context, city string) (geo.Coordinates, error)
}

// store is the consumer interface for the geocode cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedGeocoder caches successful lookups in a key-value store.
type CachedGeocoder struct {
	inner      Geocoder
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Geocoder,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedGeocoder {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGeocoder{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Geocode returns cached coordinates or calls the inner geocoder.
// Failures are never cached.
func (c *CachedGeocoder) Geocode(ctx context.Context, city string) (geo.Coordinates, error) {
	key := cacheKey(city)

	if coords, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return coords, nil
	}

	c.incCache("miss")

	coords, err := c.inner.Geocode(ctx, city)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("geocode %q: %w", city, err)
	}

	c.putToCache(ctx, key, coords)
	return coords, nil
}

func (c *CachedGeocoder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes the normalized city so "Dijon" and " dijon " share an entry.
func cacheKey(city string) string {
	h := sha256.Sum256([]byte(keyword.Normalize(city)))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedGeocoder) getFromCache(ctx context.Context, key string) (geo.Coordinates, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached geocode", zap.String("key", key), zap.Error(err))
		}
		return geo.Coordinates{}, false
	}
	if len(data) == 0 {
		return geo.Coordinates{}, false
	}

	var coords geo.Coordinates
	if err := json.Unmarshal(data, &coords); err != nil || !geo.ValidateCoordinates(coords.Lat, coords.Lng) {
		c.logger.Warn("Failed to parse cached geocode", zap.String("key", key), zap.Error(err))
		return geo.Coordinates{}, false
	}
	return coords, true
}

func (c *CachedGeocoder) putToCache(ctx context.Context, key string, coords geo.Coordinates) {
	data, err := json.Marshal(coords)
	if err != nil {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache geocode", zap.String("key", key), zap.Error(err))
	}
}
