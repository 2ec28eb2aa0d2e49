package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/envie-local/envie/internal/domain"
	"github.com/envie-local/envie/internal/domain/geo"
	"github.com/envie-local/envie/internal/metrics"
)

// Defaults for Config fields left empty.
const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "envie/1.0 (craving search)"
	DefaultTimeout   = 3 * time.Second
)

// maxErrorBody bounds how much of an upstream error body is logged.
const maxErrorBody = 512

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Config holds the geocoding provider settings.
type Config struct {
	BaseURL      string
	UserAgent    string
	CountryCodes string
	Timeout      time.Duration
	Logger       *zap.Logger
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Geocoder resolves city names through a Nominatim-compatible search API.
type Geocoder struct {
	client       *http.Client
	baseURL      string
	userAgent    string
	countryCodes string
	logger       *zap.Logger
}

// NewGeocoder creates a Nominatim geocoder.
func NewGeocoder(cfg *Config) *Geocoder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Geocoder{
		client:       client,
		baseURL:      baseURL,
		userAgent:    ua,
		countryCodes: cfg.CountryCodes,
		logger:       logger,
	}
}

// Geocode returns the coordinates of the best match for city.
// Returns domain.ErrGeocodeNotFound when the provider knows no such place.
func (g *Geocoder) Geocode(ctx context.Context, city string) (geo.Coordinates, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return geo.Coordinates{}, domain.ErrGeocodeNotFound
	}

	params := url.Values{
		"q":      {city},
		"format": {"json"},
		"limit":  {"1"},
	}
	if g.countryCodes != "" {
		params.Set("countrycodes", g.countryCodes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
		return geo.Coordinates{}, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		g.logger.Debug("Geocoder returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return geo.Coordinates{}, fmt.Errorf("geocoding returned status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
		return geo.Coordinates{}, fmt.Errorf("decoding geocoding response: %w", err)
	}
	if len(results) == 0 {
		metrics.GeocodeRequestsTotal.WithLabelValues("not_found").Inc()
		return geo.Coordinates{}, fmt.Errorf("%q: %w", city, domain.ErrGeocodeNotFound)
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLng != nil || !geo.ValidateCoordinates(lat, lng) {
		metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
		return geo.Coordinates{}, fmt.Errorf("invalid coordinates from geocoder: %q,%q", results[0].Lat, results[0].Lon)
	}

	metrics.GeocodeRequestsTotal.WithLabelValues("ok").Inc()
	g.logger.Debug("Geocoded city",
		zap.String("city", city),
		zap.String("match", results[0].DisplayName),
		zap.Duration("duration", time.Since(start)),
	)
	return geo.Coordinates{Lat: lat, Lng: lng}, nil
}
