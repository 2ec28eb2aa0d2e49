package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"
	_ "time/tzdata" // search.timezone must resolve on minimal images

	"gopkg.in/yaml.v3"
)

// Config holds the envie API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Geocoder  GeocoderConfig  `yaml:"geocoder"`
	Search    SearchConfig    `yaml:"search"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	// TrustProxyHeaders takes the client IP from X-Forwarded-For / X-Real-IP.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`
}

// DatabaseConfig holds the establishment store settings.
type DatabaseConfig struct {
	Driver           string `yaml:"driver"` // sqlite, postgres (default: sqlite)
	DSN              string `yaml:"dsn"`
	MaxOpenConns     int    `yaml:"max_open_conns"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
	// Migrate creates missing tables on startup.
	Migrate bool `yaml:"migrate"`
}

// CacheConfig holds the Redis settings. Empty addrs disables caching and rate limiting.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	GeocodeTTLSec    int      `yaml:"geocode_ttl_sec"`
}

// Enabled reports whether a cache is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// GeocoderConfig holds the Nominatim settings.
type GeocoderConfig struct {
	Enabled      *bool  `yaml:"enabled"` // default true
	BaseURL      string `yaml:"base_url"`
	UserAgent    string `yaml:"user_agent"`
	CountryCodes string `yaml:"country_codes"`
	TimeoutMs    int    `yaml:"timeout_ms"`
}

// IsEnabled reports whether city names are geocoded.
func (g GeocoderConfig) IsEnabled() bool { return g.Enabled == nil || *g.Enabled }

// Timeout returns the request timeout.
func (g GeocoderConfig) Timeout() time.Duration { return time.Duration(g.TimeoutMs) * time.Millisecond }

// OriginConfig is a lat/lng pair.
type OriginConfig struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// SearchConfig tunes the envie pipeline.
type SearchConfig struct {
	DefaultRadiusKm   float64      `yaml:"default_radius_km"`
	ResultLimit       int          `yaml:"result_limit"`
	MinTokenLength    int          `yaml:"min_token_length"`
	KeepTwoLetter     *bool        `yaml:"keep_two_letter_words"` // default true
	DefaultOrigin     OriginConfig `yaml:"default_origin"`
	Timezone          string       `yaml:"timezone"`
	ParallelThreshold int          `yaml:"parallel_threshold"`
	// WeightsFile optionally points to a YAML scoring table.
	WeightsFile string `yaml:"weights_file"`
}

// KeepTwoLetterWords reports whether two-letter words survive extraction.
func (s SearchConfig) KeepTwoLetterWords() bool { return s.KeepTwoLetter == nil || *s.KeepTwoLetter }

// Location loads the configured timezone.
func (s SearchConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// RateLimitConfig holds the per-IP fixed window. Requests = 0 disables it.
type RateLimitConfig struct {
	Requests  int `yaml:"requests"`
	WindowSec int `yaml:"window_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 5
	}
	if c.Cache.GeocodeTTLSec <= 0 {
		c.Cache.GeocodeTTLSec = 7 * 24 * 3600
	}
	if c.Geocoder.TimeoutMs <= 0 {
		c.Geocoder.TimeoutMs = 3000
	}
	if c.Search.DefaultRadiusKm <= 0 {
		c.Search.DefaultRadiusKm = 5
	}
	if c.Search.ResultLimit <= 0 {
		c.Search.ResultLimit = 15
	}
	if c.Search.MinTokenLength <= 0 {
		c.Search.MinTokenLength = 3
	}
	if c.Search.DefaultOrigin == (OriginConfig{}) {
		// Dijon city centre
		c.Search.DefaultOrigin = OriginConfig{Lat: 47.3220, Lng: 5.0415}
	}
	if c.Search.Timezone == "" {
		c.Search.Timezone = "Europe/Paris"
	}
	if c.Search.ParallelThreshold <= 0 {
		c.Search.ParallelThreshold = 512
	}
	if c.RateLimit.WindowSec <= 0 {
		c.RateLimit.WindowSec = 60
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be \"sqlite\" or \"postgres\", got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	o := c.Search.DefaultOrigin
	if o.Lat < -90 || o.Lat > 90 || o.Lng < -180 || o.Lng > 180 {
		return fmt.Errorf("search.default_origin out of range: %v,%v", o.Lat, o.Lng)
	}
	if c.Search.DefaultRadiusKm > 100 {
		return fmt.Errorf("search.default_radius_km must not exceed 100, got %v", c.Search.DefaultRadiusKm)
	}
	if _, err := c.Search.Location(); err != nil {
		return fmt.Errorf("search.timezone: %w", err)
	}
	if c.Search.ResultLimit > 15 {
		return fmt.Errorf("search.result_limit must not exceed 15, got %d", c.Search.ResultLimit)
	}
	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("ratelimit.requests must not be negative, got %d", c.RateLimit.Requests)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

// LoadWeights reads a YAML scoring table into dst, leaving absent keys untouched.
func LoadWeights(path string, dst any) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read weights %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse weights: %w", err)
	}
	return nil
}
