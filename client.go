// Package envie embeds the craving search engine: establishments are stored in
// SQLite or PostgreSQL and ranked in-process against free-text intents.
package envie

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/envie-local/envie/internal/db/sqldb"
	"github.com/envie-local/envie/internal/domain"
	"github.com/envie-local/envie/internal/domain/geo"
	"github.com/envie-local/envie/internal/domain/search/keyword"
	establishmentrepo "github.com/envie-local/envie/internal/repository/establishment"
	searchuc "github.com/envie-local/envie/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Errors returned by Search.
var (
	ErrEnvieRequired    = domain.ErrEnvieRequired
	ErrNoKeywords       = domain.ErrNoKeywords
	ErrInvalidParameter = domain.ErrInvalidParameter
)

// Client is the envie SDK entry point.
type Client struct {
	db        *sqldb.DB
	repo      *establishmentrepo.Repo
	searchSvc *searchuc.Service
}

// New creates an envie Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{migrate: true}
	for _, o := range opts {
		o(cfg)
	}

	if cfg.dsn == "" {
		return nil, errors.New("envie: database required (use WithSQLite or WithPostgres)")
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	database, err := sqldb.Open(sqldb.Config{
		Driver:       cfg.driver,
		DSN:          cfg.dsn,
		MaxOpenConns: cfg.maxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("envie: open database: %w", err)
	}

	ctx := context.Background()
	if err := database.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("envie: database not ready: %w", err)
	}

	c := wireClient(database, cfg)
	if cfg.migrate {
		if err := c.repo.Migrate(ctx); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("envie: migrate: %w", err)
		}
	}
	return c, nil
}

func wireClient(database *sqldb.DB, cfg *clientConfig) *Client {
	repo := establishmentrepo.New(database, cfg.logger)

	svcCfg := searchuc.Config{ResultLimit: cfg.resultLimit, Logger: cfg.logger}
	if cfg.defaultOrigin != nil {
		svcCfg.DefaultOrigin = geo.Coordinates{Lat: cfg.defaultOrigin.Lat, Lng: cfg.defaultOrigin.Lng}
	}

	// Pass nil interface (not a nil adapter) when no geocoder is configured.
	var geocoder searchuc.Geocoder
	if cfg.geocoder != nil {
		geocoder = &geocoderAdapter{inner: cfg.geocoder}
	}

	svc := searchuc.New(
		repo, geocoder,
		keyword.NewExtractor(keyword.DefaultOptions()),
		searchuc.SystemClock{Location: cfg.location},
		svcCfg,
	)
	return &Client{db: database, repo: repo, searchSvc: svc}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.db != nil {
		_ = c.db.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.repo.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Upsert inserts or replaces an establishment with its tags and primary image.
func (c *Client) Upsert(ctx context.Context, e Establishment) error {
	if e.ID == "" || e.Name == "" {
		return fmt.Errorf("upsert: %w: id and name are required", ErrInvalidParameter)
	}
	in := toInternalEstablishment(&e)
	if err := c.repo.Upsert(ctx, &in); err != nil {
		return fmt.Errorf("upsert %s: %w", e.ID, err)
	}
	return nil
}

// geocoderAdapter wraps the public Geocoder to satisfy the search use case.
type geocoderAdapter struct {
	inner Geocoder
}

func (a *geocoderAdapter) Geocode(ctx context.Context, city string) (geo.Coordinates, error) {
	c, err := a.inner.Geocode(ctx, city)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("geocode: %w", err)
	}
	return geo.Coordinates{Lat: c.Lat, Lng: c.Lng}, nil
}
