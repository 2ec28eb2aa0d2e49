// Command envie-seed loads establishments from a YAML fixture file into the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/envie-local/envie/internal/config"
	"github.com/envie-local/envie/internal/db/sqldb"
	"github.com/envie-local/envie/internal/domain/establishment"
	"github.com/envie-local/envie/internal/domain/geo"
	logpkg "github.com/envie-local/envie/internal/logger"
	establishmentrepo "github.com/envie-local/envie/internal/repository/establishment"
)

type fixtureFile struct {
	Establishments []fixture `yaml:"establishments"`
}

type fixture struct {
	ID           string              `yaml:"id"`
	Name         string              `yaml:"name"`
	Slug         string              `yaml:"slug"`
	Description  string              `yaml:"description"`
	Activities   []string            `yaml:"activities"`
	Tags         []establishment.Tag `yaml:"tags"`
	Lat          *float64            `yaml:"lat"`
	Lng          *float64            `yaml:"lng"`
	Status       string              `yaml:"status"`
	City         string              `yaml:"city"`
	Address      string              `yaml:"address"`
	PrimaryImage string              `yaml:"primary_image"`
	OpeningHours establishment.Hours `yaml:"opening_hours"`
}

func (f *fixture) toDomain() (establishment.Establishment, error) {
	if f.ID == "" || f.Name == "" {
		return establishment.Establishment{}, fmt.Errorf("id and name are required")
	}
	e := establishment.Establishment{
		ID:           f.ID,
		Name:         f.Name,
		Slug:         f.Slug,
		Description:  f.Description,
		Activities:   f.Activities,
		Tags:         f.Tags,
		Status:       establishment.Status(f.Status),
		City:         f.City,
		Address:      f.Address,
		PrimaryImage: f.PrimaryImage,
		OpeningHours: f.OpeningHours,
	}
	if e.Status == "" {
		e.Status = establishment.StatusActive
	}
	if (f.Lat == nil) != (f.Lng == nil) {
		return establishment.Establishment{}, fmt.Errorf("%s: lat and lng must be set together", f.ID)
	}
	if f.Lat != nil {
		if !geo.ValidateCoordinates(*f.Lat, *f.Lng) {
			return establishment.Establishment{}, fmt.Errorf("%s: coordinates out of range", f.ID)
		}
		e.Coordinates = &geo.Coordinates{Lat: *f.Lat, Lng: *f.Lng}
	}
	return e, nil
}

// parseFixtures decodes a fixture document into establishments.
func parseFixtures(data []byte) ([]establishment.Establishment, error) {
	var ff fixtureFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	out := make([]establishment.Establishment, 0, len(ff.Establishments))
	seen := make(map[string]struct{}, len(ff.Establishments))
	for i := range ff.Establishments {
		e, err := ff.Establishments[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("fixture #%d: %w", i, err)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("fixture #%d: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out, nil
}

func main() {
	file := flag.String("file", filepath.Join("config", "fixtures.yaml"), "fixture file")
	flag.Parse()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), cfg, *file, logger); err != nil {
		logger.Error("Seed failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, file string, logger *zap.Logger) error {
	data, err := os.ReadFile(filepath.Clean(file))
	if err != nil {
		return fmt.Errorf("read fixtures: %w", err)
	}
	items, err := parseFixtures(data)
	if err != nil {
		return err
	}

	database, err := sqldb.Open(sqldb.Config{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	if err := database.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return err
	}

	repo := establishmentrepo.New(database, logger)
	if err := repo.Migrate(ctx); err != nil {
		return err
	}
	for i := range items {
		if err := repo.Upsert(ctx, &items[i]); err != nil {
			return fmt.Errorf("upsert %s: %w", items[i].ID, err)
		}
	}

	logger.Info("Seeded establishments", zap.Int("count", len(items)), zap.String("file", file))
	return nil
}
