package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/envie-local/envie/internal/config"
	"github.com/envie-local/envie/internal/domain/establishment"
)

const sample = `
establishments:
  - id: kart-1
    name: Kart Evasion
    description: Circuit de karting indoor
    activities: [karting]
    tags:
      - {tag: karting, poids: 9}
    lat: 47.33
    lng: 5.05
    opening_hours:
      vendredi:
        isOpen: true
        slots: [{open: "10:00", close: "23:00"}]
  - id: bar-2
    name: Le Comptoir
    status: pending
`

func TestParseFixtures(t *testing.T) {
	items, err := parseFixtures([]byte(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	kart := items[0]
	if kart.Status != establishment.StatusActive {
		t.Errorf("default status = %q", kart.Status)
	}
	if kart.Coordinates == nil || kart.Coordinates.Lat != 47.33 {
		t.Errorf("coordinates = %+v", kart.Coordinates)
	}
	if len(kart.Tags) != 1 || kart.Tags[0].Poids != 9 {
		t.Errorf("tags = %+v", kart.Tags)
	}
	if !kart.OpeningHours["vendredi"].IsOpen {
		t.Error("expected vendredi open")
	}

	if items[1].Coordinates != nil || items[1].Status != establishment.StatusPending {
		t.Errorf("bar = %+v", items[1])
	}
}

func TestParseFixtures_Invalid(t *testing.T) {
	tests := []struct {
		name, doc, want string
	}{
		{"missing name", "establishments:\n  - id: a\n", "required"},
		{"half coordinates", "establishments:\n  - {id: a, name: A, lat: 1}\n", "together"},
		{"out of range", "establishments:\n  - {id: a, name: A, lat: 95, lng: 1}\n", "out of range"},
		{"duplicate", "establishments:\n  - {id: a, name: A}\n  - {id: a, name: B}\n", "duplicate"},
		{"syntax", "establishments: [", "parse fixtures"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseFixtures([]byte(tc.doc))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestRun_SeedsDatabase(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "fixtures.yaml")
	if err := os.WriteFile(file, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{
		HTTP:     config.HTTPConfig{Port: 8080},
		Database: config.DatabaseConfig{DSN: "file:" + filepath.Join(dir, "seed.db")},
	}
	cfg.ApplyDefaults()

	ctx := context.Background()
	if err := run(ctx, cfg, file, zap.NewNop()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// Re-seeding upserts in place.
	if err := run(ctx, cfg, file, zap.NewNop()); err != nil {
		t.Fatalf("second run: %v", err)
	}
}

func TestRun_MissingFile(t *testing.T) {
	cfg := config.Config{Database: config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}}
	if err := run(context.Background(), cfg, "/nonexistent/fixtures.yaml", zap.NewNop()); err == nil {
		t.Fatal("expected error")
	}
}
