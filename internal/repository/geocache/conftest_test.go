package geocache

import (
	"context"
	"time"

	"github.com/envie-local/envie/internal/db"
	"github.com/envie-local/envie/internal/domain/geo"
)

type mockGeocoder struct {
	coords geo.Coordinates
	err    error
	calls  int
}

func (m *mockGeocoder) Geocode(_ context.Context, _ string) (geo.Coordinates, error) {
	m.calls++
	return m.coords, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}
