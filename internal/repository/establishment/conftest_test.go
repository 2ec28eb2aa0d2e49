package establishment

import (
	"context"
	"testing"

	"github.com/envie-local/envie/internal/db/sqldb"
)

func newTestRepo(t *testing.T) (*Repo, *sqldb.DB) {
	t.Helper()
	d, err := sqldb.Open(sqldb.Config{Driver: sqldb.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	r := New(d, nil)
	if err := r.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return r, d
}
