package sqldb

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestOpen_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown driver", Config{Driver: "mysql", DSN: "x"}},
		{"empty dsn", Config{Driver: DriverSQLite}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Open(tc.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestOpen_SQLiteMemory(t *testing.T) {
	d, err := Open(Config{DSN: ":memory:"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer d.Close()

	if d.Driver() != DriverSQLite {
		t.Errorf("driver = %q", d.Driver())
	}
	if err := d.WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("WaitForReady: %v", err)
	}
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: DriverPostgres}
	lite := &DB{driver: DriverSQLite}

	q := "SELECT * FROM t WHERE a = ? AND b IN (?, ?)"
	if got, want := pg.Rebind(q), "SELECT * FROM t WHERE a = $1 AND b IN ($2, $3)"; got != want {
		t.Errorf("postgres: got %q, want %q", got, want)
	}
	if got := lite.Rebind(q); got != q {
		t.Errorf("sqlite: got %q", got)
	}
}

func TestOpen_SQLiteFilePragmasOnEveryConnection(t *testing.T) {
	d, err := Open(Config{DSN: "file:" + filepath.Join(t.TempDir(), "envie.db"), MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer d.Close()

	ctx := context.Background()
	// Hold several connections at once so the pool must open distinct ones.
	for i := 0; i < 3; i++ {
		conn, err := d.Conn(ctx)
		if err != nil {
			t.Fatalf("conn %d: %v", i, err)
		}
		defer conn.Close()

		var fk, busy int
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("conn %d foreign_keys: %v", i, err)
		}
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&busy); err != nil {
			t.Fatalf("conn %d busy_timeout: %v", i, err)
		}
		if fk != 1 || busy != 5000 {
			t.Errorf("conn %d: foreign_keys=%d busy_timeout=%d", i, fk, busy)
		}
	}
}

func TestWithConnPragmas(t *testing.T) {
	got := withConnPragmas("file:envie.db?mode=rwc")
	if !strings.HasPrefix(got, "file:envie.db?mode=rwc&_pragma=busy_timeout%285000%29") {
		t.Errorf("got %q", got)
	}
	if n := strings.Count(withConnPragmas(":memory:"), "?"); n != 1 {
		t.Errorf("expected a single query separator, got %d", n)
	}
}
