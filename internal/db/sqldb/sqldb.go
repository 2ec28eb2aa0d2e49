// Package sqldb opens the relational establishment store.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"    // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// sqlitePragmas are persistent database settings, applied once on open.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
}

// sqliteConnPragmas are per-connection settings, passed in the DSN so the
// driver runs them on every pooled connection.
var sqliteConnPragmas = []string{
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
	"cache_size(-64000)",
}

// Config holds connection parameters.
type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// DB is a database/sql handle aware of its placeholder dialect.
type DB struct {
	*sql.DB
	driver string
}

// Open opens the database and applies driver-specific session settings.
func Open(cfg Config) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}

	dsn := cfg.DSN
	if driver == DriverSQLite {
		dsn = withConnPragmas(dsn)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if driver == DriverSQLite {
		// in-memory databases live per connection
		if isMemoryDSN(cfg.DSN) {
			sqlDB.SetMaxOpenConns(1)
		}
		for _, p := range sqlitePragmas {
			if _, err := sqlDB.Exec(p); err != nil {
				_ = sqlDB.Close()
				return nil, fmt.Errorf("setting pragma %q: %w", p, err)
			}
		}
	}
	if cfg.MaxOpenConns > 0 && !(driver == DriverSQLite && isMemoryDSN(cfg.DSN)) {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	return &DB{DB: sqlDB, driver: driver}, nil
}

// Driver returns the driver name.
func (d *DB) Driver() string { return d.driver }

// Rebind rewrites "?" placeholders to "$n" for postgres.
func (d *DB) Rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// WaitForReady polls Ping until the database responds or timeout expires.
func (d *DB) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := d.PingContext(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := d.PingContext(ctx); err == nil {
				return nil
			}
		}
	}
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// withConnPragmas appends a _pragma query parameter per connection setting.
func withConnPragmas(dsn string) string {
	var b strings.Builder
	b.WriteString(dsn)
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, p := range sqliteConnPragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(url.QueryEscape(p))
		sep = "&"
	}
	return b.String()
}
