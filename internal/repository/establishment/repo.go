package establishment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/envie-local/envie/internal/db"
	domest "github.com/envie-local/envie/internal/domain/establishment"
)

// store is the consumer interface for the relational database (ISP).
type store interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	PingContext(ctx context.Context) error
	Rebind(query string) string
}

const columns = `e.id, e.name, e.slug, e.description, e.activities, e.opening_hours,
	e.latitude, e.longitude, e.status, e.city, e.address`

// Repo implements usecase/search.Repository over database/sql.
type Repo struct {
	store  store
	logger *zap.Logger
	now    func() time.Time
}

// New creates an establishment repository.
func New(s store, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, logger: logger, now: time.Now}
}

// Migrate creates the tables and indexes when missing.
func (r *Repo) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.store.ExecContext(ctx, stmt); err != nil {
			return &db.Error{Op: db.OpMigrate, Err: err}
		}
	}
	return nil
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.store.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// ListCandidates returns the searchable establishments with their tags and
// primary image. With a non-nil bound, geocoded establishments outside it are
// skipped; establishments without coordinates are always returned.
func (r *Repo) ListCandidates(ctx context.Context, bound *orb.Bound) ([]domest.Establishment, error) {
	where, args := candidateFilter(bound)

	ests, index, err := r.queryEstablishments(ctx, where, args)
	if err != nil {
		return nil, err
	}
	if len(ests) == 0 {
		return ests, nil
	}
	if err := r.attachTags(ctx, where, args, ests, index); err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, where, args, ests, index); err != nil {
		return nil, err
	}
	return ests, nil
}

func candidateFilter(bound *orb.Bound) (string, []any) {
	placeholders := make([]string, len(domest.CandidateStatuses))
	args := make([]any, 0, len(domest.CandidateStatuses)+4)
	for i, s := range domest.CandidateStatuses {
		placeholders[i] = "?"
		args = append(args, string(s))
	}
	where := "e.status IN (" + strings.Join(placeholders, ", ") + ")"

	if bound != nil {
		where += ` AND (e.latitude IS NULL OR e.longitude IS NULL
			OR (e.latitude BETWEEN ? AND ? AND e.longitude BETWEEN ? AND ?))`
		args = append(args, bound.Min.Lat(), bound.Max.Lat(), bound.Min.Lon(), bound.Max.Lon())
	}
	return where, args
}

func (r *Repo) queryEstablishments(
	ctx context.Context, where string, args []any,
) ([]domest.Establishment, map[string]int, error) {
	q := r.store.Rebind("SELECT " + columns + " FROM establishments e WHERE " + where + " ORDER BY e.id")
	rows, err := r.store.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()

	var ests []domest.Establishment
	for rows.Next() {
		var rw row
		if err := rows.Scan(rw.dest()...); err != nil {
			return nil, nil, &db.Error{Op: db.OpQuery, Err: err}
		}
		ests = append(ests, rw.toDomain(r.warnMalformed))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	index := make(map[string]int, len(ests))
	for i := range ests {
		index[ests[i].ID] = i
	}
	return ests, index, nil
}

func (r *Repo) attachTags(
	ctx context.Context, where string, args []any, ests []domest.Establishment, index map[string]int,
) error {
	q := r.store.Rebind(`SELECT t.establishment_id, t.tag, t.poids
		FROM establishment_tags t JOIN establishments e ON e.id = t.establishment_id
		WHERE ` + where + ` ORDER BY t.establishment_id, t.position`)
	rows, err := r.store.QueryContext(ctx, q, args...)
	if err != nil {
		return &db.Error{Op: db.OpQuery, Err: fmt.Errorf("tags: %w", err)}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  string
			tag domest.Tag
		)
		if err := rows.Scan(&id, &tag.Tag, &tag.Poids); err != nil {
			return &db.Error{Op: db.OpQuery, Err: fmt.Errorf("tags: %w", err)}
		}
		if i, ok := index[id]; ok {
			ests[i].Tags = append(ests[i].Tags, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return &db.Error{Op: db.OpQuery, Err: fmt.Errorf("tags: %w", err)}
	}
	return nil
}

// attachImages keeps one image per establishment: the primary one, else the
// first by position.
func (r *Repo) attachImages(
	ctx context.Context, where string, args []any, ests []domest.Establishment, index map[string]int,
) error {
	q := r.store.Rebind(`SELECT i.establishment_id, i.url
		FROM establishment_images i JOIN establishments e ON e.id = i.establishment_id
		WHERE ` + where + ` ORDER BY i.establishment_id, i.is_primary DESC, i.position`)
	rows, err := r.store.QueryContext(ctx, q, args...)
	if err != nil {
		return &db.Error{Op: db.OpQuery, Err: fmt.Errorf("images: %w", err)}
	}
	defer rows.Close()

	for rows.Next() {
		var id, url string
		if err := rows.Scan(&id, &url); err != nil {
			return &db.Error{Op: db.OpQuery, Err: fmt.Errorf("images: %w", err)}
		}
		if i, ok := index[id]; ok && ests[i].PrimaryImage == "" {
			ests[i].PrimaryImage = url
		}
	}
	if err := rows.Err(); err != nil {
		return &db.Error{Op: db.OpQuery, Err: fmt.Errorf("images: %w", err)}
	}
	return nil
}

// Upsert inserts or replaces an establishment with its tags and primary image.
func (r *Repo) Upsert(ctx context.Context, e *domest.Establishment) error {
	if e.ID == "" {
		return errors.New("establishment id is required")
	}
	rw, err := fromDomain(e)
	if err != nil {
		return err
	}

	tx, err := r.store.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, r.store.Rebind(`INSERT INTO establishments
		(id, name, slug, description, activities, opening_hours, latitude, longitude,
		 status, city, address, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			slug = excluded.slug,
			description = excluded.description,
			activities = excluded.activities,
			opening_hours = excluded.opening_hours,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			status = excluded.status,
			city = excluded.city,
			address = excluded.address,
			updated_at = excluded.updated_at`),
		rw.ID, rw.Name, rw.Slug, rw.Description, rw.Activities, rw.OpeningHours,
		rw.Latitude, rw.Longitude, rw.Status, rw.City, rw.Address, r.now().UTC(),
	)
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: fmt.Errorf("upsert %s: %w", e.ID, err)}
	}

	if _, err := tx.ExecContext(ctx,
		r.store.Rebind("DELETE FROM establishment_tags WHERE establishment_id = ?"), e.ID); err != nil {
		return &db.Error{Op: db.OpExec, Err: fmt.Errorf("clear tags %s: %w", e.ID, err)}
	}
	insertTag := r.store.Rebind(
		"INSERT INTO establishment_tags (establishment_id, tag, poids, position) VALUES (?, ?, ?, ?)")
	for i, t := range e.Tags {
		if _, err := tx.ExecContext(ctx, insertTag, e.ID, t.Tag, t.Poids, i); err != nil {
			return &db.Error{Op: db.OpExec, Err: fmt.Errorf("insert tag %s: %w", e.ID, err)}
		}
	}

	if _, err := tx.ExecContext(ctx,
		r.store.Rebind("DELETE FROM establishment_images WHERE establishment_id = ?"), e.ID); err != nil {
		return &db.Error{Op: db.OpExec, Err: fmt.Errorf("clear images %s: %w", e.ID, err)}
	}
	if e.PrimaryImage != "" {
		if _, err := tx.ExecContext(ctx, r.store.Rebind(
			"INSERT INTO establishment_images (establishment_id, url, is_primary, position) VALUES (?, ?, ?, ?)"),
			e.ID, e.PrimaryImage, true, 0); err != nil {
			return &db.Error{Op: db.OpExec, Err: fmt.Errorf("insert image %s: %w", e.ID, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpExec, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

func (r *Repo) warnMalformed(id, column string, err error) {
	r.logger.Warn("Malformed establishment column, ignoring",
		zap.String("establishment_id", id),
		zap.String("column", column),
		zap.Error(err),
	)
}
