package establishment

// schema is portable between sqlite and postgres.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS establishments (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		slug          TEXT NOT NULL DEFAULT '',
		description   TEXT NOT NULL DEFAULT '',
		activities    TEXT NOT NULL DEFAULT '[]',
		opening_hours TEXT,
		latitude      DOUBLE PRECISION,
		longitude     DOUBLE PRECISION,
		status        TEXT NOT NULL DEFAULT 'pending',
		city          TEXT NOT NULL DEFAULT '',
		address       TEXT NOT NULL DEFAULT '',
		updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS establishment_tags (
		establishment_id TEXT NOT NULL REFERENCES establishments(id) ON DELETE CASCADE,
		tag              TEXT NOT NULL,
		poids            DOUBLE PRECISION NOT NULL DEFAULT 0,
		position         INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS establishment_images (
		establishment_id TEXT NOT NULL REFERENCES establishments(id) ON DELETE CASCADE,
		url              TEXT NOT NULL,
		is_primary       BOOLEAN NOT NULL DEFAULT FALSE,
		position         INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_establishments_status ON establishments(status)`,
	`CREATE INDEX IF NOT EXISTS idx_establishments_coords ON establishments(latitude, longitude)`,
	`CREATE INDEX IF NOT EXISTS idx_establishment_tags_eid ON establishment_tags(establishment_id)`,
	`CREATE INDEX IF NOT EXISTS idx_establishment_images_eid ON establishment_images(establishment_id)`,
}
