// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: One records table for every kind, partial unique indexes for goals, FTS5 for search.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS records (
		seq INTEGER PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		owner TEXT NOT NULL,
		kind TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		occurred_at DATETIME,
		meal_name TEXT,
		description TEXT,
		workout_type TEXT,
		day_of_week TEXT,
		calories TEXT,
		protein TEXT,
		carbohydrates TEXT,
		fat TEXT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(username);
	CREATE INDEX IF NOT EXISTS idx_records_owner_kind ON records(owner, kind, created_at DESC);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_records_workout_goal
		ON records(owner, kind, day_of_week) WHERE kind = 'workout_goal';
	CREATE UNIQUE INDEX IF NOT EXISTS idx_records_diet_goal
		ON records(owner, kind) WHERE kind = 'diet_goal';

	CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts5(
		description,
		meal_name,
		content = 'records',
		content_rowid = 'seq',
		tokenize = 'porter unicode61'
	);

	CREATE TRIGGER IF NOT EXISTS records_fts_insert AFTER INSERT ON records BEGIN
		INSERT INTO records_fts(rowid, description, meal_name)
		VALUES (new.seq, COALESCE(new.description, ''), COALESCE(new.meal_name, ''));
	END;

	CREATE TRIGGER IF NOT EXISTS records_fts_delete AFTER DELETE ON records BEGIN
		INSERT INTO records_fts(records_fts, rowid, description, meal_name)
		VALUES ('delete', old.seq, COALESCE(old.description, ''), COALESCE(old.meal_name, ''));
	END;

	CREATE TRIGGER IF NOT EXISTS records_fts_update AFTER UPDATE OF description, meal_name ON records BEGIN
		INSERT INTO records_fts(records_fts, rowid, description, meal_name)
		VALUES ('delete', old.seq, COALESCE(old.description, ''), COALESCE(old.meal_name, ''));
		INSERT INTO records_fts(rowid, description, meal_name)
		VALUES (new.seq, COALESCE(new.description, ''), COALESCE(new.meal_name, ''));
	END;
	`

	_, err := d.db.Exec(schema)
	return err
}
