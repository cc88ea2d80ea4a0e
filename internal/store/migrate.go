package store

import "database/sql"

// Migrate applies the schema. Statements are idempotent so startup can run
// this unconditionally.
func Migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		email         TEXT UNIQUE NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS subjects (
		id          UUID PRIMARY KEY,
		user_id     UUID NOT NULL REFERENCES users(id),
		name        TEXT NOT NULL,
		code        TEXT NOT NULL DEFAULT '',
		schedule    TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id         UUID PRIMARY KEY,
		subject_id UUID NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
		user_id    UUID NOT NULL REFERENCES users(id),
		date       DATE NOT NULL,
		status     TEXT NOT NULL CHECK (status IN ('present', 'absent', 'not_taken')),
		hours      REAL NOT NULL DEFAULT 1,
		note       TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_subjects_user    ON subjects(user_id);
	CREATE INDEX IF NOT EXISTS idx_attendance_user  ON attendance(user_id);
	CREATE INDEX IF NOT EXISTS idx_attendance_subject ON attendance(subject_id);
	CREATE INDEX IF NOT EXISTS idx_attendance_date  ON attendance(user_id, date);
	`
	_, err := db.Exec(schema)
	return err
}
