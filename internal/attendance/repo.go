package attendance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Repository persists subjects and attendance in Postgres. Every statement
// filters by user_id in addition to the row id, so one user's queries can
// never touch another user's rows.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListSubjects returns a user's subjects in insertion order.
func (r *Repository) ListSubjects(ctx context.Context, userID string) ([]Subject, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, code, schedule, description, created_at, updated_at
		FROM subjects
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subjects []Subject
	for rows.Next() {
		var s Subject
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Code, &s.Schedule, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// InsertSubject writes a new subject, assigning an id when absent.
func (r *Repository) InsertSubject(ctx context.Context, sub Subject) (Subject, error) {
	if sub.UserID == "" {
		return Subject{}, errors.New("user id required")
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO subjects (id, user_id, name, code, schedule, description)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at
	`, sub.ID, sub.UserID, sub.Name, sub.Code, sub.Schedule, sub.Description)
	if err := row.Scan(&sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return Subject{}, err
	}
	return sub, nil
}

// UpdateSubject rewrites a subject's mutable fields.
func (r *Repository) UpdateSubject(ctx context.Context, sub Subject) (Subject, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE subjects
		SET name = $3, code = $4, schedule = $5, description = $6, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING created_at, updated_at
	`, sub.ID, sub.UserID, sub.Name, sub.Code, sub.Schedule, sub.Description)
	if err := row.Scan(&sub.CreatedAt, &sub.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Subject{}, ErrNotFound
		}
		return Subject{}, err
	}
	return sub, nil
}

// DeleteSubject removes a subject and its attendance rows in one
// transaction, so a failed cascade never leaves an orphaned half.
func (r *Repository) DeleteSubject(ctx context.Context, userID, subjectID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM attendance WHERE subject_id = $1 AND user_id = $2
	`, subjectID, userID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
		DELETE FROM subjects WHERE id = $1 AND user_id = $2
	`, subjectID, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// ListRecords returns a user's attendance records, oldest first.
func (r *Repository) ListRecords(ctx context.Context, userID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subject_id, user_id, to_char(date, 'YYYY-MM-DD'), status, hours, note, created_at, updated_at
		FROM attendance
		WHERE user_id = $1
		ORDER BY date, created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.SubjectID, &rec.UserID, &rec.Date, &rec.Status, &rec.Hours, &rec.Note, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// InsertRecord writes a new attendance record.
func (r *Repository) InsertRecord(ctx context.Context, rec Record) (Record, error) {
	if rec.UserID == "" || rec.SubjectID == "" {
		return Record{}, errors.New("user and subject required")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Hours <= 0 {
		rec.Hours = 1
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance (id, subject_id, user_id, date, status, hours, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at
	`, rec.ID, rec.SubjectID, rec.UserID, rec.Date, rec.Status, rec.Hours, rec.Note)
	if err := row.Scan(&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// UpdateRecord rewrites a record's status, hours and note.
func (r *Repository) UpdateRecord(ctx context.Context, rec Record) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE attendance
		SET status = $3, hours = $4, note = $5, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING subject_id, to_char(date, 'YYYY-MM-DD'), created_at, updated_at
	`, rec.ID, rec.UserID, rec.Status, rec.Hours, rec.Note)
	if err := row.Scan(&rec.SubjectID, &rec.Date, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// DeleteRecord removes a single attendance record.
func (r *Repository) DeleteRecord(ctx context.Context, userID, recordID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM attendance WHERE id = $1 AND user_id = $2
	`, recordID, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
