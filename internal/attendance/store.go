package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"classtrack/internal/schedule"
)

var (
	// ErrNotFound means the row does not exist or belongs to another user.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateAttendance means the subject already has a record for that date.
	ErrDuplicateAttendance = errors.New("attendance already marked for this date")
)

// Storage is the persistence surface the session store writes through.
// *Repository implements it; tests substitute an in-memory fake.
type Storage interface {
	ListSubjects(ctx context.Context, userID string) ([]Subject, error)
	InsertSubject(ctx context.Context, sub Subject) (Subject, error)
	UpdateSubject(ctx context.Context, sub Subject) (Subject, error)
	DeleteSubject(ctx context.Context, userID, subjectID string) error
	ListRecords(ctx context.Context, userID string) ([]Record, error)
	InsertRecord(ctx context.Context, rec Record) (Record, error)
	UpdateRecord(ctx context.Context, rec Record) (Record, error)
	DeleteRecord(ctx context.Context, userID, recordID string) error
}

// Store holds one authenticated user's in-memory mirror of subjects and
// attendance. The mirror is advanced only after the DB write succeeds, so
// reads always reflect committed state. A failed write leaves it untouched.
type Store struct {
	userID string
	repo   Storage

	mu       sync.Mutex
	subjects []Subject
	records  []Record
}

// NewStore creates an empty store for a user; call Load before reading.
func NewStore(userID string, repo Storage) *Store {
	return &Store{userID: userID, repo: repo}
}

// Load rebuilds the mirror from the database.
func (s *Store) Load(ctx context.Context) error {
	subjects, err := s.repo.ListSubjects(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("load subjects: %w", err)
	}
	records, err := s.repo.ListRecords(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("load attendance: %w", err)
	}
	s.mu.Lock()
	s.subjects = subjects
	s.records = records
	s.mu.Unlock()
	return nil
}

// Subjects returns the mirrored subjects with derived attendance counters.
func (s *Store) Subjects() []Subject {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Subject, len(s.subjects))
	copy(out, s.subjects)
	for i := range out {
		out[i].PresentCount, out[i].AbsentCount, out[i].NotTakenCount = s.countsLocked(out[i].ID)
	}
	return out
}

func (s *Store) countsLocked(subjectID string) (present, absent, notTaken int) {
	for _, r := range s.records {
		if r.SubjectID != subjectID {
			continue
		}
		switch r.Status {
		case StatusPresent:
			present++
		case StatusAbsent:
			absent++
		case StatusNotTaken:
			notTaken++
		}
	}
	return present, absent, notTaken
}

// Schedules returns what the conflict detector needs, in load order.
func (s *Store) Schedules() []schedule.SubjectSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]schedule.SubjectSchedule, 0, len(s.subjects))
	for _, sub := range s.subjects {
		out = append(out, schedule.SubjectSchedule{ID: sub.ID, Name: sub.Name, Schedule: sub.Schedule})
	}
	return out
}

// SubjectByID looks a subject up in the mirror.
func (s *Store) SubjectByID(id string) (Subject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subjects {
		if sub.ID == id {
			sub.PresentCount, sub.AbsentCount, sub.NotTakenCount = s.countsLocked(id)
			return sub, true
		}
	}
	return Subject{}, false
}

// AddSubject persists a new subject and appends it to the mirror. The caller
// is responsible for running the conflict detector first; the store is a
// persistence mirror, not a policy layer.
func (s *Store) AddSubject(ctx context.Context, sub Subject) (Subject, error) {
	if sub.Name == "" {
		return Subject{}, errors.New("subject name required")
	}
	sub.UserID = s.userID
	created, err := s.repo.InsertSubject(ctx, sub)
	if err != nil {
		return Subject{}, err
	}
	s.mu.Lock()
	s.subjects = append(s.subjects, created)
	s.mu.Unlock()
	return created, nil
}

// UpdateSubject persists changed fields and replaces the mirrored entry.
func (s *Store) UpdateSubject(ctx context.Context, sub Subject) (Subject, error) {
	if sub.Name == "" {
		return Subject{}, errors.New("subject name required")
	}
	sub.UserID = s.userID
	updated, err := s.repo.UpdateSubject(ctx, sub)
	if err != nil {
		return Subject{}, err
	}
	s.mu.Lock()
	for i := range s.subjects {
		if s.subjects[i].ID == updated.ID {
			s.subjects[i] = updated
			break
		}
	}
	s.mu.Unlock()
	return updated, nil
}

// DeleteSubject removes the subject and all its attendance. The repository
// runs both deletes in one transaction; the mirror drops the subject and its
// records together once that commit succeeds.
func (s *Store) DeleteSubject(ctx context.Context, subjectID string) error {
	if err := s.repo.DeleteSubject(ctx, s.userID, subjectID); err != nil {
		return err
	}
	s.mu.Lock()
	kept := s.subjects[:0]
	for _, sub := range s.subjects {
		if sub.ID != subjectID {
			kept = append(kept, sub)
		}
	}
	s.subjects = kept
	keptRecords := s.records[:0]
	for _, r := range s.records {
		if r.SubjectID != subjectID {
			keptRecords = append(keptRecords, r)
		}
	}
	s.records = keptRecords
	s.mu.Unlock()
	return nil
}

// AddAttendance validates and persists a new record. One record per subject
// per date: a second insert for the same pair is rejected, callers edit the
// existing record instead.
func (s *Store) AddAttendance(ctx context.Context, rec Record) (Record, error) {
	if err := validateRecord(rec); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	dup := false
	known := false
	for _, sub := range s.subjects {
		if sub.ID == rec.SubjectID {
			known = true
			break
		}
	}
	for _, existing := range s.records {
		if existing.SubjectID == rec.SubjectID && existing.Date == rec.Date {
			dup = true
			break
		}
	}
	s.mu.Unlock()
	if !known {
		return Record{}, ErrNotFound
	}
	if dup {
		return Record{}, ErrDuplicateAttendance
	}

	rec.UserID = s.userID
	if rec.Hours == 0 {
		rec.Hours = 1
	}
	created, err := s.repo.InsertRecord(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	s.records = append(s.records, created)
	s.mu.Unlock()
	return created, nil
}

// UpdateAttendance persists new status/hours/note for an existing record.
func (s *Store) UpdateAttendance(ctx context.Context, rec Record) (Record, error) {
	if !rec.Status.Valid() {
		return Record{}, fmt.Errorf("invalid status %q", rec.Status)
	}
	if rec.Hours < 0 {
		return Record{}, errors.New("hours must be positive")
	}
	if rec.Hours == 0 {
		rec.Hours = 1
	}
	rec.UserID = s.userID
	updated, err := s.repo.UpdateRecord(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	for i := range s.records {
		if s.records[i].ID == updated.ID {
			s.records[i] = updated
			break
		}
	}
	s.mu.Unlock()
	return updated, nil
}

// DeleteAttendance removes one record.
func (s *Store) DeleteAttendance(ctx context.Context, recordID string) error {
	if err := s.repo.DeleteRecord(ctx, s.userID, recordID); err != nil {
		return err
	}
	s.mu.Lock()
	kept := s.records[:0]
	for _, r := range s.records {
		if r.ID != recordID {
			kept = append(kept, r)
		}
	}
	s.records = kept
	s.mu.Unlock()
	return nil
}

// Records returns all mirrored attendance records.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// AttendanceBySubject returns the mirrored records for one subject.
func (s *Store) AttendanceBySubject(subjectID string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.records {
		if r.SubjectID == subjectID {
			out = append(out, r)
		}
	}
	return out
}

// AttendanceForDate returns all records marked on a calendar date.
func (s *Store) AttendanceForDate(date string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.records {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out
}

// Stats aggregates the mirror.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	records := make([]Record, len(s.records))
	copy(records, s.records)
	subjects := make([]Subject, len(s.subjects))
	copy(subjects, s.subjects)
	s.mu.Unlock()
	return ComputeStats(records, subjects)
}

func validateRecord(rec Record) error {
	if rec.SubjectID == "" {
		return errors.New("subject id required")
	}
	if !rec.Status.Valid() {
		return fmt.Errorf("invalid status %q", rec.Status)
	}
	if _, err := time.Parse("2006-01-02", rec.Date); err != nil {
		return fmt.Errorf("invalid date %q", rec.Date)
	}
	if rec.Hours < 0 {
		return errors.New("hours must be positive")
	}
	return nil
}

// Sessions maps authenticated users to their session stores. A store is
// built and loaded on first use after login and discarded on logout.
type Sessions struct {
	repo Storage

	mu     sync.Mutex
	stores map[string]*Store
}

// NewSessions creates the registry.
func NewSessions(repo Storage) *Sessions {
	return &Sessions{repo: repo, stores: make(map[string]*Store)}
}

// Get returns the user's store, building and loading it on a miss.
func (m *Sessions) Get(ctx context.Context, userID string) (*Store, error) {
	m.mu.Lock()
	st, ok := m.stores[userID]
	m.mu.Unlock()
	if ok {
		return st, nil
	}
	st = NewStore(userID, m.repo)
	if err := st.Load(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	// another request may have raced us; keep the first one registered
	if existing, ok := m.stores[userID]; ok {
		st = existing
	} else {
		m.stores[userID] = st
	}
	m.mu.Unlock()
	return st, nil
}

// Drop discards a user's mirror, typically on logout.
func (m *Sessions) Drop(userID string) {
	m.mu.Lock()
	delete(m.stores, userID)
	m.mu.Unlock()
}
