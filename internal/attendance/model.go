package attendance

import "time"

// Status of a single class meeting.
type Status string

const (
	StatusPresent  Status = "present"
	StatusAbsent   Status = "absent"
	StatusNotTaken Status = "not_taken" // class did not occur
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	return s == StatusPresent || s == StatusAbsent || s == StatusNotTaken
}

// Subject is a course a user tracks attendance for.
type Subject struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Schedule    string    `json:"schedule"` // "; "-joined "<Day> HH:MM - HH:MM" entries
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Derived from the mirror on read, never persisted.
	PresentCount  int `json:"present_count"`
	AbsentCount   int `json:"absent_count"`
	NotTakenCount int `json:"not_taken_count"`
}

// Record is one attendance entry for a subject on a calendar date.
type Record struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subject_id"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Status    Status    `json:"status"`
	Hours     float64   `json:"hours"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
