package schedule

import (
	"testing"
)

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

func TestParseWellFormed(t *testing.T) {
	slots := Parse("Monday 09:00 - 10:30; Wednesday 14:00 - 15:00")
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].Day != "monday" || slots[0].Start != "09:00" || slots[0].End != "10:30" {
		t.Errorf("unexpected first slot: %+v", slots[0])
	}
	if slots[1].Day != "wednesday" {
		t.Errorf("unexpected second slot day: %q", slots[1].Day)
	}
}

func TestParseDropsMalformedSegments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"garbage only", "not a schedule", 0},
		{"garbage between entries", "Monday 9:00 - 10:00; nonsense; Friday 13:00 - 14:00", 2},
		{"missing end time", "Tuesday 10:00 -", 0},
		{"trailing separator", "Thursday 08:00 - 09:00; ", 1},
		{"single-digit hour", "Friday 9:05 - 10:05", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.input); len(got) != tt.want {
				t.Errorf("Parse(%q) = %d slots, want %d", tt.input, len(got), tt.want)
			}
		})
	}
}

func TestParseLowercasesDay(t *testing.T) {
	for _, in := range []string{"MONDAY 09:00 - 10:00", "Tuesday 09:00 - 10:00", "sunday 09:00 - 10:00"} {
		slots := Parse(in)
		if len(slots) != 1 {
			t.Fatalf("Parse(%q): expected a slot", in)
		}
		if !weekdays[slots[0].Day] {
			t.Errorf("Parse(%q) produced day %q, not a lowercase weekday", in, slots[0].Day)
		}
	}
}

func TestParseAcceptsInvertedInterval(t *testing.T) {
	slots := Parse("Monday 11:00 - 09:00")
	if len(slots) != 1 {
		t.Fatal("inverted interval should still parse")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	in := "Monday 09:00 - 10:30; Wednesday 14:00 - 15:00"
	if got := Format(Parse(in)); got != in {
		t.Errorf("round trip = %q, want %q", got, in)
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name         string
		aStart, aEnd string
		bStart, bEnd string
		want         bool
	}{
		{"touching endpoints", "09:00", "10:00", "10:00", "11:00", false},
		{"true overlap", "09:00", "10:30", "10:00", "11:00", true},
		{"contained", "09:00", "12:00", "10:00", "11:00", true},
		{"identical", "09:00", "10:00", "09:00", "10:00", true},
		{"disjoint", "08:00", "09:00", "10:00", "11:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			if got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			// symmetric in its interval arguments
			if sym := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); sym != got {
				t.Errorf("Overlaps not symmetric: %v vs %v", got, sym)
			}
		})
	}
}

func TestCheckFirstConflict(t *testing.T) {
	others := []SubjectSchedule{
		{ID: "s1", Name: "Algebra", Schedule: "Monday 09:00 - 10:00"},
		{ID: "s2", Name: "Physics", Schedule: "Monday 09:00 - 11:00"},
	}
	c := Check("Monday 09:30 - 10:30", others, "")
	if !c.HasConflict {
		t.Fatal("expected a conflict")
	}
	if c.SubjectName != "Algebra" {
		t.Errorf("expected first subject in load order, got %q", c.SubjectName)
	}
	if c.Day != "monday" {
		t.Errorf("day = %q, want monday", c.Day)
	}
	if c.Time != "09:30 - 10:30" {
		t.Errorf("time = %q, want candidate slot times", c.Time)
	}
}

func TestCheckExcludesEditedSubject(t *testing.T) {
	others := []SubjectSchedule{
		{ID: "s1", Name: "Algebra", Schedule: "Monday 09:00 - 10:00"},
	}
	if c := Check("Monday 09:00 - 10:00", others, "s1"); c.HasConflict {
		t.Errorf("editing a subject against itself reported conflict: %+v", c)
	}
}

func TestCheckTouchingBoundaryIsClean(t *testing.T) {
	others := []SubjectSchedule{
		{ID: "a", Name: "Subject A", Schedule: "Monday 09:00 - 10:00"},
	}
	// overlapping candidate is rejected
	if c := Check("Monday 09:30 - 10:30", others, ""); !c.HasConflict {
		t.Error("expected conflict for 09:30 - 10:30 against 09:00 - 10:00")
	}
	// back-to-back candidate is allowed
	if c := Check("Monday 10:00 - 11:00", others, ""); c.HasConflict {
		t.Errorf("touching intervals reported conflict: %+v", c)
	}
}

func TestCheckIgnoresOtherDaysAndEmptySchedules(t *testing.T) {
	others := []SubjectSchedule{
		{ID: "a", Name: "A", Schedule: ""},
		{ID: "b", Name: "B", Schedule: "Tuesday 09:00 - 10:00"},
	}
	if c := Check("Monday 09:00 - 10:00", others, ""); c.HasConflict {
		t.Errorf("expected no conflict, got %+v", c)
	}
}
