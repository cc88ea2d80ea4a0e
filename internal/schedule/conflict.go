package schedule

// SubjectSchedule is the slice of an existing subject the detector needs.
type SubjectSchedule struct {
	ID       string
	Name     string
	Schedule string
}

// Conflict is the detector's result. It is a value, not an error: a detected
// overlap is a normal outcome the caller surfaces to the user.
type Conflict struct {
	HasConflict bool   `json:"has_conflict"`
	SubjectName string `json:"subject,omitempty"`
	Day         string `json:"day,omitempty"`
	Time        string `json:"time,omitempty"` // "start - end" of the candidate slot
}

// Check compares every slot of the candidate schedule against every same-day
// slot of the other subjects and returns the first overlap found. excludeID
// skips the subject being edited so a subject never conflicts with itself.
// Subjects are scanned in the order given; which conflict is reported when
// several exist depends on that order.
func Check(candidate string, others []SubjectSchedule, excludeID string) Conflict {
	slots := Parse(candidate)
	for _, other := range others {
		if other.ID == excludeID || other.Schedule == "" {
			continue
		}
		existing := Parse(other.Schedule)
		for _, cs := range slots {
			for _, es := range existing {
				if cs.Day != es.Day {
					continue
				}
				if Overlaps(cs.Start, cs.End, es.Start, es.End) {
					return Conflict{
						HasConflict: true,
						SubjectName: other.Name,
						Day:         cs.Day,
						Time:        cs.Start + " - " + cs.End,
					}
				}
			}
		}
	}
	return Conflict{}
}
