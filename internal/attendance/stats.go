package attendance

import "math"

// SubjectStats is the per-subject slice of the aggregation.
type SubjectStats struct {
	Name       string `json:"name"`
	Total      int    `json:"total"` // records minus not_taken
	Present    int    `json:"present"`
	Absent     int    `json:"absent"`
	NotTaken   int    `json:"not_taken"`
	Percentage int    `json:"percentage"`
}

// Stats aggregates attendance across all of a user's records. Cancelled
// ("not taken") classes are excluded from both sides of the percentage:
// they neither penalize nor help the rate.
type Stats struct {
	Total    int                     `json:"total"` // records that actually occurred
	Present  int                     `json:"present"`
	Absent   int                     `json:"absent"`
	NotTaken int                     `json:"not_taken"`
	Subjects map[string]SubjectStats `json:"subjects"`
}

// ComputeStats derives counts and percentages from the loaded records.
func ComputeStats(records []Record, subjects []Subject) Stats {
	stats := Stats{Subjects: make(map[string]SubjectStats, len(subjects))}
	for _, r := range records {
		switch r.Status {
		case StatusPresent:
			stats.Present++
		case StatusAbsent:
			stats.Absent++
		case StatusNotTaken:
			stats.NotTaken++
		}
		if r.Status != StatusNotTaken {
			stats.Total++
		}
	}

	for _, sub := range subjects {
		var present, absent, notTaken, count int
		for _, r := range records {
			if r.SubjectID != sub.ID {
				continue
			}
			count++
			switch r.Status {
			case StatusPresent:
				present++
			case StatusAbsent:
				absent++
			case StatusNotTaken:
				notTaken++
			}
		}
		total := count - notTaken
		percentage := 0
		if total > 0 {
			percentage = int(math.Round(float64(present) / float64(total) * 100))
		}
		stats.Subjects[sub.ID] = SubjectStats{
			Name:       sub.Name,
			Total:      total,
			Present:    present,
			Absent:     absent,
			NotTaken:   notTaken,
			Percentage: percentage,
		}
	}
	return stats
}
