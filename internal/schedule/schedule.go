package schedule

import (
	"regexp"
	"strconv"
	"strings"
)

// Slot is a single weekly class interval derived from a schedule string.
type Slot struct {
	Day   string `json:"day"`   // lowercase weekday name
	Start string `json:"start"` // "HH:MM", 24-hour
	End   string `json:"end"`
}

// Entries look like "Monday 09:00 - 10:30". Hours may be one or two digits;
// whitespace around the dash is tolerated.
var slotPattern = regexp.MustCompile(`^(\w+)\s+(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})$`)

// Parse splits a stored schedule string ("; "-joined entries) into slots.
// Segments that do not match the entry pattern are dropped without error, so
// the result may be shorter than the number of segments. Inverted intervals
// (end before start) are accepted as-is.
func Parse(s string) []Slot {
	var slots []Slot
	for _, seg := range strings.Split(s, ";") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		m := slotPattern.FindStringSubmatch(seg)
		if m == nil {
			continue
		}
		slots = append(slots, Slot{
			Day:   strings.ToLower(m[1]),
			Start: m[2],
			End:   m[3],
		})
	}
	return slots
}

// Format renders slots back into the stored string form, capitalizing the
// day name. Round-tripping through Parse is lossless only when the input day
// names were already capitalized.
func Format(slots []Slot) string {
	parts := make([]string, 0, len(slots))
	for _, sl := range slots {
		parts = append(parts, capitalize(sl.Day)+" "+sl.Start+" - "+sl.End)
	}
	return strings.Join(parts, "; ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// minuteOfDay converts "HH:MM" to minutes since midnight. No calendar sanity
// check is performed; "25:99" converts arithmetically.
func minuteOfDay(t string) int {
	h, m, ok := strings.Cut(t, ":")
	if !ok {
		return 0
	}
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	return hours*60 + minutes
}

// overlaps reports whether two same-day intervals intersect under the strict
// half-open rule. Touching endpoints do not overlap.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// Overlaps is the string-time form of the half-open interval check.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return overlaps(minuteOfDay(aStart), minuteOfDay(aEnd), minuteOfDay(bStart), minuteOfDay(bEnd))
}
