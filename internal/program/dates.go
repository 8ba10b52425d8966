package program

import "time"

// DayLayout is the plain calendar-date format used for program start dates
// and assignment dates.
const DayLayout = "2006-01-02"

// ParseDay parses a YYYY-MM-DD string into an instant anchored at noon UTC.
// Anchoring away from midnight keeps whole-day arithmetic stable across
// daylight-saving and timezone boundaries when the inputs are plain dates.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC), nil
}

// AnchorDay maps an arbitrary instant to noon UTC of its calendar date, so it
// can be compared against ParseDay results.
func AnchorDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
}

// FormatDay renders an instant as its YYYY-MM-DD calendar date in UTC.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// DaysBetween returns the number of whole calendar days from 'from' to 'to'.
// Negative when 'to' precedes 'from'. Both inputs are expected to be
// noon-anchored, so the difference is an exact multiple of 24 hours.
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
