package presence

import "time"

// DayLayout is the wire format for calendar dates.
const DayLayout = "2006-01-02"

// Day truncates t to a calendar date at UTC midnight. All range arithmetic
// runs on normalized days so DST shifts and time-of-day can not drop or
// duplicate a boundary date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DayLayout, s)
}

// ExpandRange returns every calendar day from start to end inclusive, in
// order. Empty when start is after end; callers must not assume at least one
// date.
func ExpandRange(start, end time.Time) []time.Time {
	start, end = Day(start), Day(end)
	if start.After(end) {
		return nil
	}
	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
