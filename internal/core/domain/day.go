package domain

import "time"

// DayLayout formats a day bucket.
const DayLayout = "2006-01-02"

// DayBucket returns the date-only key t falls into in loc.
func DayBucket(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// NextMidnight returns the first local midnight strictly after t.
func NextMidnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

// ParseDay parses a day bucket in loc.
func ParseDay(day string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DayLayout, day, loc)
}
