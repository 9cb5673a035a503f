package util

import "time"

// ISODate is the calendar-date layout shared by records, ranges and cache keys.
const ISODate = "2006-01-02"

// ParseISODate parses a normalized "YYYY-MM-DD" date. The result is midnight UTC.
func ParseISODate(s string) (time.Time, error) {
	return time.Parse(ISODate, s)
}

// FormatISODate renders t in the normalized "YYYY-MM-DD" form.
func FormatISODate(t time.Time) string {
	return t.Format(ISODate)
}

// FirstDayOfMonth returns midnight UTC on the first day of t's month.
func FirstDayOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// LastDayOfMonth returns the last calendar day of t's month.
// Handles 28-31 day months and leap years.
func LastDayOfMonth(t time.Time) time.Time {
	return FirstDayOfMonth(t).AddDate(0, 1, -1)
}

// MonthRange returns the ascending first-of-month dates covering [start, end]
// inclusive. A range within a single month yields exactly one element.
func MonthRange(start, end time.Time) []time.Time {
	last := FirstDayOfMonth(end)
	var months []time.Time
	for cur := FirstDayOfMonth(start); !cur.After(last); cur = cur.AddDate(0, 1, 0) {
		months = append(months, cur)
	}
	return months
}

// SameMonth reports whether a and b fall in the same calendar year and month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
