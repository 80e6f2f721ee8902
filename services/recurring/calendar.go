package recurring

import "time"

// daysInMonth returns the number of days in the given month, accounting
// for leap years. Day 0 of the following month normalizes to the last
// day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// clampDayOfMonth returns date with its day-of-month set to
// min(desiredDay, days in that month). The clock and location are kept.
func clampDayOfMonth(date time.Time, desiredDay int) time.Time {
	day := desiredDay
	if max := daysInMonth(date.Year(), date.Month()); day > max {
		day = max
	}
	if day < 1 {
		day = 1
	}
	return time.Date(date.Year(), date.Month(), day,
		date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
}
