package util

import (
	"time"
)

// YearMonthLayout is the layout of "YYYY-MM" month keys
const YearMonthLayout = "2006-01"

// YearMonthKey formats t as a "YYYY-MM" month key
func YearMonthKey(t time.Time) string {
	return t.Format(YearMonthLayout)
}

// CalculateActualDate returns the actual date for a target day in a given month,
// handling months with fewer days (e.g., day 31 in February returns Feb 28/29)
func CalculateActualDate(year int, month time.Month, targetDay int) time.Time {
	// Get last day of month by going to day 0 of next month
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	actualDay := targetDay
	if actualDay > lastDay {
		actualDay = lastDay
	}

	return time.Date(year, month, actualDay, 0, 0, 0, 0, time.UTC)
}

// MonthsBefore returns the calendar date n months before t, at midnight UTC.
// The day is clamped to the target month's length, so May 31 minus 3 months is Feb 28/29.
func MonthsBefore(t time.Time, n int) time.Time {
	t = t.UTC()
	totalMonths := t.Year()*12 + int(t.Month()) - 1 - n
	year := totalMonths / 12
	month := time.Month(totalMonths%12 + 1)
	return CalculateActualDate(year, month, t.Day())
}
