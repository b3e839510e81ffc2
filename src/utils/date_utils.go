package utils

import (
	"log"
	"time"
)

const DefaultDateFormat = "02-01-2006"

// ParseDate parses a date string using the default format.
// Logs an error and returns zero time if parsing fails.
func ParseDate(dateStr string) time.Time {
	t, err := time.Parse(DefaultDateFormat, dateStr)
	if err != nil {
		log.Printf("Error parsing date '%s' with format '%s': %v. Returning zero time.", dateStr, DefaultDateFormat, err)
		return time.Time{} // Return zero time on error
	}
	return t
}

// StartOfDay truncates t to midnight of its calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay normalizes t to 23:59:59.999 of its calendar day. Date range
// comparisons treat the end bound as inclusive of the whole day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999000000, t.Location())
}

// StartOfWeek returns midnight of the Sunday that starts the week containing t.
func StartOfWeek(t time.Time) time.Time {
	d := StartOfDay(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// EndOfWeek returns the end of the Saturday that closes the week containing t.
func EndOfWeek(t time.Time) time.Time {
	return EndOfDay(StartOfWeek(t).AddDate(0, 0, 6))
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the end of the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	return EndOfDay(StartOfMonth(t).AddDate(0, 1, -1))
}

// WeekLabel builds the display label for the Sunday-anchored week containing t.
func WeekLabel(t time.Time) string {
	return "Week of " + StartOfWeek(t).Format(DefaultDateFormat)
}

// MonthLabel builds the "Month Year" display label for t's month.
func MonthLabel(t time.Time) string {
	return t.Format("January 2006")
}
