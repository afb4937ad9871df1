package utils

import (
	"fmt"
	"time"
)

const (
	DefaultDateFormat = "2006-01-02"
	MonthFormat       = "2006-01"
)

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(DefaultDateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected %s): %w", dateStr, DefaultDateFormat, err)
	}
	return t, nil
}

// ParseMonth parses a YYYY-MM month string to the first instant of that
// month in UTC.
func ParseMonth(monthStr string) (time.Time, error) {
	t, err := time.Parse(MonthFormat, monthStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (expected %s): %w", monthStr, MonthFormat, err)
	}
	return t, nil
}

// MonthStart truncates a timestamp to the first instant of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthEnd returns the last instant of the timestamp's month.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}
