package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// DateOf truncates t to midnight UTC of its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a yyyy-mm-dd string into a UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd", s)
	}
	return t, nil
}

// ParseClock parses an HH:MM (or HH:MM:SS) time of day. Empty means midnight.
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	layout := ClockLayout
	if strings.Count(s, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
}

// CombineDateTime joins a calendar date and an HH:MM clock value.
func CombineDateTime(date time.Time, clock string) (time.Time, error) {
	offset, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(date).Add(offset), nil
}

// RentalDays is the billable duration in calendar days between the pickup and
// return dates, never less than one. Clock times do not count, and a same-day
// rental is one day.
func RentalDays(start, end time.Time) int {
	hours := DateOf(end).Sub(DateOf(start)).Hours()
	days := int(math.Ceil(hours / 24))
	if days < 1 {
		return 1
	}
	return days
}

// DatesOverlap is the inclusive interval test used for booking conflicts:
// aStart <= bEnd AND aEnd >= bStart, by calendar date.
func DatesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !DateOf(aStart).After(DateOf(bEnd)) && !DateOf(aEnd).Before(DateOf(bStart))
}
