package timex

import (
	"fmt"
	"time"
)

// ParseDate accepts a calendar date ("2006-01-02") or a full RFC 3339
// timestamp and returns the UTC calendar day it names, at midnight.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", s)
	}
	return StartOfDay(t), nil
}

// StartOfDay returns 00:00:00 UTC of t's UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last representable instant of t's UTC calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Microsecond)
}

// ParseDeadline parses an inclusive deadline. A full RFC 3339 timestamp is
// taken as is; a bare date means the end of that UTC day.
func ParseDeadline(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline %q: expected YYYY-MM-DD or RFC3339", s)
	}
	return EndOfDay(t), nil
}
