package util

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate parses a local date in "YYYY-MM-DD" format.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(dateLayout) {
		return time.Time{}, fmt.Errorf("invalid date: %s", s)
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %s", s)
	}
	return t, nil
}

// FormatDate formats t as "YYYY-MM-DD".
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ResolveDate returns the first non-empty candidate after validating it, or
// the date of now when all candidates are empty.
func ResolveDate(now time.Time, candidates ...string) (string, error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, err := ParseDate(c); err != nil {
			return "", err
		}
		return c, nil
	}
	return FormatDate(now), nil
}
