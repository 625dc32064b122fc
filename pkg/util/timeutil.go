package util

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used in requests and exports.
const DateLayout = "2006-01-02"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseDate accepts either a calendar date or an RFC 3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if ts, err := time.Parse(DateLayout, trimmed); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be formatted as YYYY-MM-DD", trimmed)
	}
	return ts.UTC(), nil
}
