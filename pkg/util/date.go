package util

import (
	"fmt"
	"strconv"
	"time"
)

// ParseTime tries RFC3339, RFC3339Nano, a bare date and unix seconds.
// Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// ParseRange resolves optional from/to bounds. A missing "to" means now and
// a missing "from" means "to" minus window. Unparseable values are errors.
func ParseRange(from, to string, window time.Duration, now time.Time) (time.Time, time.Time, error) {
	end := now
	if to != "" {
		t, ok := ParseTime(to)
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid time %q", to)
		}
		end = t
	}
	start := end.Add(-window)
	if from != "" {
		t, ok := ParseTime(from)
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid time %q", from)
		}
		start = t
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("from %s is after to %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return start, end, nil
}
