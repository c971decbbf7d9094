package domain

import (
	"time"

	"go.trai.ch/zerr"
)

var timeLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
}

// ParseTime accepts a date, a date and time, or an RFC 3339 timestamp. Times without a zone are UTC.
// The empty string parses to the zero time, which range queries treat as unbounded.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, zerr.With(zerr.Wrap(ErrInvalidTime, "cannot parse timestamp"), "value", s)
}

// FormatTime renders t as a date when it falls on midnight UTC, and as RFC 3339 otherwise.
func FormatTime(t time.Time) string {
	if t.Equal(t.Truncate(24 * time.Hour)) {
		return t.UTC().Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}
