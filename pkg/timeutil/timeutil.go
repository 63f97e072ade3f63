// Package timeutil normalizes client supplied timestamps to UTC and provides
// an injectable clock.
package timeutil

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Precision is the resolution of stored instants. BSON dates keep
// milliseconds, so every driver works at that resolution.
const Precision = time.Millisecond

// Accepted layouts, tried in order. Offset-carrying layouts come first so a
// trailing offset is never mistaken for a malformed suffix.
var layouts = []string{
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04-07:00",
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Normalize parses an ISO-8601 date-time. A trailing "Z" is read as "+00:00".
// Any offset is dropped and the wall clock is taken as UTC. The result is
// truncated to Precision.
func Normalize(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		s = s[:len(s)-1] + "+00:00"
	}

	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(),
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC).Truncate(Precision), nil
	}
	return time.Time{}, ErrInvalidTimestamp
}

// Format renders t in UTC as RFC3339.
func Format(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
