package models

import (
	"time"

	dps "github.com/markusmobius/go-dateparser"
)

// ParseTime parses a record timestamp. ISO-8601/RFC3339 is the fast path;
// anything else goes through the lenient date parser so feeds with
// "2024-01-02 15:04:05"-style timestamps still work. Returns the zero time
// and false when the value is empty or unparseable - callers treat that as
// "no timestamp" rather than an error.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.UTC(), true
	}

	parser := dps.Parser{}
	cfg := &dps.Configuration{}
	parsed, err := parser.Parse(cfg, s)
	if err != nil || parsed.IsZero() {
		return time.Time{}, false
	}
	return parsed.Time.UTC(), true
}

// Resolution returns the resolvedAt-createdAt duration of an incident.
// It returns false when either timestamp is missing, unparseable, or the
// resolution is not chronologically after creation.
func (r IncidentRecord) Resolution() (time.Duration, bool) {
	created, ok := ParseTime(r.CreatedAt)
	if !ok {
		return 0, false
	}
	resolved, ok := ParseTime(r.ResolvedAt)
	if !ok {
		return 0, false
	}
	if !resolved.After(created) {
		return 0, false
	}
	return resolved.Sub(created), true
}
