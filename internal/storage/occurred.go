// ABOUTME: Normalizes user-supplied entry times into stored occurred_at timestamps.
// ABOUTME: Lenient: unparseable input falls back to the deployment's current wall time.
package storage

import (
	"strings"
	"time"
)

// DeploymentOffset converts the server's UTC clock to the deployment's wall time.
const DeploymentOffset = 5 * time.Hour

// clockLayout is the time-of-day form sent by the entry creation forms.
const clockLayout = "15:04"

// dateLayouts are the full timestamp forms sent by the edit forms and API clients.
var dateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02",
}

// DefaultOccurredAt returns now shifted back by DeploymentOffset, in UTC.
func DefaultOccurredAt(now time.Time) time.Time {
	return now.UTC().Add(-DeploymentOffset)
}

// ResolveOccurredAt turns a raw time string into an occurrence timestamp.
//
// An empty string yields DefaultOccurredAt(now). A bare "HH:MM" is placed on the
// calendar date of DefaultOccurredAt(now). Full dates and datetimes are taken as
// given, naive values being UTC. Anything else falls back to DefaultOccurredAt(now).
func ResolveOccurredAt(raw string, now time.Time) time.Time {
	base := DefaultOccurredAt(now)

	s := strings.TrimSpace(raw)
	if s == "" {
		return base
	}

	if clock, err := time.Parse(clockLayout, s); err == nil {
		return time.Date(base.Year(), base.Month(), base.Day(),
			clock.Hour(), clock.Minute(), 0, 0, time.UTC)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}

	return base
}
