// ABOUTME: DayOfWeek enum used to key per-day workout goals.
// ABOUTME: Names match time.Weekday strings (Monday..Sunday).
package models

import (
	"fmt"
	"strings"
	"time"
)

// DayOfWeek names a day in a workout week.
type DayOfWeek string

const (
	Monday    DayOfWeek = "Monday"
	Tuesday   DayOfWeek = "Tuesday"
	Wednesday DayOfWeek = "Wednesday"
	Thursday  DayOfWeek = "Thursday"
	Friday    DayOfWeek = "Friday"
	Saturday  DayOfWeek = "Saturday"
	Sunday    DayOfWeek = "Sunday"
)

// Week lists the days in display order, Monday first.
var Week = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseDayOfWeek accepts full or three-letter day names in any case.
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	if in == "" {
		return "", fmt.Errorf("empty day of week")
	}
	for _, d := range Week {
		name := strings.ToLower(string(d))
		if in == name || in == name[:3] {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day of week: %q", s)
}

// DayOf returns the day of week of t in t's location.
func DayOf(t time.Time) DayOfWeek {
	return DayOfWeek(t.Weekday().String())
}

// Index returns the position of d in Week, or -1.
func (d DayOfWeek) Index() int {
	for i, w := range Week {
		if w == d {
			return i
		}
	}
	return -1
}
