// ABOUTME: Workout entry and per-day workout goal record bodies.
// ABOUTME: Workout types are freeform text (run, lift, swim, ...).
package models

import (
	"strings"
	"time"
)

// WorkoutEntry is a logged workout session.
type WorkoutEntry struct {
	Description string    `json:"description"`
	WorkoutType string    `json:"workout_type"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewWorkoutEntry creates a WorkoutEntry. OccurredAt is resolved by the store on insert.
func NewWorkoutEntry(description, workoutType string) *WorkoutEntry {
	return &WorkoutEntry{Description: description, WorkoutType: workoutType}
}

func (*WorkoutEntry) Kind() Kind { return KindWorkoutEntry }
func (*WorkoutEntry) sealed()    {}

// WorkoutGoal is the planned workout for one day of the week.
// A nil WorkoutType means no workout is planned (rest day).
type WorkoutGoal struct {
	Day         DayOfWeek `json:"day_of_week"`
	WorkoutType *string   `json:"workout_type"`
}

// NewWorkoutGoal creates a WorkoutGoal. A blank workout type becomes a rest day.
func NewWorkoutGoal(day DayOfWeek, workoutType string) *WorkoutGoal {
	g := &WorkoutGoal{Day: day}
	if t := strings.TrimSpace(workoutType); t != "" {
		g.WorkoutType = &t
	}
	return g
}

func (*WorkoutGoal) Kind() Kind { return KindWorkoutGoal }
func (*WorkoutGoal) sealed()    {}
