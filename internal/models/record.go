// ABOUTME: Record envelope and Kind discriminator for the single record collection.
// ABOUTME: Bodies form a closed tagged union: diet/workout entries and their goals.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the logical record types stored in the records collection.
type Kind string

const (
	KindDietEntry    Kind = "diet"
	KindWorkoutEntry Kind = "workout"
	KindWorkoutGoal  Kind = "workout_goal"
	KindDietGoal     Kind = "diet_goal"
)

// AllKinds returns every record kind.
var AllKinds = []Kind{KindDietEntry, KindWorkoutEntry, KindWorkoutGoal, KindDietGoal}

// ParseKind maps user input to a Kind. The older "Diet"/"Workouts" spellings are accepted.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "diet", "diets", "meal", "meals":
		return KindDietEntry, nil
	case "workout", "workouts":
		return KindWorkoutEntry, nil
	case "workout_goal":
		return KindWorkoutGoal, nil
	case "diet_goal":
		return KindDietGoal, nil
	}
	return "", fmt.Errorf("unknown record kind: %q", s)
}

// IsEntry reports whether records of this kind are append-then-mutable log entries.
func (k Kind) IsEntry() bool {
	return k == KindDietEntry || k == KindWorkoutEntry
}

// IsGoal reports whether records of this kind are upsert-only singletons.
func (k Kind) IsGoal() bool {
	return k == KindWorkoutGoal || k == KindDietGoal
}

// Body is the kind-specific payload of a Record.
// Only the four variants in this package implement it.
type Body interface {
	Kind() Kind
	sealed()
}

// Record is one document in the records collection.
type Record struct {
	ID        uuid.UUID
	Owner     string
	CreatedAt time.Time
	Body      Body
}

// NewRecord creates a Record with a generated UUID, stamped at now.
func NewRecord(owner string, body Body, now time.Time) *Record {
	return &Record{
		ID:        uuid.New(),
		Owner:     owner,
		CreatedAt: now,
		Body:      body,
	}
}

// Kind returns the discriminator of the record's body.
func (r *Record) Kind() Kind {
	if r.Body == nil {
		return ""
	}
	return r.Body.Kind()
}

// OccurredAt returns when an entry happened. Goals have no occurrence time.
func (r *Record) OccurredAt() (time.Time, bool) {
	switch b := r.Body.(type) {
	case *DietEntry:
		return b.OccurredAt, true
	case *WorkoutEntry:
		return b.OccurredAt, true
	}
	return time.Time{}, false
}

// DietEntry returns the body as a DietEntry if it is one.
func (r *Record) DietEntry() (*DietEntry, bool) {
	b, ok := r.Body.(*DietEntry)
	return b, ok
}

// WorkoutEntry returns the body as a WorkoutEntry if it is one.
func (r *Record) WorkoutEntry() (*WorkoutEntry, bool) {
	b, ok := r.Body.(*WorkoutEntry)
	return b, ok
}

// WorkoutGoal returns the body as a WorkoutGoal if it is one.
func (r *Record) WorkoutGoal() (*WorkoutGoal, bool) {
	b, ok := r.Body.(*WorkoutGoal)
	return b, ok
}

// DietGoal returns the body as a DietGoal if it is one.
func (r *Record) DietGoal() (*DietGoal, bool) {
	b, ok := r.Body.(*DietGoal)
	return b, ok
}

type recordJSON struct {
	ID        uuid.UUID       `json:"id"`
	Kind      Kind            `json:"kind"`
	Owner     string          `json:"owner"`
	CreatedAt time.Time       `json:"created_at"`
	Data      json.RawMessage `json:"data"`
}

// MarshalJSON writes the envelope with a kind discriminator and the body under "data".
func (r Record) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(r.Body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s body: %w", r.Kind(), err)
	}
	return json.Marshal(recordJSON{
		ID:        r.ID,
		Kind:      r.Kind(),
		Owner:     r.Owner,
		CreatedAt: r.CreatedAt,
		Data:      data,
	})
}

// UnmarshalJSON decodes the body variant selected by the kind discriminator.
func (r *Record) UnmarshalJSON(data []byte) error {
	var env recordJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	body, err := NewBody(env.Kind)
	if err != nil {
		return err
	}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, body); err != nil {
			return fmt.Errorf("unmarshal %s body: %w", env.Kind, err)
		}
	}

	r.ID = env.ID
	r.Owner = env.Owner
	r.CreatedAt = env.CreatedAt
	r.Body = body
	return nil
}

// NewBody returns an empty body for the given kind.
func NewBody(kind Kind) (Body, error) {
	switch kind {
	case KindDietEntry:
		return &DietEntry{}, nil
	case KindWorkoutEntry:
		return &WorkoutEntry{}, nil
	case KindWorkoutGoal:
		return &WorkoutGoal{}, nil
	case KindDietGoal:
		return &DietGoal{}, nil
	}
	return nil, fmt.Errorf("unknown record kind: %q", kind)
}
