// ABOUTME: Row scanning and column mapping between records rows and Record bodies.
// ABOUTME: Timestamps are stored as fixed-width UTC text so they sort lexically.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/fitlog/internal/models"
)

// timeLayout is fixed-width so string order equals time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const recordColumns = `r.id, r.owner, r.kind, r.created_at, r.occurred_at, r.meal_name,
	r.description, r.workout_type, r.day_of_week, r.calories, r.protein, r.carbohydrates, r.fat`

type rowScanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// bodyColumns holds the kind-specific column values of a record row.
// Columns a kind does not use stay nil (NULL).
type bodyColumns struct {
	occurredAt    any
	mealName      any
	description   any
	workoutType   any
	dayOfWeek     any
	calories      any
	protein       any
	carbohydrates any
	fat           any
}

func columnsFor(body models.Body) (bodyColumns, error) {
	var c bodyColumns
	switch b := body.(type) {
	case *models.DietEntry:
		c.occurredAt = formatTime(b.OccurredAt)
		c.mealName = b.MealName
		c.setMacros(b.Macros)
	case *models.WorkoutEntry:
		c.occurredAt = formatTime(b.OccurredAt)
		c.description = b.Description
		c.workoutType = b.WorkoutType
	case *models.WorkoutGoal:
		c.dayOfWeek = string(b.Day)
		if b.WorkoutType != nil {
			c.workoutType = *b.WorkoutType
		}
	case *models.DietGoal:
		c.setMacros(b.Macros)
	default:
		return c, fmt.Errorf("unsupported record body %T", body)
	}
	return c, nil
}

func (c *bodyColumns) setMacros(m models.Macros) {
	c.calories = m.Calories
	c.protein = m.Protein
	c.carbohydrates = m.Carbohydrates
	c.fat = m.Fat
}

// scanRecord scans one row selected with recordColumns.
func scanRecord(row rowScanner) (*models.Record, error) {
	var (
		idStr, owner, kind, createdAt string
		occurredAt, mealName          sql.NullString
		description, workoutType, day sql.NullString
		calories, protein, carbs, fat sql.NullString
	)

	err := row.Scan(&idStr, &owner, &kind, &createdAt, &occurredAt, &mealName,
		&description, &workoutType, &day, &calories, &protein, &carbs, &fat)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan record: %w", err)
	}

	macros := models.Macros{
		Calories:      calories.String,
		Protein:       protein.String,
		Carbohydrates: carbs.String,
		Fat:           fat.String,
	}

	var body models.Body
	switch models.Kind(kind) {
	case models.KindDietEntry:
		body = &models.DietEntry{
			MealName:   mealName.String,
			Macros:     macros,
			OccurredAt: parseTime(occurredAt.String),
		}
	case models.KindWorkoutEntry:
		body = &models.WorkoutEntry{
			Description: description.String,
			WorkoutType: workoutType.String,
			OccurredAt:  parseTime(occurredAt.String),
		}
	case models.KindWorkoutGoal:
		g := &models.WorkoutGoal{Day: models.DayOfWeek(day.String)}
		if workoutType.Valid {
			wt := workoutType.String
			g.WorkoutType = &wt
		}
		body = g
	case models.KindDietGoal:
		body = &models.DietGoal{Macros: macros}
	default:
		return nil, fmt.Errorf("scan record: unknown kind %q", kind)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("scan record id: %w", err)
	}

	return &models.Record{
		ID:        id,
		Owner:     owner,
		CreatedAt: parseTime(createdAt),
		Body:      body,
	}, nil
}
