// ABOUTME: Record CRUD operations for SQLite storage.
// ABOUTME: Entries are insert/update/delete; goals go through atomic upserts.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/fitlog/internal/models"
)

// Insert stores a new diet or workout entry and returns its ID.
// created_at is stamped with now; the entry's OccurredAt is set from the raw
// time string by ResolveOccurredAt (the passed body is updated in place).
func (d *DB) Insert(ctx context.Context, owner string, body models.Body, at string, now time.Time) (uuid.UUID, error) {
	if owner == "" {
		return uuid.Nil, fmt.Errorf("insert record: %w", ErrMissingOwner)
	}
	if body == nil {
		return uuid.Nil, fmt.Errorf("insert record: nil body")
	}

	occurredAt := ResolveOccurredAt(at, now)
	switch b := body.(type) {
	case *models.DietEntry:
		b.OccurredAt = occurredAt
	case *models.WorkoutEntry:
		b.OccurredAt = occurredAt
	default:
		return uuid.Nil, fmt.Errorf("insert %s: %w", body.Kind(), ErrSingletonKind)
	}

	rec := models.NewRecord(owner, body, now)
	c, err := columnsFor(body)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert record: %w", err)
	}

	query := `
		INSERT INTO records (id, owner, kind, created_at, occurred_at, meal_name, description,
			workout_type, day_of_week, calories, protein, carbohydrates, fat)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = d.db.ExecContext(ctx, query,
		rec.ID.String(),
		rec.Owner,
		string(rec.Kind()),
		formatTime(rec.CreatedAt),
		c.occurredAt, c.mealName, c.description, c.workoutType, c.dayOfWeek,
		c.calories, c.protein, c.carbohydrates, c.fat,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert %s: %w", rec.Kind(), err)
	}
	return rec.ID, nil
}

// UpsertGoal creates or replaces the owner's goal for the body's key.
// Workout goals are keyed by (owner, day); the diet goal by owner alone.
// Each call is a single INSERT ... ON CONFLICT statement, so concurrent saves
// of the same key never produce two rows.
func (d *DB) UpsertGoal(ctx context.Context, owner string, body models.Body, now time.Time) error {
	if owner == "" {
		return fmt.Errorf("upsert goal: %w", ErrMissingOwner)
	}
	if body == nil {
		return fmt.Errorf("upsert goal: nil body")
	}

	var query string
	var args []any

	switch b := body.(type) {
	case *models.WorkoutGoal:
		if b.Day.Index() < 0 {
			return fmt.Errorf("upsert workout goal: unknown day %q", b.Day)
		}
		var workoutType any
		if b.WorkoutType != nil {
			workoutType = *b.WorkoutType
		}
		query = `
			INSERT INTO records (id, owner, kind, created_at, day_of_week, workout_type)
			VALUES (?, ?, 'workout_goal', ?, ?, ?)
			ON CONFLICT (owner, kind, day_of_week) WHERE kind = 'workout_goal'
			DO UPDATE SET workout_type = excluded.workout_type
		`
		args = []any{uuid.New().String(), owner, formatTime(now), string(b.Day), workoutType}
	case *models.DietGoal:
		query = `
			INSERT INTO records (id, owner, kind, created_at, calories, protein, carbohydrates, fat)
			VALUES (?, ?, 'diet_goal', ?, ?, ?, ?, ?)
			ON CONFLICT (owner, kind) WHERE kind = 'diet_goal'
			DO UPDATE SET
				calories = excluded.calories,
				protein = excluded.protein,
				carbohydrates = excluded.carbohydrates,
				fat = excluded.fat
		`
		args = []any{uuid.New().String(), owner, formatTime(now),
			b.Calories, b.Protein, b.Carbohydrates, b.Fat}
	default:
		return fmt.Errorf("upsert %s: %w", body.Kind(), ErrSingletonKind)
	}

	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", body.Kind(), err)
	}
	return nil
}

// FindOne returns the first record of kind owned by owner that matches f.
func (d *DB) FindOne(ctx context.Context, kind models.Kind, owner string, f Filter) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records r WHERE r.owner = ? AND r.kind = ?`
	args := []any{owner, string(kind)}

	if f.ID != nil {
		query += ` AND r.id = ?`
		args = append(args, f.ID.String())
	}
	if f.Day != nil {
		query += ` AND r.day_of_week = ?`
		args = append(args, string(*f.Day))
	}
	query += ` ORDER BY r.seq LIMIT 1`

	rec, err := scanRecord(d.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	return rec, nil
}

// Get returns a record of any kind by ID, scoped to owner.
func (d *DB) Get(ctx context.Context, id uuid.UUID, owner string) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records r WHERE r.id = ? AND r.owner = ?`

	rec, err := scanRecord(d.db.QueryRowContext(ctx, query, id.String(), owner))
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// Update replaces the variant fields of an entry matched by (id, owner, kind).
// It reports false when nothing matched; owner and kind are never changed.
func (d *DB) Update(ctx context.Context, id uuid.UUID, owner string, body models.Body) (bool, error) {
	if body == nil {
		return false, fmt.Errorf("update record: nil body")
	}

	var query string
	var args []any

	switch b := body.(type) {
	case *models.DietEntry:
		query = `
			UPDATE records
			SET meal_name = ?, calories = ?, protein = ?, carbohydrates = ?, fat = ?, occurred_at = ?
			WHERE id = ? AND owner = ? AND kind = 'diet'
		`
		args = []any{b.MealName, b.Calories, b.Protein, b.Carbohydrates, b.Fat, formatTime(b.OccurredAt)}
	case *models.WorkoutEntry:
		query = `
			UPDATE records
			SET description = ?, workout_type = ?, occurred_at = ?
			WHERE id = ? AND owner = ? AND kind = 'workout'
		`
		args = []any{b.Description, b.WorkoutType, formatTime(b.OccurredAt)}
	default:
		return false, fmt.Errorf("update %s: %w", body.Kind(), ErrSingletonKind)
	}
	args = append(args, id.String(), owner)

	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update %s: %w", body.Kind(), err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update %s: %w", body.Kind(), err)
	}
	return affected > 0, nil
}

// Delete removes one record owned by owner. It reports false when nothing matched.
func (d *DB) Delete(ctx context.Context, id uuid.UUID, owner string) (bool, error) {
	result, err := d.db.ExecContext(ctx, "DELETE FROM records WHERE id = ? AND owner = ?", id.String(), owner)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	return affected > 0, nil
}

// DeleteAll removes every record owned by owner and returns how many went.
func (d *DB) DeleteAll(ctx context.Context, owner string) (int64, error) {
	result, err := d.db.ExecContext(ctx, "DELETE FROM records WHERE owner = ?", owner)
	if err != nil {
		return 0, fmt.Errorf("delete all records: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all records: %w", err)
	}
	return affected, nil
}
