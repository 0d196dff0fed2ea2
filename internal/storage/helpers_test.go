// ABOUTME: Shared test helpers for storage tests.
// ABOUTME: Provides setupTestDB and entry fixtures on isolated temp databases.
package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/fitlog/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

var testNow = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func insertWorkout(t *testing.T, db *DB, owner, description, workoutType string, now time.Time) uuid.UUID {
	t.Helper()
	id, err := db.Insert(context.Background(), owner, models.NewWorkoutEntry(description, workoutType), "", now)
	if err != nil {
		t.Fatalf("Insert workout failed: %v", err)
	}
	return id
}

func insertMeal(t *testing.T, db *DB, owner, mealName, calories string, now time.Time) uuid.UUID {
	t.Helper()
	entry := models.NewDietEntry(mealName, models.Macros{Calories: calories, Protein: "10", Carbohydrates: "20", Fat: "5"})
	id, err := db.Insert(context.Background(), owner, entry, "", now)
	if err != nil {
		t.Fatalf("Insert meal failed: %v", err)
	}
	return id
}

func collect(t *testing.T, rs *Records) []*models.Record {
	t.Helper()
	recs, err := rs.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	return recs
}
