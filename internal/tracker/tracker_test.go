// ABOUTME: Tests for the tracker service: the full user scenario and degraded stores.
// ABOUTME: Uses a temp SQLite store, a nil store, and sqlmock for failing stores.
package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/harperreed/fitlog/internal/auth"
	"github.com/harperreed/fitlog/internal/logging"
	"github.com/harperreed/fitlog/internal/metrics"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Monday, 2024-01-01 10:00 UTC. The shifted "today" is still Monday.
var testNow = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func ptr(s string) *string { return &s }

func setupTracker(t *testing.T) *Tracker {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return New(db, logging.Discard(),
		WithClock(func() time.Time { return testNow }),
		WithBcryptCost(bcrypt.MinCost),
		WithMetrics(metrics.New()),
	)
}

func TestAliceScenario(t *testing.T) {
	tr := setupTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Register(ctx, "alice", "pw1"))
	require.NoError(t, tr.Login(ctx, "alice", "pw1"))
	assert.ErrorIs(t, tr.Login(ctx, "alice", "wrong"), auth.ErrInvalidCredentials)

	saved := tr.Onboard(ctx, "alice", FullWeek(
		map[models.DayOfWeek]string{models.Monday: "Run", models.Wednesday: "Lift"},
		&models.Macros{Calories: "2000", Protein: "150", Carbohydrates: "200", Fat: "70"},
	))
	assert.Equal(t, 8, saved)

	home := tr.Home(ctx, "alice")
	assert.Equal(t, models.Monday, home.Day)
	require.NotNil(t, home.WorkoutGoal)
	assert.Equal(t, "Run", *home.WorkoutGoal)
	require.NotNil(t, home.DietGoal)
	assert.Equal(t, "Calories: 2000, Protein: 150, Carbs: 200, Fat: 70", home.DietText)

	id, err := tr.LogEntry(ctx, "alice", models.KindDietEntry, EntryInput{
		MealName: ptr("oatmeal"),
		Calories: ptr("300"),
		Time:     ptr("07:30"),
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	meals := tr.Entries(ctx, "alice", models.KindDietEntry, ListOptions{})
	require.Len(t, meals, 1)
	at, _ := meals[0].OccurredAt()
	assert.Equal(t, time.Date(2024, 1, 1, 7, 30, 0, 0, time.UTC), at)

	// Saving goals again replaces Monday rather than adding a second one.
	tr.SaveGoals(ctx, "alice", GoalsInput{Workouts: map[models.DayOfWeek]string{models.Monday: "Swim"}})
	week := tr.WeekGoals(ctx, "alice")
	assert.Len(t, week, 7)
	require.NotNil(t, week[models.Monday])
	assert.Equal(t, "Swim", *week[models.Monday])
	require.NotNil(t, week[models.Wednesday])
	assert.Equal(t, "Lift", *week[models.Wednesday])
	assert.Nil(t, week[models.Tuesday])

	goals := tr.Entries(ctx, "alice", models.KindWorkoutGoal, ListOptions{})
	assert.Empty(t, goals, "Entries only lists entry kinds")
	all := tr.Records(ctx, "alice")
	assert.Len(t, all, 9)
}

func TestOnboardTwiceKeepsOneGoalPerDay(t *testing.T) {
	tr := setupTracker(t)
	ctx := context.Background()

	in := FullWeek(map[models.DayOfWeek]string{models.Friday: "Yoga"}, &models.Macros{Calories: "1800"})
	tr.Onboard(ctx, "alice", in)
	tr.Onboard(ctx, "alice", in)

	recs := tr.Records(ctx, "alice")
	assert.Len(t, recs, 8)
}

func TestLogEntryRejectsGoalKinds(t *testing.T) {
	tr := setupTracker(t)

	_, err := tr.LogEntry(context.Background(), "alice", models.KindDietGoal, EntryInput{})
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestEntriesSortAndSearch(t *testing.T) {
	tr := setupTracker(t)
	ctx := context.Background()

	for i, desc := range []string{"easy run", "heavy deadlifts", "hill runs"} {
		tr.now = func() time.Time { return testNow.Add(time.Duration(i) * time.Minute) }
		_, err := tr.LogEntry(ctx, "alice", models.KindWorkoutEntry, EntryInput{Description: ptr(desc), WorkoutType: ptr("x")})
		require.NoError(t, err)
	}

	desc := tr.Entries(ctx, "alice", models.KindWorkoutEntry, ListOptions{})
	require.Len(t, desc, 3)
	w, _ := desc[0].WorkoutEntry()
	assert.Equal(t, "hill runs", w.Description)

	asc := tr.Entries(ctx, "alice", models.KindWorkoutEntry, ListOptions{Order: "asc"})
	w, _ = asc[0].WorkoutEntry()
	assert.Equal(t, "easy run", w.Description)

	found := tr.Entries(ctx, "alice", models.KindWorkoutEntry, ListOptions{Search: "running"})
	assert.Len(t, found, 2)
}

func TestEditMergesFields(t *testing.T) {
	tr := setupTracker(t)
	ctx := context.Background()

	id, err := tr.LogEntry(ctx, "alice", models.KindDietEntry, EntryInput{
		MealName: ptr("toast"), Calories: ptr("200"), Protein: ptr("6"), Time: ptr("08:00"),
	})
	require.NoError(t, err)

	assert.False(t, tr.Edit(ctx, "bob", id, EntryInput{MealName: ptr("stolen")}))

	require.True(t, tr.Edit(ctx, "alice", id, EntryInput{Calories: ptr("250")}))
	rec, ok := tr.Entry(ctx, "alice", id)
	require.True(t, ok)
	d, _ := rec.DietEntry()
	assert.Equal(t, "toast", d.MealName)
	assert.Equal(t, "250", d.Calories)
	assert.Equal(t, "6", d.Protein)
	assert.Equal(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), d.OccurredAt)

	require.True(t, tr.Edit(ctx, "alice", id, EntryInput{Time: ptr("2024-01-02T08:15")}))
	rec, _ = tr.Entry(ctx, "alice", id)
	d, _ = rec.DietEntry()
	assert.Equal(t, time.Date(2024, 1, 2, 8, 15, 0, 0, time.UTC), d.OccurredAt)

	require.True(t, tr.Edit(ctx, "alice", id, EntryInput{Time: ptr("")}))
	rec, _ = tr.Entry(ctx, "alice", id)
	d, _ = rec.DietEntry()
	assert.Equal(t, time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC), d.OccurredAt)
}

func TestDeleteScopes(t *testing.T) {
	tr := setupTracker(t)
	ctx := context.Background()

	id, err := tr.LogEntry(ctx, "alice", models.KindWorkoutEntry, EntryInput{Description: ptr("row")})
	require.NoError(t, err)
	_, err = tr.LogEntry(ctx, "bob", models.KindWorkoutEntry, EntryInput{Description: ptr("row")})
	require.NoError(t, err)

	assert.False(t, tr.Delete(ctx, "bob", id))
	assert.True(t, tr.Delete(ctx, "alice", id))
	assert.False(t, tr.Delete(ctx, "alice", id))

	_, err = tr.LogEntry(ctx, "alice", models.KindWorkoutEntry, EntryInput{Description: ptr("again")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), tr.DeleteAll(ctx, "alice"))
	assert.Empty(t, tr.Records(ctx, "alice"))
	assert.Len(t, tr.Records(ctx, "bob"), 1)
}

func TestNilStoreDegrades(t *testing.T) {
	tr := New(nil, logging.Discard(), WithClock(func() time.Time { return testNow }))
	ctx := context.Background()

	assert.False(t, tr.Available())
	assert.ErrorIs(t, tr.Register(ctx, "alice", "pw"), ErrStoreUnavailable)
	assert.ErrorIs(t, tr.Login(ctx, "alice", "pw"), auth.ErrInvalidCredentials)

	id, err := tr.LogEntry(ctx, "alice", models.KindWorkoutEntry, EntryInput{Description: ptr("x")})
	assert.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	assert.NotNil(t, tr.Entries(ctx, "alice", models.KindWorkoutEntry, ListOptions{}))
	assert.Empty(t, tr.Entries(ctx, "alice", models.KindWorkoutEntry, ListOptions{}))
	assert.Empty(t, tr.Records(ctx, "alice"))
	assert.Zero(t, tr.SaveGoals(ctx, "alice", FullWeek(nil, nil)))
	assert.False(t, tr.Delete(ctx, "alice", uuid.New()))
	assert.Zero(t, tr.DeleteAll(ctx, "alice"))
	assert.False(t, tr.Edit(ctx, "alice", uuid.New(), EntryInput{}))

	home := tr.Home(ctx, "alice")
	assert.Nil(t, home.WorkoutGoal)
	assert.Nil(t, home.DietGoal)
	assert.Len(t, tr.WeekGoals(ctx, "alice"), 7)
}

func TestFailingStoreDegrades(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	boom := errors.New("database is locked")
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery("SELECT").WillReturnError(boom)
	mock.ExpectExec("INSERT INTO records").WillReturnError(boom)
	mock.ExpectQuery("SELECT").WillReturnError(boom)

	tr := New(storage.New(sqlDB), logging.Discard(), WithClock(func() time.Time { return testNow }))
	ctx := context.Background()

	recs := tr.Entries(ctx, "alice", models.KindDietEntry, ListOptions{})
	assert.NotNil(t, recs)
	assert.Empty(t, recs)

	id, err := tr.LogEntry(ctx, "alice", models.KindDietEntry, EntryInput{MealName: ptr("soup")})
	assert.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	assert.Nil(t, tr.CurrentDietGoal(ctx, "alice"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveID(t *testing.T) {
	tr := setupTracker(t)
	ctx := t.Context()

	ids := make([]uuid.UUID, 0, 20)
	for range 20 {
		id, err := tr.LogEntry(ctx, "alice", models.KindDietEntry, EntryInput{MealName: ptr("snack")})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	bobID, err := tr.LogEntry(ctx, "bob", models.KindWorkoutEntry, EntryInput{Description: ptr("row")})
	require.NoError(t, err)

	got, err := tr.ResolveID(ctx, "alice", strings.ToUpper(ids[0].String()[:8]))
	require.NoError(t, err)
	assert.Equal(t, ids[0], got)

	got, err = tr.ResolveID(ctx, "alice", ids[3].String())
	require.NoError(t, err)
	assert.Equal(t, ids[3], got)

	_, err = tr.ResolveID(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = tr.ResolveID(ctx, "alice", bobID.String()[:8])
	assert.ErrorIs(t, err, ErrEntryNotFound)

	// 20 random IDs over 16 hex digits always share a first digit.
	seen := map[byte]int{}
	for _, id := range ids {
		seen[id.String()[0]]++
	}
	for first, n := range seen {
		if n > 1 {
			_, err = tr.ResolveID(ctx, "alice", string(first))
			assert.ErrorIs(t, err, ErrAmbiguousID)
			break
		}
	}
}
