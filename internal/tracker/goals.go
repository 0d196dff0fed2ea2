// ABOUTME: Goal aggregation: per-day workout goals and the single diet goal.
// ABOUTME: Saves go through atomic upserts so repeated saves never duplicate goals.
package tracker

import (
	"context"
	"errors"

	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/storage"
	"github.com/sirupsen/logrus"
)

// GoalsInput is a goal save. Days missing from Workouts are left untouched;
// a blank workout type makes that day a rest day. A nil Diet leaves the diet goal alone.
type GoalsInput struct {
	Workouts map[models.DayOfWeek]string
	Diet     *models.Macros
}

// FullWeek returns a GoalsInput that sets all seven days from types,
// treating days absent from types as rest days.
func FullWeek(types map[models.DayOfWeek]string, diet *models.Macros) GoalsInput {
	in := GoalsInput{Workouts: make(map[models.DayOfWeek]string, len(models.Week)), Diet: diet}
	for _, d := range models.Week {
		in.Workouts[d] = types[d]
	}
	return in
}

// HomeView is the landing summary for a user.
type HomeView struct {
	Username    string                  `json:"username"`
	Day         models.DayOfWeek        `json:"day"`
	WorkoutGoal *string                 `json:"workout_goal"`
	DietGoal    *models.DietGoalSummary `json:"diet_goal"`
	DietText    string                  `json:"diet_goal_text,omitempty"`
}

// WeekView is every day's workout goal plus the diet goal.
type WeekView struct {
	WorkoutGoals map[models.DayOfWeek]*string `json:"workout_goals"`
	DietGoal     *models.DietGoal             `json:"diet_goal"`
}

// SaveGoals upserts the goals in in and returns how many were written.
// Days are saved one by one; a failure on one day does not undo the others.
func (t *Tracker) SaveGoals(ctx context.Context, owner string, in GoalsInput) int {
	if t.repo == nil {
		t.degraded("upsert_goal", nil)
		return 0
	}

	saved := 0
	now := t.now()
	for _, day := range models.Week {
		typ, ok := in.Workouts[day]
		if !ok {
			continue
		}
		if err := t.repo.UpsertGoal(ctx, owner, models.NewWorkoutGoal(day, typ), now); err != nil {
			t.degraded("upsert_goal", err)
			continue
		}
		t.metrics.RecordWrite(string(models.KindWorkoutGoal), "upsert")
		saved++
	}

	if in.Diet != nil {
		if err := t.repo.UpsertGoal(ctx, owner, models.NewDietGoal(*in.Diet), now); err != nil {
			t.degraded("upsert_goal", err)
		} else {
			t.metrics.RecordWrite(string(models.KindDietGoal), "upsert")
			saved++
		}
	}

	t.log.WithFields(logrus.Fields{"user": owner, "saved": saved}).Debug("saved goals")
	return saved
}

// Onboard stores a new user's first goals. It upserts like SaveGoals, so
// submitting onboarding twice still leaves one goal per day.
func (t *Tracker) Onboard(ctx context.Context, owner string, in GoalsInput) int {
	return t.SaveGoals(ctx, owner, in)
}

// TodayWorkoutGoal returns the workout type planned for day, or nil when
// none is set or the day is a rest day.
func (t *Tracker) TodayWorkoutGoal(ctx context.Context, owner string, day models.DayOfWeek) *string {
	if t.repo == nil {
		t.degraded("find_one", nil)
		return nil
	}
	rec, err := t.repo.FindOne(ctx, models.KindWorkoutGoal, owner, storage.Filter{Day: &day})
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			t.degraded("find_one", err)
		}
		return nil
	}
	g, ok := rec.WorkoutGoal()
	if !ok {
		return nil
	}
	return g.WorkoutType
}

// CurrentDietGoal returns the owner's diet goal, or nil when none is set.
func (t *Tracker) CurrentDietGoal(ctx context.Context, owner string) *models.DietGoal {
	if t.repo == nil {
		t.degraded("find_one", nil)
		return nil
	}
	rec, err := t.repo.FindOne(ctx, models.KindDietGoal, owner, storage.Filter{})
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			t.degraded("find_one", err)
		}
		return nil
	}
	g, _ := rec.DietGoal()
	return g
}

// WeekGoals returns every day's workout goal. All seven days are present;
// days without a goal map to nil.
func (t *Tracker) WeekGoals(ctx context.Context, owner string) map[models.DayOfWeek]*string {
	week := make(map[models.DayOfWeek]*string, len(models.Week))
	for _, d := range models.Week {
		week[d] = nil
	}

	recs := t.collect(ctx, "find_many", func(repo storage.Repository) *storage.Records {
		return repo.FindMany(storage.Query{Kind: models.KindWorkoutGoal, Owner: owner})
	})
	for _, rec := range recs {
		if g, ok := rec.WorkoutGoal(); ok && g.Day.Index() >= 0 {
			week[g.Day] = g.WorkoutType
		}
	}
	return week
}

// Week returns the settings view: the seven workout goals and the diet goal.
func (t *Tracker) Week(ctx context.Context, owner string) WeekView {
	return WeekView{
		WorkoutGoals: t.WeekGoals(ctx, owner),
		DietGoal:     t.CurrentDietGoal(ctx, owner),
	}
}

// Today returns the day of week used for "today" views. It follows the
// same fixed offset as default entry times.
func (t *Tracker) Today() models.DayOfWeek {
	return models.DayOf(storage.DefaultOccurredAt(t.now()))
}

// Home returns today's workout goal and the diet goal summary.
func (t *Tracker) Home(ctx context.Context, owner string) HomeView {
	day := t.Today()
	view := HomeView{
		Username:    owner,
		Day:         day,
		WorkoutGoal: t.TodayWorkoutGoal(ctx, owner, day),
	}
	if g := t.CurrentDietGoal(ctx, owner); g != nil {
		s := g.Summary()
		view.DietGoal = &s
		view.DietText = s.String()
	}
	return view
}
