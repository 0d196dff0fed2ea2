// ABOUTME: MCP tool implementations for fitlog.
// ABOUTME: Logging, listing, editing and deleting entries, plus reading and setting goals.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_meal",
		Description: "Log a meal with its calories and macros",
	}, s.handleLogMeal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_workout",
		Description: "Log a workout with a description and type",
	}, s.handleLogWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_entries",
		Description: "List meals or workouts, with optional sorting and full-text search",
	}, s.handleListEntries)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "edit_entry",
		Description: "Change fields of a meal or workout by ID or ID prefix",
	}, s.handleEditEntry)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_entry",
		Description: "Delete a meal or workout by ID or ID prefix",
	}, s.handleDeleteEntry)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_goals",
		Description: "Get the weekly workout plan, the diet goal, and today's workout",
	}, s.handleGetGoals)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_goals",
		Description: "Set workout goals for some days and/or the daily diet goal",
	}, s.handleSetGoals)
}

// Tool input/output types

type logMealInput struct {
	MealName      string `json:"meal_name" jsonschema:"Name of the meal"`
	Calories      string `json:"calories,omitempty" jsonschema:"Calories"`
	Protein       string `json:"protein,omitempty" jsonschema:"Protein in grams"`
	Carbohydrates string `json:"carbohydrates,omitempty" jsonschema:"Carbohydrates in grams"`
	Fat           string `json:"fat,omitempty" jsonschema:"Fat in grams"`
	Time          string `json:"time,omitempty" jsonschema:"HH:MM today or YYYY-MM-DDTHH:MM; defaults to now"`
}

type logWorkoutInput struct {
	Description string `json:"description" jsonschema:"What the workout was"`
	WorkoutType string `json:"workout_type,omitempty" jsonschema:"Type of workout (run, lift, swim, etc.)"`
	Time        string `json:"time,omitempty" jsonschema:"HH:MM today or YYYY-MM-DDTHH:MM; defaults to now"`
}

type entryOutput struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type listEntriesInput struct {
	Kind      string `json:"kind" jsonschema:"diet or workout"`
	SortBy    string `json:"sort_by,omitempty" jsonschema:"created_at (default), date, meal_name, description, workout_type, calories, protein, carbohydrates or fat"`
	SortOrder string `json:"sort_order,omitempty" jsonschema:"desc (default) or asc"`
	Search    string `json:"search,omitempty" jsonschema:"Full-text search over meal names and workout descriptions"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type entryView struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	CreatedAt     string `json:"created_at"`
	OccurredAt    string `json:"occurred_at,omitempty"`
	MealName      string `json:"meal_name,omitempty"`
	Description   string `json:"description,omitempty"`
	WorkoutType   string `json:"workout_type,omitempty"`
	Calories      string `json:"calories,omitempty"`
	Protein       string `json:"protein,omitempty"`
	Carbohydrates string `json:"carbohydrates,omitempty"`
	Fat           string `json:"fat,omitempty"`
}

type listEntriesOutput struct {
	Count   int         `json:"count"`
	Entries []entryView `json:"entries"`
	Message string      `json:"message,omitempty"`
}

type editEntryInput struct {
	ID            string  `json:"id" jsonschema:"Entry ID or unique prefix"`
	MealName      *string `json:"meal_name,omitempty" jsonschema:"New meal name"`
	Description   *string `json:"description,omitempty" jsonschema:"New workout description"`
	WorkoutType   *string `json:"workout_type,omitempty" jsonschema:"New workout type"`
	Calories      *string `json:"calories,omitempty" jsonschema:"New calories"`
	Protein       *string `json:"protein,omitempty" jsonschema:"New protein"`
	Carbohydrates *string `json:"carbohydrates,omitempty" jsonschema:"New carbohydrates"`
	Fat           *string `json:"fat,omitempty" jsonschema:"New fat"`
	Time          *string `json:"time,omitempty" jsonschema:"New time; empty string resets to now"`
}

type idInput struct {
	ID string `json:"id" jsonschema:"Entry ID or unique prefix"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type goalsInput struct {
	Workouts      map[string]string `json:"workouts,omitempty" jsonschema:"Workout type per day name (Monday..Sunday); empty string for a rest day"`
	Calories      *string           `json:"calories,omitempty" jsonschema:"Daily calorie goal"`
	Protein       *string           `json:"protein,omitempty" jsonschema:"Daily protein goal"`
	Carbohydrates *string           `json:"carbohydrates,omitempty" jsonschema:"Daily carbohydrate goal"`
	Fat           *string           `json:"fat,omitempty" jsonschema:"Daily fat goal"`
}

type goalsOutput struct {
	Today        string             `json:"today"`
	TodayWorkout *string            `json:"today_workout"`
	WorkoutGoals map[string]*string `json:"workout_goals"`
	DietGoal     *models.Macros     `json:"diet_goal"`
	Summary      string             `json:"summary,omitempty"`
}

// Helpers

func viewOf(rec *models.Record) entryView {
	v := entryView{
		ID:        rec.ID.String(),
		Kind:      string(rec.Kind()),
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
	}
	if at, ok := rec.OccurredAt(); ok {
		v.OccurredAt = at.Format("2006-01-02 15:04")
	}
	switch b := rec.Body.(type) {
	case *models.DietEntry:
		v.MealName = b.MealName
		v.Calories, v.Protein, v.Carbohydrates, v.Fat = b.Calories, b.Protein, b.Carbohydrates, b.Fat
	case *models.WorkoutEntry:
		v.Description = b.Description
		v.WorkoutType = b.WorkoutType
	}
	return v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Server) resolveID(ctx context.Context, ref string) (uuid.UUID, error) {
	return s.tracker.ResolveID(ctx, s.owner, ref)
}

// Tool handlers

func (s *Server) handleLogMeal(ctx context.Context, req *mcp.CallToolRequest, input logMealInput) (*mcp.CallToolResult, entryOutput, error) {
	if strings.TrimSpace(input.MealName) == "" {
		return nil, entryOutput{}, fmt.Errorf("meal_name is required")
	}

	id, err := s.tracker.LogEntry(ctx, s.owner, models.KindDietEntry, tracker.EntryInput{
		MealName:      &input.MealName,
		Calories:      &input.Calories,
		Protein:       &input.Protein,
		Carbohydrates: &input.Carbohydrates,
		Fat:           &input.Fat,
		Time:          &input.Time,
	})
	if err != nil {
		return nil, entryOutput{}, fmt.Errorf("failed to log meal: %w", err)
	}
	if id == uuid.Nil {
		return nil, entryOutput{}, fmt.Errorf("failed to log meal: record store unavailable")
	}

	return nil, entryOutput{
		ID:      id.String()[:8],
		Kind:    string(models.KindDietEntry),
		Message: fmt.Sprintf("Logged meal %q (ID: %s)", input.MealName, id.String()[:8]),
	}, nil
}

func (s *Server) handleLogWorkout(ctx context.Context, req *mcp.CallToolRequest, input logWorkoutInput) (*mcp.CallToolResult, entryOutput, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, entryOutput{}, fmt.Errorf("description is required")
	}

	id, err := s.tracker.LogEntry(ctx, s.owner, models.KindWorkoutEntry, tracker.EntryInput{
		Description: &input.Description,
		WorkoutType: &input.WorkoutType,
		Time:        &input.Time,
	})
	if err != nil {
		return nil, entryOutput{}, fmt.Errorf("failed to log workout: %w", err)
	}
	if id == uuid.Nil {
		return nil, entryOutput{}, fmt.Errorf("failed to log workout: record store unavailable")
	}

	return nil, entryOutput{
		ID:      id.String()[:8],
		Kind:    string(models.KindWorkoutEntry),
		Message: fmt.Sprintf("Logged workout %q (ID: %s)", input.Description, id.String()[:8]),
	}, nil
}

func (s *Server) handleListEntries(ctx context.Context, req *mcp.CallToolRequest, input listEntriesInput) (*mcp.CallToolResult, listEntriesOutput, error) {
	kind, err := models.ParseKind(input.Kind)
	if err != nil || !kind.IsEntry() {
		return nil, listEntriesOutput{}, fmt.Errorf("kind must be diet or workout, got %q", input.Kind)
	}
	if input.Limit <= 0 {
		input.Limit = 20
	}

	recs := s.tracker.Entries(ctx, s.owner, kind, tracker.ListOptions{
		SortBy: input.SortBy,
		Order:  input.SortOrder,
		Search: input.Search,
	})

	out := listEntriesOutput{Entries: []entryView{}}
	for _, rec := range recs {
		if len(out.Entries) == input.Limit {
			break
		}
		out.Entries = append(out.Entries, viewOf(rec))
	}
	out.Count = len(out.Entries)
	if out.Count == 0 {
		out.Message = "No entries found."
	}
	return nil, out, nil
}

func (s *Server) handleEditEntry(ctx context.Context, req *mcp.CallToolRequest, input editEntryInput) (*mcp.CallToolResult, simpleOutput, error) {
	id, err := s.resolveID(ctx, input.ID)
	if err != nil {
		return nil, simpleOutput{}, err
	}

	ok := s.tracker.Edit(ctx, s.owner, id, tracker.EntryInput{
		MealName:      input.MealName,
		Description:   input.Description,
		WorkoutType:   input.WorkoutType,
		Calories:      input.Calories,
		Protein:       input.Protein,
		Carbohydrates: input.Carbohydrates,
		Fat:           input.Fat,
		Time:          input.Time,
	})
	if !ok {
		return nil, simpleOutput{}, fmt.Errorf("entry not updated: %s", input.ID)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Updated entry: %s", id.String()[:8])}, nil
}

func (s *Server) handleDeleteEntry(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	id, err := s.resolveID(ctx, input.ID)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	if !s.tracker.Delete(ctx, s.owner, id) {
		return nil, simpleOutput{}, fmt.Errorf("entry not deleted: %s", input.ID)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Deleted entry: %s", id.String()[:8])}, nil
}

func (s *Server) goals(ctx context.Context) goalsOutput {
	week := s.tracker.Week(ctx, s.owner)
	today := s.tracker.Today()

	out := goalsOutput{
		Today:        string(today),
		TodayWorkout: week.WorkoutGoals[today],
		WorkoutGoals: make(map[string]*string, len(week.WorkoutGoals)),
	}
	for day, typ := range week.WorkoutGoals {
		out.WorkoutGoals[string(day)] = typ
	}
	if week.DietGoal != nil {
		m := week.DietGoal.Macros
		out.DietGoal = &m
		out.Summary = week.DietGoal.Summary().String()
	}
	return out
}

func (s *Server) handleGetGoals(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, goalsOutput, error) {
	return nil, s.goals(ctx), nil
}

func (s *Server) handleSetGoals(ctx context.Context, req *mcp.CallToolRequest, input goalsInput) (*mcp.CallToolResult, goalsOutput, error) {
	in := tracker.GoalsInput{Workouts: make(map[models.DayOfWeek]string, len(input.Workouts))}
	for name, typ := range input.Workouts {
		day, err := models.ParseDayOfWeek(name)
		if err != nil {
			return nil, goalsOutput{}, err
		}
		in.Workouts[day] = typ
	}

	if input.Calories != nil || input.Protein != nil || input.Carbohydrates != nil || input.Fat != nil {
		var base models.Macros
		if current := s.tracker.CurrentDietGoal(ctx, s.owner); current != nil {
			base = current.Macros
		}
		in.Diet = &models.Macros{
			Calories:      pick(input.Calories, base.Calories),
			Protein:       pick(input.Protein, base.Protein),
			Carbohydrates: pick(input.Carbohydrates, base.Carbohydrates),
			Fat:           pick(input.Fat, base.Fat),
		}
	}

	if len(in.Workouts) == 0 && in.Diet == nil {
		return nil, goalsOutput{}, fmt.Errorf("nothing to set: give workouts and/or diet macros")
	}
	if s.tracker.SaveGoals(ctx, s.owner, in) == 0 {
		return nil, goalsOutput{}, fmt.Errorf("failed to save goals")
	}
	return nil, s.goals(ctx), nil
}

func pick(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return strings.TrimSpace(*p)
}
