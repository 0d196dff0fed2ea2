// ABOUTME: CLI commands for logging meals and workouts.
// ABOUTME: Times accept HH:MM for today or a full date/datetime via --at.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	addAt          string
	addCalories    string
	addProtein     string
	addCarbs       string
	addFat         string
	addWorkoutType string
)

var addCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"a"},
	Short:   "Log a meal or a workout",
	Long: `Log a meal or a workout.

TIMES:

  --at takes HH:MM (placed on today's date), YYYY-MM-DD, YYYY-MM-DD HH:MM,
  YYYY-MM-DDTHH:MM, or RFC3339. Without --at the entry is stamped now.
  Unparseable times fall back to now.

EXAMPLES:

  fitlog add meal oatmeal --calories 350 --protein 12
  fitlog add meal "chicken wrap" --calories 610 --at 12:30
  fitlog add workout "5k loop" --type run
  fitlog add workout "bench 5x5" --type lift --at "2024-06-01 18:00"`,
}

var addMealCmd = &cobra.Command{
	Use:     "meal <name>",
	Aliases: []string{"diet", "m"},
	Short:   "Log a meal",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		return logEntry(cmd, models.KindDietEntry, tracker.EntryInput{
			MealName:      &name,
			Calories:      &addCalories,
			Protein:       &addProtein,
			Carbohydrates: &addCarbs,
			Fat:           &addFat,
			Time:          &addAt,
		}, name)
	},
}

var addWorkoutCmd = &cobra.Command{
	Use:     "workout <description>",
	Aliases: []string{"w"},
	Short:   "Log a workout",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc := strings.Join(args, " ")
		return logEntry(cmd, models.KindWorkoutEntry, tracker.EntryInput{
			Description: &desc,
			WorkoutType: &addWorkoutType,
			Time:        &addAt,
		}, desc)
	},
}

func logEntry(cmd *cobra.Command, kind models.Kind, in tracker.EntryInput, label string) error {
	owner, err := currentUser()
	if err != nil {
		return err
	}

	id, err := tr.LogEntry(cmd.Context(), owner, kind, in)
	if err != nil {
		return fmt.Errorf("failed to log %s: %w", kind, err)
	}

	out := cmd.OutOrStdout()
	if id == uuid.Nil {
		color.New(color.FgYellow).Fprintf(out, "! %s not stored (record store unavailable)\n", kind)
		return nil
	}
	color.New(color.FgGreen).Fprintf(out, "✓ Logged %s\n", kind)
	fmt.Fprintf(out, "  %s %s\n", color.New(color.Faint).Sprint(id.String()[:8]), label)
	return nil
}

func init() {
	addMealCmd.Flags().StringVar(&addCalories, "calories", "", "calories")
	addMealCmd.Flags().StringVar(&addProtein, "protein", "", "protein (g)")
	addMealCmd.Flags().StringVar(&addCarbs, "carbs", "", "carbohydrates (g)")
	addMealCmd.Flags().StringVar(&addFat, "fat", "", "fat (g)")
	addWorkoutCmd.Flags().StringVarP(&addWorkoutType, "type", "t", "", "workout type (run, lift, swim, ...)")
	addCmd.PersistentFlags().StringVar(&addAt, "at", "", "when it happened (HH:MM or YYYY-MM-DD HH:MM)")

	addCmd.AddCommand(addMealCmd, addWorkoutCmd)
	rootCmd.AddCommand(addCmd)
}
