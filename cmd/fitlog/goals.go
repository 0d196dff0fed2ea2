// ABOUTME: CLI commands for workout and diet goals.
// ABOUTME: Shows the week plan, sets one day at a time, and updates the diet goal.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	goalCalories string
	goalProtein  string
	goalCarbs    string
	goalFat      string
)

var goalsCmd = &cobra.Command{
	Use:     "goals",
	Aliases: []string{"g"},
	Short:   "Show or set goals",
	Long: `Show the weekly workout plan and the daily diet goal.

COMMANDS:

  workout  Set the workout type for one day (omit the type for a rest day)
  diet     Set the daily diet goal; unset flags keep their current value

EXAMPLES:

  fitlog goals
  fitlog goals workout mon run
  fitlog goals workout sunday
  fitlog goals diet --calories 2200 --protein 160`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := currentUser()
		if err != nil {
			return err
		}

		week := tr.Week(cmd.Context(), owner)
		today := tr.Today()
		out := cmd.OutOrStdout()
		bold := color.New(color.Bold)
		faint := color.New(color.Faint)

		bold.Fprintln(out, "Workouts")
		for _, day := range models.Week {
			marker := "  "
			if day == today {
				marker = "> "
			}
			plan := faint.Sprint("rest")
			if w := week.WorkoutGoals[day]; w != nil {
				plan = *w
			}
			fmt.Fprintf(out, "%s%s %s\n", marker, padRight(string(day), 10), plan)
		}

		bold.Fprintln(out, "Diet")
		if week.DietGoal == nil {
			faint.Fprintln(out, "  no diet goal set")
		} else {
			fmt.Fprintf(out, "  %s\n", week.DietGoal.Summary())
		}
		return nil
	},
}

var goalsWorkoutCmd = &cobra.Command{
	Use:   "workout <day> [type]",
	Short: "Set the workout goal for a day",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := currentUser()
		if err != nil {
			return err
		}
		day, err := models.ParseDayOfWeek(args[0])
		if err != nil {
			return err
		}
		typ := ""
		if len(args) == 2 {
			typ = strings.TrimSpace(args[1])
		}

		if tr.SaveGoals(cmd.Context(), owner, tracker.GoalsInput{
			Workouts: map[models.DayOfWeek]string{day: typ},
		}) == 0 {
			return fmt.Errorf("failed to save workout goal for %s", day)
		}

		if typ == "" {
			typ = "rest"
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ %s: %s\n", day, typ)
		return nil
	},
}

var goalsDietCmd = &cobra.Command{
	Use:   "diet",
	Short: "Set the daily diet goal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := currentUser()
		if err != nil {
			return err
		}

		var m models.Macros
		if current := tr.CurrentDietGoal(cmd.Context(), owner); current != nil {
			m = current.Macros
		}
		for _, f := range []struct {
			flag string
			src  string
			dst  *string
		}{
			{"calories", goalCalories, &m.Calories},
			{"protein", goalProtein, &m.Protein},
			{"carbs", goalCarbs, &m.Carbohydrates},
			{"fat", goalFat, &m.Fat},
		} {
			if cmd.Flags().Changed(f.flag) {
				*f.dst = strings.TrimSpace(f.src)
			}
		}

		if tr.SaveGoals(cmd.Context(), owner, tracker.GoalsInput{Diet: &m}) == 0 {
			return fmt.Errorf("failed to save diet goal")
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ %s\n", models.NewDietGoal(m).Summary())
		return nil
	},
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's workout goal and the diet goal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := currentUser()
		if err != nil {
			return err
		}

		home := tr.Home(cmd.Context(), owner)
		out := cmd.OutOrStdout()
		color.New(color.Bold).Fprintf(out, "%s, %s\n", home.Username, home.Day)
		if home.WorkoutGoal != nil {
			fmt.Fprintf(out, "  workout: %s\n", *home.WorkoutGoal)
		} else {
			fmt.Fprintln(out, "  workout: rest")
		}
		if home.DietText != "" {
			fmt.Fprintf(out, "  diet:    %s\n", home.DietText)
		}
		return nil
	},
}

func init() {
	goalsDietCmd.Flags().StringVar(&goalCalories, "calories", "", "daily calories")
	goalsDietCmd.Flags().StringVar(&goalProtein, "protein", "", "daily protein (g)")
	goalsDietCmd.Flags().StringVar(&goalCarbs, "carbs", "", "daily carbohydrates (g)")
	goalsDietCmd.Flags().StringVar(&goalFat, "fat", "", "daily fat (g)")

	goalsCmd.AddCommand(goalsWorkoutCmd, goalsDietCmd)
	rootCmd.AddCommand(goalsCmd, todayCmd)
}
