// ABOUTME: CLI commands for editing and deleting entries.
// ABOUTME: Entries are addressed by full ID or unique ID prefix.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/fitlog/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	editName     string
	editDesc     string
	editType     string
	editCalories string
	editProtein  string
	editCarbs    string
	editFat      string
	editAt       string

	wipeYes bool
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of an entry",
	Long: `Change fields of a meal or workout. Only the flags you pass are changed.

EXAMPLES:

  fitlog edit abc12345 --calories 420
  fitlog edit abc12345 --desc "6k loop" --type run
  fitlog edit abc12345 --at ""        # reset the time to now`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := currentUser()
		if err != nil {
			return err
		}
		id, err := tr.ResolveID(cmd.Context(), owner, args[0])
		if err != nil {
			return err
		}

		changed := func(name string, v *string) *string {
			if cmd.Flags().Changed(name) {
				return v
			}
			return nil
		}
		in := tracker.EntryInput{
			MealName:      changed("name", &editName),
			Description:   changed("desc", &editDesc),
			WorkoutType:   changed("type", &editType),
			Calories:      changed("calories", &editCalories),
			Protein:       changed("protein", &editProtein),
			Carbohydrates: changed("carbs", &editCarbs),
			Fat:           changed("fat", &editFat),
			Time:          changed("at", &editAt),
		}

		if !tr.Edit(cmd.Context(), owner, id, in) {
			return fmt.Errorf("entry not updated: %s", args[0])
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Updated %s\n", id.String()[:8])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete an entry",
	Long: `Delete a meal or workout by its ID or ID prefix.

You can use either the full UUID or just the first few characters (prefix).
The ID prefix is shown in the first column of 'fitlog list' output.

EXAMPLES:

  fitlog delete abc12345                    # Delete by 8-char prefix
  fitlog rm abc1                            # Short prefix (if unique)

CAUTION:

  This permanently deletes the entry. There is no undo.
  If the prefix matches multiple entries, an error is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := currentUser()
		if err != nil {
			return err
		}
		id, err := tr.ResolveID(cmd.Context(), owner, args[0])
		if err != nil {
			return err
		}

		// Look it up first to show what we're deleting.
		rec, ok := tr.Entry(cmd.Context(), owner, id)
		if !ok || !rec.Kind().IsEntry() {
			return fmt.Errorf("entry not found: %s", args[0])
		}
		if !tr.Delete(cmd.Context(), owner, id) {
			return fmt.Errorf("failed to delete entry: %s", args[0])
		}

		out := cmd.OutOrStdout()
		color.New(color.FgYellow).Fprintf(out, "✗ Deleted %s\n", rec.Kind())
		printEntryLine(out, rec)
		return nil
	},
}

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete every entry and goal for the user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := currentUser()
		if err != nil {
			return err
		}
		if !wipeYes {
			return errors.New("refusing to wipe without --yes")
		}
		n := tr.DeleteAll(cmd.Context(), owner)
		color.New(color.FgYellow).Fprintf(cmd.OutOrStdout(), "✗ Deleted %d records for %s\n", n, owner)
		return nil
	},
}

func init() {
	editCmd.Flags().StringVar(&editName, "name", "", "meal name")
	editCmd.Flags().StringVar(&editDesc, "desc", "", "workout description")
	editCmd.Flags().StringVarP(&editType, "type", "t", "", "workout type")
	editCmd.Flags().StringVar(&editCalories, "calories", "", "calories")
	editCmd.Flags().StringVar(&editProtein, "protein", "", "protein (g)")
	editCmd.Flags().StringVar(&editCarbs, "carbs", "", "carbohydrates (g)")
	editCmd.Flags().StringVar(&editFat, "fat", "", "fat (g)")
	editCmd.Flags().StringVar(&editAt, "at", "", "when it happened; empty resets to now")
	wipeCmd.Flags().BoolVar(&wipeYes, "yes", false, "confirm deleting everything")

	rootCmd.AddCommand(editCmd, deleteCmd, wipeCmd)
}
