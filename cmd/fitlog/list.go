// ABOUTME: CLI commands for listing and showing logged entries.
// ABOUTME: Supports sorting, full-text search, and limiting results.
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	listSort   string
	listOrder  string
	listSearch string
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:       "list <diet|workout>",
	Aliases:   []string{"ls", "l"},
	Short:     "List meals or workouts",
	ValidArgs: []string{"diet", "workout"},
	Args:      cobra.ExactArgs(1),
	Long: `List logged meals or workouts, newest first.

OUTPUT FORMAT:

  Each line shows: ID  WHEN  NAME  DETAILS

  The ID is an 8-character prefix you can use with show, edit and delete.

SORTING:

  --sort takes created_at (default), date, meal_name, description,
  workout_type, calories, protein, carbohydrates or fat. Macro fields sort
  numerically. Unknown fields fall back to created_at.

SEARCH:

  --search runs a full-text query over meal names and workout descriptions.
  Words are stemmed, so "egg" also finds "eggs".

EXAMPLES:

  fitlog list diet
  fitlog list diet --sort calories --order asc
  fitlog list workout -s run -n 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := currentUser()
		if err != nil {
			return err
		}
		kind, err := models.ParseKind(args[0])
		if err != nil || !kind.IsEntry() {
			return fmt.Errorf("unknown entry kind: %s (want diet or workout)", args[0])
		}

		recs := tr.Entries(cmd.Context(), owner, kind, tracker.ListOptions{
			SortBy: listSort,
			Order:  listOrder,
			Search: listSearch,
		})

		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(out, "No entries found.")
			return nil
		}
		if listLimit > 0 && len(recs) > listLimit {
			recs = recs[:listLimit]
		}
		for _, rec := range recs {
			printEntryLine(out, rec)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := currentUser()
		if err != nil {
			return err
		}
		id, err := tr.ResolveID(cmd.Context(), owner, args[0])
		if err != nil {
			return err
		}
		rec, ok := tr.Entry(cmd.Context(), owner, id)
		if !ok {
			return fmt.Errorf("entry not found: %s", args[0])
		}

		out := cmd.OutOrStdout()
		bold := color.New(color.Bold)
		bold.Fprintf(out, "%s %s\n", rec.Kind(), rec.ID)
		fmt.Fprintf(out, "  logged:   %s\n", rec.CreatedAt.Format("2006-01-02 15:04"))
		if at, ok := rec.OccurredAt(); ok {
			fmt.Fprintf(out, "  occurred: %s\n", at.Format("2006-01-02 15:04"))
		}
		switch b := rec.Body.(type) {
		case *models.DietEntry:
			fmt.Fprintf(out, "  meal:     %s\n", b.MealName)
			fmt.Fprintf(out, "  macros:   %s\n", macroText(b.Macros))
		case *models.WorkoutEntry:
			fmt.Fprintf(out, "  workout:  %s\n", b.Description)
			if b.WorkoutType != "" {
				fmt.Fprintf(out, "  type:     %s\n", b.WorkoutType)
			}
		}
		return nil
	},
}

func printEntryLine(w io.Writer, rec *models.Record) {
	faint := color.New(color.Faint)
	when := ""
	if at, ok := rec.OccurredAt(); ok {
		when = at.Format("2006-01-02 15:04")
	}

	var name, details string
	switch b := rec.Body.(type) {
	case *models.DietEntry:
		name = b.MealName
		details = macroText(b.Macros)
	case *models.WorkoutEntry:
		name = b.Description
		details = b.WorkoutType
	}

	fmt.Fprintf(w, "%s %s %s %s\n",
		faint.Sprint(rec.ID.String()[:8]),
		faint.Sprint(when),
		padRight(truncate(name, 30), 30),
		faint.Sprint(details))
}

// macroText renders the macros that were entered, skipping blanks.
func macroText(m models.Macros) string {
	var parts []string
	for _, f := range []struct{ label, value string }{
		{"kcal", m.Calories},
		{"P", m.Protein},
		{"C", m.Carbohydrates},
		{"F", m.Fat},
	} {
		if f.value != "" {
			parts = append(parts, f.value+" "+f.label)
		}
	}
	return strings.Join(parts, " · ")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	listCmd.Flags().StringVar(&listSort, "sort", "", "sort field (default created_at)")
	listCmd.Flags().StringVar(&listOrder, "order", "desc", "sort order: asc or desc")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "full-text search")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results (0 for all)")
	rootCmd.AddCommand(listCmd, showCmd)
}
