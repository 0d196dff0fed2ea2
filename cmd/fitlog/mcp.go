// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio MCP server acting as the current user.
package main

import (
	"os/signal"
	"syscall"

	"github.com/harperreed/fitlog/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server acts as one user (--user or $FITLOG_USER) and communicates via
stdin/stdout.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "fitlog": {
        "command": "fitlog",
        "args": ["mcp", "--user", "alice"]
      }
    }
  }

AVAILABLE TOOLS:

  log_meal       Log a meal with calories and macros
  log_workout    Log a workout
  list_entries   List meals or workouts with sort and search
  edit_entry     Change fields of an entry
  delete_entry   Delete an entry
  get_goals      Weekly workout plan and diet goal
  set_goals      Set workout days and/or the diet goal

AVAILABLE RESOURCES:

  fitlog://recent   Last 10 meals and workouts
  fitlog://today    Today's entries and goals
  fitlog://home     Today's workout goal and diet goal`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := currentUser()
		if err != nil {
			return err
		}
		server, err := mcp.NewServer(tr, owner)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
