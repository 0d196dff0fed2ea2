// ABOUTME: Root Cobra command for the fitlog CLI.
// ABOUTME: Loads config and opens the record store via PersistentPre/PostRunE.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/harperreed/fitlog/internal/config"
	"github.com/harperreed/fitlog/internal/metrics"
	"github.com/harperreed/fitlog/internal/storage"
	"github.com/harperreed/fitlog/internal/tracker"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Commands annotated with noStore run without opening the record store.
const noStore = "fitlog/no-store"

var (
	flagConfig  string
	flagDataDir string
	flagUser    string

	cfg    *config.Config
	logger *logrus.Logger
	mtr    *metrics.Metrics
	repo   storage.Repository
	tr     *tracker.Tracker
)

var rootCmd = &cobra.Command{
	Use:   "fitlog",
	Short: "Personal diet and workout tracker",
	Long: `Fitlog tracks meals, workouts, and the goals you set for them.

WHAT IT TRACKS:

  Meals      name, calories, protein, carbohydrates, fat
  Workouts   description and freeform type (run, lift, swim, ...)
  Goals      a workout type per day of the week, and one daily diet goal

QUICK START:

  $ fitlog user add alice                          # Create an account
  $ fitlog -u alice add meal oatmeal --calories 350
  $ fitlog -u alice add workout "5k loop" --type run --at 07:15
  $ fitlog -u alice list diet --sort calories      # Biggest meals first
  $ fitlog -u alice goals workout monday run       # Plan Monday
  $ fitlog -u alice today                          # Today's goals

Set FITLOG_USER to skip the -u flag.

SERVER:

  $ fitlog serve                                   # HTTP API on :8080

MCP INTEGRATION:

  Run 'fitlog -u alice mcp' to start the Model Context Protocol server for
  Claude Desktop or other MCP-compatible assistants.

DATA STORAGE:

  Records are stored in SQLite at ~/.local/share/fitlog/fitlog.db.
  Config lives at ~/.config/fitlog/config.yaml (or config.json).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}
		// Cobra skips PersistentPostRunE when RunE fails.
		if err := closeStore(); err != nil {
			return err
		}

		var err error
		if flagConfig != "" {
			cfg, err = config.LoadFile(flagConfig)
			if err == nil {
				cfg.ApplyEnv()
			}
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if flagDataDir != "" {
			cfg.DataDir = flagDataDir
		}

		logger = cfg.Logger()
		mtr = metrics.New()

		if cmd.Annotations[noStore] != "" {
			return nil
		}

		// A store that fails to open leaves the tracker degraded instead of
		// refusing to start; reads come back empty and writes are dropped.
		if db, err := cfg.OpenStorage(); err != nil {
			logger.WithError(err).WithField("path", cfg.DBPath()).Warn("record store unavailable")
		} else {
			repo = db
		}
		tr = tracker.New(repo, logger, tracker.WithMetrics(mtr))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStore()
	},
}

func closeStore() error {
	if repo == nil {
		return nil
	}
	err := repo.Close()
	repo = nil
	return err
}

// currentUser is the owner for entry and goal commands.
func currentUser() (string, error) {
	if flagUser != "" {
		return flagUser, nil
	}
	if u := os.Getenv("FITLOG_USER"); u != "" {
		return u, nil
	}
	return "", errors.New("no user: pass --user or set FITLOG_USER")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/fitlog/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "user to act as (default $FITLOG_USER)")
}
