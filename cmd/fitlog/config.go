// ABOUTME: CLI commands for inspecting and writing the config file.
// ABOUTME: show prints the effective config; init writes one with defaults filled in.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/fitlog/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Show or initialize configuration",
	Annotations: map[string]string{noStore: "true"},
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Print the effective configuration",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		effective := *cfg
		effective.Addr = cfg.GetAddr()
		effective.DataDir = cfg.GetDataDir()
		effective.Sessions.Backend = cfg.GetSessionBackend()
		if effective.Sessions.TTL == "" {
			effective.Sessions.TTL = config.DefaultSessionTTL
		}
		if effective.Sessions.Secret != "" {
			effective.Sessions.Secret = "********"
		}

		data, err := yaml.Marshal(&effective)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		color.New(color.Faint).Fprintf(out, "# %s\n", configPath())
		fmt.Fprint(out, string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a config file with defaults",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if loaded, err := config.LoadFile(path); err == nil && *loaded != (config.Config{}) && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		out := *cfg
		out.Addr = cfg.GetAddr()
		out.DataDir = cfg.GetDataDir()
		out.Sessions.Backend = cfg.GetSessionBackend()
		if out.Sessions.TTL == "" {
			out.Sessions.TTL = config.DefaultSessionTTL
		}
		if out.Log.Level == "" {
			out.Log.Level = "info"
		}

		save := out.Save
		if flagConfig != "" {
			save = func() error { return out.SaveTo(flagConfig) }
		}
		if err := save(); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
		return nil
	},
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.GetConfigPath()
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
