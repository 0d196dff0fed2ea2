// ABOUTME: CLI commands for accounts in the credential store.
// ABOUTME: Passwords come from --password, $FITLOG_PASSWORD, or the first line of stdin.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/fitlog/internal/auth"
	"github.com/harperreed/fitlog/internal/tracker"
	"github.com/spf13/cobra"
)

var userPassword string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}

		err = tr.Register(cmd.Context(), args[0], password)
		switch {
		case err == nil:
		case errors.Is(err, auth.ErrAlreadyExists):
			return fmt.Errorf("user %s already exists", args[0])
		case errors.Is(err, auth.ErrInvalidInput):
			return errors.New("username and password are required")
		case errors.Is(err, tracker.ErrStoreUnavailable):
			return errors.New("record store unavailable")
		default:
			return fmt.Errorf("failed to create user: %w", err)
		}

		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Created user %s\n", args[0])
		return nil
	},
}

var userCheckCmd = &cobra.Command{
	Use:   "check <username>",
	Short: "Check a username and password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		if err := tr.Login(cmd.Context(), args[0], password); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "✓ Credentials OK")
		return nil
	},
}

func readPassword(cmd *cobra.Command) (string, error) {
	if userPassword != "" {
		return userPassword, nil
	}
	if p := os.Getenv("FITLOG_PASSWORD"); p != "" {
		return p, nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", errors.New("empty password")
	}
	return line, nil
}

func init() {
	userCmd.PersistentFlags().StringVarP(&userPassword, "password", "p", "", "password (prefer $FITLOG_PASSWORD or stdin)")
	userCmd.AddCommand(userAddCmd, userCheckCmd)
	rootCmd.AddCommand(userCmd)
}
