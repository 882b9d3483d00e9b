// Package cli implements distctl, the offline front end to the distribution
// pipeline. It plans uploads against a YAML roster and writes the result as
// JSON instead of going through the database.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/leaddist/internal/core"
	"github.com/JonMunkholm/leaddist/internal/logging"
)

// Execute runs distctl and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", describeError(err))
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		level  string
		format string
	)

	cmd := &cobra.Command{
		Use:           "distctl",
		Short:         "Plan contact sheet distributions without a database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logging.ValidLevel(level); err != nil {
				return err
			}
			logger := logging.New(cmd.ErrOrStderr(), level, format)
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&level, "log-level", "warn", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&format, "log-format", "text", "log format: text or json")

	cmd.AddCommand(checkCmd(), planCmd(), watchCmd())
	return cmd
}

// describeError prefers the user-facing message for pipeline failures.
func describeError(err error) string {
	if core.IsUserFacing(err) {
		return core.FormatUserError(err)
	}
	return err.Error()
}
