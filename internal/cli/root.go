package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tracker/internal/core"
	"tracker/internal/input"
)

type rootOptions struct {
	envFile string
	debug   bool
}

// NewRootCmd builds the command tree. Logs go to the command's error
// stream so stdout carries only results.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "tracker",
		Short: "Track income and expenses",
		Long: `tracker records income and expense transactions, totals them by
period and lists them with an optional search.

Storage, timezone and logging come from the environment (see .env).

Example:
  tracker add --name Salary --amount 1000 --type income --date 2024-01-05
  tracker list --period month --search rent
  tracker summary --period year
  tracker serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "env file to load (default is .env when present)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newSummaryCmd(opts),
		newRmCmd(opts),
		newPeriodCmd(),
		newServeCmd(opts),
	)
	return root
}

// Execute runs the command tree and prints any error to stderr.
func Execute(ctx context.Context) error {
	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", userMessage(err))
	}
	return err
}

func (o *rootOptions) open(cmd *cobra.Command) (*Env, error) {
	cfg, err := LoadAndValidateConfig(o.envFile)
	if err != nil {
		return nil, err
	}
	logger := SetupLogger(cmd.ErrOrStderr(), cfg.LogLevel, o.debug)
	return OpenTracker(cmd.Context(), cfg, logger)
}

// userMessage shortens validation errors to what the user typed wrong.
func userMessage(err error) string {
	var fe *input.FieldError
	switch {
	case errors.As(err, &fe):
		return fmt.Sprintf("invalid %s: %v", fe.Field, fe.Err)
	case errors.Is(err, core.ErrInvalidPeriod):
		return fmt.Sprintf("%v (choose one of %v)", err, core.Periods())
	default:
		return err.Error()
	}
}
