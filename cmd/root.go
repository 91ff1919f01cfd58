package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "aquaassist",
		Short: "Pond water quality checker",
		Long: "AquaAssist classifies pond water from pH, salinity, dissolved oxygen and ammonia " +
			"readings, shows advice in English and Telugu, and keeps a history of every check.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "Path to config file (overrides AQUA_CONFIG env var)")
	root.PersistentFlags().String("history", "", "Path to history file (overrides AQUA_HISTORY_PATH env var)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newInitCmd(),
		newClassifyCmd(),
		newVoiceCmd(),
		newHistoryCmd(),
		newCatalogCmd(),
		newInteractiveCmd(),
		newVersionCmd(),
	)
	return root
}

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// Process exit statuses.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitNotRecorded = 2
)

// ErrNotRecorded reports a classification that was shown but could not be
// appended to history.
type ErrNotRecorded struct {
	Err error
}

func (e *ErrNotRecorded) Error() string {
	return fmt.Sprintf("result not recorded: %v", e.Err)
}

func (e *ErrNotRecorded) Unwrap() error { return e.Err }

// ExitCode maps an Execute error to the process exit status.
func ExitCode(err error) int {
	var nr *ErrNotRecorded
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &nr):
		return ExitNotRecorded
	default:
		return ExitFailure
	}
}
