package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/aquaassist/internal/tui"
)

func newInteractiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Adjust readings with sliders and classify on Enter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd)
		},
	}
}

// runInteractive builds dependencies and launches the TUI.
func runInteractive(cmd *cobra.Command) error {
	d, err := buildDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	return tui.Run(&tui.Deps{
		Service:      d.service,
		Notifier:     d.notifier("translated"),
		Capabilities: d.caps,
	})
}
