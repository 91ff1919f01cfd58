package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the history log if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(cmd)
			if err != nil {
				return err
			}
			defer d.Close()

			n, err := d.service.Count(cmd.Context())
			if err != nil {
				return err
			}
			where := d.historyPath
			if where == "" {
				where = d.cfg.History.Backend
			}
			fmt.Fprintf(cmd.OutOrStdout(), "History ready at %s (%d records)\n", where, n)
			return nil
		},
	}
}
