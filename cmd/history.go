package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/aquaassist/internal/history"
	"github.com/abhisek/aquaassist/internal/report"
)

type historyOutput struct {
	Total   int              `json:"total"`
	Records []history.Record `json:"records"`
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded classifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			asJSON, _ := cmd.Flags().GetBool("json")

			d, err := buildDeps(cmd)
			if err != nil {
				return err
			}
			defer d.Close()

			ctx := cmd.Context()
			total, err := d.service.Count(ctx)
			if err != nil {
				return err
			}
			records, err := d.service.History(ctx, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if records == nil {
					records = []history.Record{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(historyOutput{Total: total, Records: records})
			}

			if len(records) == 0 {
				fmt.Fprintln(out, "No classifications recorded yet.")
				return nil
			}
			fmt.Fprintln(out, report.HistoryTable(records, total))
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Number of most recent records to show (0 for all)")
	cmd.Flags().Bool("json", false, "Print records as JSON")
	return cmd
}
