package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	data "github.com/tauraamui/camarchive/pkg/database"
)

var historyCmd = &cobra.Command{
	Use:   "history <run id>",
	Short: "Show the ledger entries recorded for a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := data.Connect()
		if err != nil {
			return err
		}

		entries, err := data.History(db, args[0])
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CAMERA\tSTARTED\tTICKS\tKEPT\tDISCARDED\tFAILED\tLAST ERROR")
		for _, e := range entries {
			fmt.Fprintf(
				tw, "%s\t%s\t%d\t%d\t%d\t%t\t%s\n",
				e.CameraID, e.StartedAt.Format("2006-01-02 15:04:05"), e.Ticks, e.FramesKept, e.FramesDiscarded, e.Failed(), e.LastError,
			)
		}
		return tw.Flush()
	},
}
