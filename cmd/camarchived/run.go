package main

import (
	"github.com/spf13/cobra"
	"github.com/tauraamui/xerror"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Archive the cameras listed in the config file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		values, err := loadValues()
		if err != nil {
			return err
		}
		if len(values.Cameras) == 0 {
			return xerror.New("no cameras configured, add some to the config file or use the csv or directory commands")
		}

		ctx, stop := signalContext()
		defer stop()

		return archiveRecords(ctx, values, values.Cameras, cmd.OutOrStdout())
	},
}
