package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tauraamui/camarchive/pkg/camera"
	"github.com/tauraamui/xerror"
)

var csvCmd = &cobra.Command{
	Use:   "csv <file>",
	Short: "Archive the camera URLs listed in a CSV file",
	Long: `Reads one camera URL per row from the first column. Rows ending in .m3u8 are
archived as playlist streams, every other row as a snapshot URL. Cameras are
numbered from 1 in file order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := loadValues()
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return xerror.Errorf("unable to open camera list: %w", err)
		}
		defer f.Close()

		records, err := camera.ReadCSV(f)
		if err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		return archiveRecords(ctx, values, records, cmd.OutOrStdout())
	},
}
