package main

import (
	"github.com/spf13/cobra"
	"github.com/tauraamui/camarchive/pkg/camera/directory"
	"github.com/tauraamui/camarchive/pkg/log"
	"github.com/tauraamui/xerror"
)

var directoryQuery directory.Query

var directoryCmd = &cobra.Command{
	Use:   "directory",
	Short: "Archive cameras found through the camera directory service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		values, err := loadValues()
		if err != nil {
			return err
		}
		if values.Directory == nil || len(values.Directory.BaseURL) == 0 {
			return xerror.New("no camera directory configured")
		}

		q := values.Directory.Query()
		flags := cmd.Flags()
		if flags.Changed("city") {
			q.City = directoryQuery.City
		}
		if flags.Changed("state") {
			q.State = directoryQuery.State
		}
		if flags.Changed("country") {
			q.Country = directoryQuery.Country
		}
		if flags.Changed("offset") {
			q.Offset = directoryQuery.Offset
		}
		if flags.Changed("limit") {
			q.Limit = directoryQuery.Limit
		}

		ctx, stop := signalContext()
		defer stop()

		records, err := directory.New(values.Directory.Config).Search(ctx, q)
		if err != nil {
			return err
		}
		log.Info("Camera directory returned %d cameras", len(records)) //nolint

		return archiveRecords(ctx, values, records, cmd.OutOrStdout())
	},
}

func init() {
	flags := directoryCmd.Flags()
	flags.StringVar(&directoryQuery.City, "city", "", "only cameras in this city")
	flags.StringVar(&directoryQuery.State, "state", "", "only cameras in this state")
	flags.StringVar(&directoryQuery.Country, "country", "", "only cameras in this country")
	flags.IntVar(&directoryQuery.Offset, "offset", 0, "skip this many results")
	flags.IntVar(&directoryQuery.Limit, "limit", 0, "return at most this many results")
}
