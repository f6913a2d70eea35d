package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/tauraamui/camarchive/pkg/archive"
)

func printSummary(w io.Writer, outcome archive.Outcome) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Run %s finished in %s\n\n", outcome.RunID, outcome.FinishedAt.Sub(outcome.StartedAt).Round(time.Millisecond))
	fmt.Fprintln(tw, "CAMERA\tTICKS\tKEPT\tDISCARDED\tFETCH FAILURES\tWRITE FAILURES\tLAST ERROR")
	for _, id := range outcome.CameraIDs() {
		s := outcome.Sources[id]
		fmt.Fprintf(
			tw, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			id, s.Ticks, s.FramesKept, s.FramesDiscarded, s.FetchFailures, s.WriteFailures, s.LastErrorMessage(),
		)
	}
	for _, r := range outcome.Rejected {
		fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\trejected: %v\n", r.Record.ID, r.Err)
	}

	t := outcome.Totals()
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\t%d\t%d\t\n", t.Ticks, t.FramesKept, t.FramesDiscarded, t.FetchFailures, t.WriteFailures)
	return tw.Flush()
}
