package archive

import (
	"sort"
	"time"

	"github.com/tauraamui/camarchive/pkg/archive/process"
	"github.com/tauraamui/camarchive/pkg/camera"
)

type SourceOutcome = process.Snapshot

type Rejection struct {
	Record camera.Record
	Err    error
}

// Outcome is the sealed result of a run, one entry per started camera.
type Outcome struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Sources    map[string]SourceOutcome
	Rejected   []Rejection
}

func (o Outcome) CameraIDs() []string {
	ids := make([]string, 0, len(o.Sources))
	for id := range o.Sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type Totals struct {
	Ticks, FramesKept, FramesDiscarded, FetchFailures, WriteFailures int
}

func (o Outcome) Totals() Totals {
	t := Totals{}
	for _, s := range o.Sources {
		t.Ticks += s.Ticks
		t.FramesKept += s.FramesKept
		t.FramesDiscarded += s.FramesDiscarded
		t.FetchFailures += s.FetchFailures
		t.WriteFailures += s.WriteFailures
	}
	return t
}

func (o Outcome) Cancelled() bool {
	for _, s := range o.Sources {
		if s.Cancelled {
			return true
		}
	}
	return false
}
