package process

import (
	"time"

	"github.com/tauraamui/camarchive/pkg/archiveerr"
)

// Snapshot is a worker's final account of its run, published exactly once
// when the worker stops.
type Snapshot struct {
	CameraID        string
	Ticks           int
	FramesKept      int
	FramesDiscarded int
	FetchFailures   int
	WriteFailures   int
	FailuresByKind  map[archiveerr.FetchKind]int
	LastError       error
	StartedAt       time.Time
	StoppedAt       time.Time
	Cancelled       bool
}

func (s Snapshot) LastErrorMessage() string {
	if s.LastError == nil {
		return ""
	}
	return s.LastError.Error()
}

func (s Snapshot) Elapsed() time.Duration {
	return s.StoppedAt.Sub(s.StartedAt)
}
