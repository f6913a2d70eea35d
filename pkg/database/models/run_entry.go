package models

import (
	"time"

	"gorm.io/gorm"
)

func init() {
	registerForAutomigration(&RunEntry{})
}

// RunEntry is one camera's line in a run's ledger.
type RunEntry struct {
	gorm.Model
	RunID           string `gorm:"index"`
	CameraID        string `gorm:"index"`
	Ticks           int
	FramesKept      int
	FramesDiscarded int
	FetchFailures   int
	WriteFailures   int
	LastError       string
	Cancelled       bool
	Rejected        bool
	StartedAt       time.Time
	StoppedAt       time.Time
}

func (e RunEntry) Failed() bool {
	return e.Rejected || len(e.LastError) > 0
}
