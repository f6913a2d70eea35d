package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tauraamui/camarchive/pkg/archive"
	"github.com/tauraamui/camarchive/pkg/camera"
	"github.com/tauraamui/camarchive/pkg/config"
	"github.com/tauraamui/camarchive/pkg/log"
	"github.com/tauraamui/camarchive/pkg/video/videofilter"
	"github.com/tauraamui/camarchive/pkg/video/videostorage"

)

func silenceLogs() func() {
	debugRef, infoRef, warnRef, errorRef := log.Debug, log.Info, log.Warn, log.Error
	nop := func(string, ...interface{}) {}
	log.Debug, log.Info, log.Warn, log.Error = nop, nop, nop, nop
	return func() { log.Debug, log.Info, log.Warn, log.Error = debugRef, infoRef, warnRef, errorRef }
}

func TestPrintSummaryListsCamerasAndRejections(t *testing.T) {
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	outcome := archive.Outcome{
		RunID:      "run-1",
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Sources: map[string]archive.SourceOutcome{
			"2": {CameraID: "2", Ticks: 3, FramesKept: 1, FramesDiscarded: 2},
			"1": {CameraID: "1", Ticks: 3, FetchFailures: 3, LastError: errors.New("unreachable: connection refused")},
		},
		Rejected: []archive.Rejection{
			{Record: camera.Record{ID: "9"}, Err: errors.New("missing snapshot_url")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printSummary(&buf, outcome))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "Run run-1 finished in 1.5s", lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "CAMERA"))
	assert.True(t, strings.HasPrefix(lines[3], "1 "))
	assert.Contains(t, lines[3], "unreachable: connection refused")
	assert.True(t, strings.HasPrefix(lines[4], "2 "))
	assert.Contains(t, lines[5], "rejected: missing snapshot_url")
	assert.Equal(t, []string{"TOTAL", "6", "1", "2", "3", "0"}, strings.Fields(lines[6]))
}

func TestApplyOverridesOnlyTouchesSetKeys(t *testing.T) {
	defer viper.Reset()

	values := config.Defaults()
	viper.Set("num_processes", 4)
	viper.Set("image_difference_percentage", 50.0)
	viper.Set("ledger", true)

	applyOverrides(&values)

	assert.Equal(t, 4, values.NumProcesses)
	assert.Equal(t, videofilter.Threshold(50), values.ImageDifferencePercentage)
	assert.True(t, values.Ledger.Enabled)
	assert.Equal(t, config.Defaults().ResultsPath, values.ResultsPath)
	assert.Equal(t, config.Defaults().IntervalSeconds, values.IntervalSeconds)
}

func TestArchiveRecordsWithMockBackend(t *testing.T) {
	defer silenceLogs()()

	root := t.TempDir()
	values := config.Defaults()
	values.ResultsPath = root
	values.SourceBackend = "mock"
	values.DurationSeconds = 0

	records := []camera.Record{
		{ID: "1", Kind: camera.StaticURL, SnapshotURL: "http://camera.invalid/1.jpg"},
		{ID: "2", Kind: camera.PlaylistStream, ManifestURL: "http://camera.invalid/index.m3u8"},
	}

	var buf bytes.Buffer
	require.NoError(t, archiveRecords(context.Background(), values, records, &buf))
	assert.Contains(t, buf.String(), "TOTAL")

	for _, id := range []string{"1", "2"} {
		frames, err := videostorage.ListFrames(afero.NewOsFs(), root, id)
		require.NoError(t, err)
		assert.Len(t, frames, 1, filepath.Join(root, id))
	}
}
