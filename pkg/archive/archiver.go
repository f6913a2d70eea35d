package archive

import (
	"context"
	"time"

	"github.com/tauraamui/camarchive/pkg/camera"
	"github.com/tauraamui/camarchive/pkg/video/videofilter"
)

type Options struct {
	NumProcesses int
	ResultsPath  string
	// ImageDifferencePercentage left nil keeps frames at the default
	// threshold, videofilter.Of(videofilter.Disabled) keeps every frame.
	ImageDifferencePercentage *videofilter.Threshold
}

func DefaultOptions() Options {
	return Options{
		NumProcesses:              DefaultConcurrency,
		ResultsPath:               DefaultOutputRoot,
		ImageDifferencePercentage: videofilter.Of(videofilter.DefaultThreshold),
	}
}

// Archiver is the simple entry point: fixed options, one call per batch of
// cameras.
type Archiver struct {
	opts   Options
	engine *Engine
}

func New(opts Options, engineOpts ...Option) *Archiver {
	if opts.NumProcesses == 0 {
		opts.NumProcesses = DefaultConcurrency
	}
	if len(opts.ResultsPath) == 0 {
		opts.ResultsPath = DefaultOutputRoot
	}
	if opts.ImageDifferencePercentage == nil {
		opts.ImageDifferencePercentage = videofilter.Of(videofilter.DefaultThreshold)
	}
	return &Archiver{opts: opts, engine: NewEngine(engineOpts...)}
}

func (a *Archiver) Archive(ctx context.Context, cameras []camera.Record, duration, interval time.Duration) (Outcome, error) {
	return a.engine.Run(ctx, cameras, RunConfig{
		Concurrency:   a.opts.NumProcesses,
		OutputRoot:    a.opts.ResultsPath,
		DiffThreshold: *a.opts.ImageDifferencePercentage,
		Interval:      interval,
		Duration:      duration,
	})
}
