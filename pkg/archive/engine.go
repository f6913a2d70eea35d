package archive

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/tauraamui/camarchive/pkg/archive/process"
	"github.com/tauraamui/camarchive/pkg/archiveerr"
	"github.com/tauraamui/camarchive/pkg/camera"
	"github.com/tauraamui/camarchive/pkg/log"
	"github.com/tauraamui/camarchive/pkg/video/videodecode"
	"github.com/tauraamui/camarchive/pkg/video/videosource"
	"github.com/tauraamui/camarchive/pkg/video/videostorage"
	"golang.org/x/sync/semaphore"
)

type Engine struct {
	backend  videosource.Backend
	fs       afero.Fs
	decoder  videodecode.SegmentDecoder
	observer process.Observer
}

type Option func(*Engine)

func WithBackend(b videosource.Backend) Option {
	return func(e *Engine) { e.backend = b }
}

func WithFs(fs afero.Fs) Option {
	return func(e *Engine) { e.fs = fs }
}

// WithDecoder replaces the chain used to decode playlist segments.
func WithDecoder(d videodecode.SegmentDecoder) Option {
	return func(e *Engine) { e.decoder = d }
}

func WithObserver(o process.Observer) Option {
	return func(e *Engine) { e.observer = o }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		fs:       afero.NewOsFs(),
		decoder:  videodecode.DefaultChain(),
		observer: process.NopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.backend == nil {
		e.backend = videosource.Default()
	}
	return e
}

// Run archives every valid camera until cfg.Duration has elapsed or ctx is
// cancelled. Only an invalid cfg is returned as an error, per camera
// failures are reported in the outcome.
func (e *Engine) Run(ctx context.Context, cameras []camera.Record, cfg RunConfig) (Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Sources:   map[string]SourceOutcome{},
	}

	sources, rejected := e.buildSources(cameras, cfg)
	outcome.Rejected = rejected
	if len(sources) == 0 {
		log.Warn("No cameras to archive")
		outcome.FinishedAt = time.Now()
		return outcome, nil
	}

	storage := videostorage.NewStorage(e.fs, cfg.OutputRoot)
	gate := semaphore.NewWeighted(int64(cfg.Concurrency))
	results := make(chan process.Snapshot, len(sources))

	log.Info(
		"Archiving %d cameras to %s, %d fetches at a time, threshold %.0f%%",
		len(sources), cfg.OutputRoot, cfg.Concurrency, float64(cfg.DiffThreshold),
	)

	wg := sync.WaitGroup{}
	for _, src := range sources {
		worker := process.NewSourceWorker(ctx, process.WorkerSettings{
			Source:    src,
			Storage:   storage,
			Threshold: cfg.DiffThreshold,
			Interval:  cfg.Interval,
			Duration:  cfg.Duration,
			Gate:      gate,
			Observer:  e.observer,
			Results:   results,
		}).Setup()
		worker.Start()

		wg.Add(1)
		go func(p process.Process) {
			defer wg.Done()
			p.Wait()
		}(worker)
	}
	wg.Wait()
	close(results)

	for snapshot := range results {
		outcome.Sources[snapshot.CameraID] = snapshot
	}
	outcome.FinishedAt = time.Now()

	totals := outcome.Totals()
	log.Info(
		"Run %s finished: %d cameras, %d frames kept, %d discarded, %d fetch failures, %d write failures",
		outcome.RunID, len(outcome.Sources), totals.FramesKept, totals.FramesDiscarded,
		totals.FetchFailures, totals.WriteFailures,
	)
	return outcome, nil
}

func (e *Engine) buildSources(cameras []camera.Record, cfg RunConfig) ([]videosource.Source, []Rejection) {
	settings := cfg.sourceSettings()
	settings.Decoder = e.decoder

	var (
		sources  []videosource.Source
		rejected []Rejection
		seen     = map[string]struct{}{}
	)
	for _, rec := range cameras {
		if _, dup := seen[rec.ID]; dup {
			err := archiveerr.Config(archiveerr.DuplicateID, "cameraID", fmt.Sprintf("%s is used by more than one camera", rec.ID))
			log.Error("Rejecting camera %s: %v", rec, err)
			rejected = append(rejected, Rejection{Record: rec, Err: err})
			continue
		}

		src, err := e.backend.New(rec, settings)
		if err != nil {
			log.Error("Rejecting camera %s: %v", rec, err)
			rejected = append(rejected, Rejection{Record: rec, Err: err})
			continue
		}
		seen[rec.ID] = struct{}{}
		sources = append(sources, src)
	}
	return sources, rejected
}
