package process

import (
	"context"
	"time"

	"github.com/tauraamui/camarchive/pkg/archiveerr"
	"github.com/tauraamui/camarchive/pkg/log"
	"github.com/tauraamui/camarchive/pkg/video/videofilter"
	"github.com/tauraamui/camarchive/pkg/video/videoframe"
	"github.com/tauraamui/camarchive/pkg/video/videosource"
	"github.com/tauraamui/camarchive/pkg/video/videostorage"
	"golang.org/x/sync/semaphore"
)

type WorkerSettings struct {
	Source    videosource.Source
	Storage   videostorage.Storage
	Threshold videofilter.Threshold
	Interval  time.Duration
	Duration  time.Duration
	Gate      Gate
	Observer  Observer
	// Results receives the worker's snapshot once it stops. It must have
	// room for it, the worker never blocks on publishing.
	Results chan<- Snapshot
}

// sourceState is only ever touched by the worker's own goroutine.
type sourceState struct {
	lastKept *videoframe.Frame
	snapshot Snapshot
}

type sourceWorker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	stopping chan interface{}
	settings WorkerSettings
	id       string
}

// NewSourceWorker builds the process polling one camera: fetch, filter and
// conditionally write, once per interval until duration has elapsed or ctx
// is cancelled.
func NewSourceWorker(ctx context.Context, settings WorkerSettings) Process {
	ctx, cancel := context.WithCancel(ctx)
	if settings.Observer == nil {
		settings.Observer = NopObserver{}
	}
	if settings.Gate == nil {
		settings.Gate = semaphore.NewWeighted(1)
	}
	return &sourceWorker{
		ctx: ctx, cancel: cancel,
		stopping: make(chan interface{}),
		settings: settings,
		id:       settings.Source.CameraID(),
	}
}

func (proc *sourceWorker) Setup() Process { return proc }

func (proc *sourceWorker) Start() {
	go proc.run()
}

func (proc *sourceWorker) Stop() {
	proc.cancel()
}

func (proc *sourceWorker) Wait() {
	<-proc.stopping
}

func (proc *sourceWorker) run() {
	state := sourceState{snapshot: Snapshot{
		CameraID:       proc.id,
		FailuresByKind: map[archiveerr.FetchKind]int{},
		StartedAt:      time.Now(),
	}}
	defer proc.finish(&state)

	log.Info("Camera [%s]: archiving every %s for %s", proc.id, proc.settings.Interval, proc.settings.Duration)
	proc.settings.Observer.WorkerStarted(proc.id)

	start := state.snapshot.StartedAt
	for {
		tickStart := time.Now()
		if proc.tick(&state) {
			state.snapshot.Cancelled = true
			return
		}
		state.snapshot.Ticks++

		next := tickStart.Add(proc.settings.Interval)
		if next.Sub(start) >= proc.settings.Duration {
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-proc.ctx.Done():
			timer.Stop()
			state.snapshot.Cancelled = true
			return
		case <-timer.C:
		}
	}
}

// tick runs a single fetch, filter and write pass. It reports whether the
// worker was cancelled part way through.
func (proc *sourceWorker) tick(state *sourceState) bool {
	if err := proc.settings.Gate.Acquire(proc.ctx, 1); err != nil {
		return true
	}
	proc.settings.Observer.FetchStarted(proc.id)
	frame, err := proc.settings.Source.Fetch(proc.ctx)
	proc.settings.Gate.Release(1)
	proc.settings.Observer.FetchFinished(proc.id, err)

	if err != nil {
		if proc.ctx.Err() != nil {
			return true
		}
		state.snapshot.FetchFailures++
		state.snapshot.LastError = err
		if kind, ok := archiveerr.FetchKindOf(err); ok {
			state.snapshot.FailuresByKind[kind]++
		}
		log.Warn("Camera [%s]: fetch failed: %v", proc.id, err)
		return false
	}

	decision, ratio, err := videofilter.Decide(state.lastKept, frame, proc.settings.Threshold)
	if err != nil {
		log.Warn("Camera [%s]: unable to compare frames, keeping frame: %v", proc.id, err)
	}
	if decision == videofilter.Discard {
		state.snapshot.FramesDiscarded++
		proc.settings.Observer.FrameDiscarded(proc.id)
		log.Debug("Camera [%s]: discarded frame, %.2f%% changed", proc.id, ratio)
		return false
	}

	if proc.ctx.Err() != nil {
		return true
	}
	path, err := proc.settings.Storage.Write(proc.id, frame.Timestamp, frame)
	if err != nil {
		state.snapshot.WriteFailures++
		state.snapshot.LastError = err
		proc.settings.Observer.WriteFailed(proc.id, err)
		log.Warn("Camera [%s]: %v", proc.id, err)
		return false
	}

	state.lastKept = frame
	state.snapshot.FramesKept++
	proc.settings.Observer.FrameKept(proc.id)
	log.Debug("Camera [%s]: kept frame %s", proc.id, path)
	return false
}

func (proc *sourceWorker) finish(state *sourceState) {
	state.snapshot.StoppedAt = time.Now()
	proc.settings.Observer.WorkerStopped(proc.id)
	log.Info(
		"Camera [%s]: stopped after %d ticks, kept %d, discarded %d, %d fetch failures",
		proc.id, state.snapshot.Ticks, state.snapshot.FramesKept,
		state.snapshot.FramesDiscarded, state.snapshot.FetchFailures,
	)
	if proc.settings.Results != nil {
		proc.settings.Results <- state.snapshot
	}
	proc.cancel()
	close(proc.stopping)
}
