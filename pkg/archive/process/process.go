package process

import (
	"context"
)

type Process interface {
	Setup() Process
	Start()
	Stop()
	Wait()
}

// Gate bounds how many fetches may be in flight across every worker of a
// run. A *semaphore.Weighted satisfies it.
type Gate interface {
	Acquire(ctx context.Context, n int64) error
	Release(n int64)
}

// Observer is told about every worker event, typically to feed metrics.
// Implementations must be safe for concurrent use.
type Observer interface {
	WorkerStarted(cameraID string)
	WorkerStopped(cameraID string)
	FetchStarted(cameraID string)
	FetchFinished(cameraID string, err error)
	FrameKept(cameraID string)
	FrameDiscarded(cameraID string)
	WriteFailed(cameraID string, err error)
}

type NopObserver struct{}

func (NopObserver) WorkerStarted(string)        {}
func (NopObserver) WorkerStopped(string)        {}
func (NopObserver) FetchStarted(string)         {}
func (NopObserver) FetchFinished(string, error) {}
func (NopObserver) FrameKept(string)            {}
func (NopObserver) FrameDiscarded(string)       {}
func (NopObserver) WriteFailed(string, error)   {}
