package archive

import (
	"fmt"
	"time"

	"github.com/tauraamui/camarchive/pkg/archiveerr"
	"github.com/tauraamui/camarchive/pkg/video/videofilter"
	"github.com/tauraamui/camarchive/pkg/video/videosource"
)

const (
	DefaultConcurrency = 1
	DefaultOutputRoot  = "results/"
)

// RunConfig is fixed for the lifetime of a run.
type RunConfig struct {
	Concurrency     int
	OutputRoot      string
	DiffThreshold   videofilter.Threshold
	Interval        time.Duration
	Duration        time.Duration
	FetchTimeout    time.Duration
	ProbeByteBudget int64
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		Concurrency:   DefaultConcurrency,
		OutputRoot:    DefaultOutputRoot,
		DiffThreshold: videofilter.DefaultThreshold,
		Interval:      time.Second,
	}
}

func (c RunConfig) Validate() error {
	if c.Concurrency < 1 {
		return archiveerr.Config(archiveerr.InvalidConcurrency, "num_processes", fmt.Sprintf("must be at least 1, got %d", c.Concurrency))
	}
	if len(c.OutputRoot) == 0 {
		return archiveerr.Config(archiveerr.MissingField, "results_path", "output root is required")
	}
	if err := c.DiffThreshold.Validate(); err != nil {
		return err
	}
	if c.Interval <= 0 {
		return archiveerr.Config(archiveerr.InvalidInterval, "interval", fmt.Sprintf("must be positive, got %s", c.Interval))
	}
	if c.Duration < 0 {
		return archiveerr.Config(archiveerr.InvalidInterval, "duration", fmt.Sprintf("must not be negative, got %s", c.Duration))
	}
	if c.FetchTimeout < 0 || (c.FetchTimeout > 0 && c.FetchTimeout >= c.Interval) {
		return archiveerr.Config(
			archiveerr.InvalidInterval, "fetch_timeout",
			fmt.Sprintf("%s must be positive and shorter than the %s interval", c.FetchTimeout, c.Interval),
		)
	}
	return nil
}

// EffectiveFetchTimeout bounds every fetch attempt. Left unset it is the
// smaller of the default timeout and four fifths of the interval.
func (c RunConfig) EffectiveFetchTimeout() time.Duration {
	if c.FetchTimeout > 0 {
		return c.FetchTimeout
	}
	derived := c.Interval * 4 / 5
	if derived <= 0 {
		derived = c.Interval
	}
	if derived < videosource.DefaultFetchTimeout {
		return derived
	}
	return videosource.DefaultFetchTimeout
}

func (c RunConfig) sourceSettings() videosource.Settings {
	return videosource.Settings{
		FetchTimeout:    c.EffectiveFetchTimeout(),
		ProbeByteBudget: c.ProbeByteBudget,
	}
}
