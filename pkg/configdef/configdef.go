package configdef

import (
	"errors"
	"fmt"
	"time"

	"github.com/tauraamui/camarchive/pkg/archive"
	"github.com/tauraamui/camarchive/pkg/camera"
	"github.com/tauraamui/camarchive/pkg/camera/directory"
	"github.com/tauraamui/camarchive/pkg/video/videofilter"
	"gopkg.in/dealancer/validate.v2"
)

type Ledger struct {
	Enabled bool `json:"enabled"`
}

type Directory struct {
	directory.Config
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Limit   int    `json:"limit" validate:"gte=0"`
}

func (d Directory) Query() directory.Query {
	return directory.Query{
		City:    d.City,
		State:   d.State,
		Country: d.Country,
		Limit:   d.Limit,
	}
}

type Values struct {
	NumProcesses              int                   `json:"num_processes" validate:"gte=1"`
	ResultsPath               string                `json:"results_path" validate:"empty=false"`
	ImageDifferencePercentage videofilter.Threshold `json:"image_difference_percentage"`
	IntervalSeconds           float64               `json:"interval_seconds" validate:"gte=0"`
	DurationSeconds           float64               `json:"duration_seconds" validate:"gte=0"`
	FetchTimeoutSeconds       float64               `json:"fetch_timeout_seconds" validate:"gte=0"`
	ProbeByteBudget           int64                 `json:"probe_byte_budget" validate:"gte=0"`
	SourceBackend             string                `json:"source_backend"`
	MetricsAddress            string                `json:"metrics_address"`
	Ledger                    Ledger                `json:"ledger"`
	Directory                 *Directory            `json:"directory,omitempty"`
	Cameras                   []camera.Record       `json:"cameras"`
}

// RunValidate checks struct tags first, then the rules tags cannot express.
func (v Values) RunValidate() error {
	if err := validate.Validate(&v); err != nil {
		return err
	}
	return v.Validate()
}

func (v Values) Validate() error {
	const validationErrorHeader = "validation failed: %w"
	if HasDupCameraIDs(v.Cameras) {
		return fmt.Errorf(validationErrorHeader, errors.New("camera ids must be unique"))
	}
	if err := v.ImageDifferencePercentage.Validate(); err != nil {
		return fmt.Errorf(validationErrorHeader, err)
	}
	return nil
}

// RunConfig converts the file's second based fields into a run config.
func (v Values) RunConfig() archive.RunConfig {
	return archive.RunConfig{
		Concurrency:     v.NumProcesses,
		OutputRoot:      v.ResultsPath,
		DiffThreshold:   v.ImageDifferencePercentage,
		Interval:        seconds(v.IntervalSeconds),
		Duration:        seconds(v.DurationSeconds),
		FetchTimeout:    seconds(v.FetchTimeoutSeconds),
		ProbeByteBudget: v.ProbeByteBudget,
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func HasDupCameraIDs(cameras []camera.Record) bool {
	seen := make(map[string]struct{}, len(cameras))
	for _, cam := range cameras {
		if _, ok := seen[cam.ID]; ok {
			return true
		}
		seen[cam.ID] = struct{}{}
	}
	return false
}
