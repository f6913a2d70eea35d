package videofilter

import (
	"encoding/json"
	"fmt"

	"github.com/tauraamui/camarchive/pkg/archiveerr"
	"github.com/tauraamui/camarchive/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

// Threshold is the minimum percentage of differing pixels a frame needs
// against the last kept frame to be archived. Zero disables filtering.
type Threshold float64

const (
	Disabled         Threshold = 0
	DefaultThreshold Threshold = 90
)

func (t Threshold) Enabled() bool { return t > 0 }

// Of returns a pointer to t, for options where nil means the default.
func Of(t Threshold) *Threshold { return &t }

func (t Threshold) Validate() error {
	if t < 0 || t > 100 {
		return archiveerr.Config(
			archiveerr.InvalidThreshold, "image_difference_percentage",
			fmt.Sprintf("must be between 0 and 100, got %v", float64(t)),
		)
	}
	return nil
}

// UnmarshalJSON accepts a percentage or a bare boolean, where true
// selects the default threshold and false disables filtering.
func (t *Threshold) UnmarshalJSON(b []byte) error {
	var enabled bool
	if err := json.Unmarshal(b, &enabled); err == nil {
		if enabled {
			*t = DefaultThreshold
			return nil
		}
		*t = Disabled
		return nil
	}

	var pct float64
	if err := json.Unmarshal(b, &pct); err != nil {
		return xerror.Errorf("image_difference_percentage must be a number or boolean: %w", err)
	}
	*t = Threshold(pct)
	return nil
}

type Decision int

const (
	Keep Decision = iota
	Discard
)

func (d Decision) String() string {
	if d == Discard {
		return "discard"
	}
	return "keep"
}

// ErrShapeMismatch is returned when two frames cannot be compared.
var ErrShapeMismatch = xerror.NewWithKind("SHAPE_MISMATCH", "frames differ in size or channel count")

// DiffRatio returns the percentage of pixel positions at which a and b
// differ in any channel.
func DiffRatio(a, b *videoframe.Frame) (float64, error) {
	if !a.SameShape(b) {
		return 0, ErrShapeMismatch
	}
	total := a.Width * a.Height
	if total == 0 {
		return 0, nil
	}

	ch := a.Channels
	differing := 0
	for px := 0; px < total; px++ {
		off := px * ch
		for c := 0; c < ch; c++ {
			if a.Pix[off+c] != b.Pix[off+c] {
				differing++
				break
			}
		}
	}
	return float64(differing) / float64(total) * 100, nil
}

// Decide compares current against the last kept frame. A missing
// previous frame, a disabled threshold or an incomparable pair always
// keeps; the ratio is returned for logging when it was computed.
func Decide(previous, current *videoframe.Frame, t Threshold) (Decision, float64, error) {
	if previous == nil || !t.Enabled() {
		return Keep, 0, nil
	}
	ratio, err := DiffRatio(previous, current)
	if err != nil {
		return Keep, 0, err
	}
	if ratio >= float64(t) {
		return Keep, ratio, nil
	}
	return Discard, ratio, nil
}
