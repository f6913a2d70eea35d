package videostorage

import (
	"fmt"
	"image/png"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/tauraamui/camarchive/pkg/video/videoframe"
)

const timestampLayout = "2006-01-02_15-04-05"

var ErrEmptyFrame = errors.New("frame has no pixels")

// FormatTimestamp renders ts in UTC as YYYY-MM-DD_HH-MM-SS-micro.
func FormatTimestamp(ts time.Time) string {
	ts = ts.UTC()
	return fmt.Sprintf("%s-%06d", ts.Format(timestampLayout), ts.Nanosecond()/int(time.Microsecond))
}

func ParseTimestamp(s string) (time.Time, error) {
	i := strings.LastIndex(s, "-")
	if i < 0 || len(s)-i-1 != 6 {
		return time.Time{}, errors.Errorf("malformed frame timestamp: %s", s)
	}
	ts, err := time.ParseInLocation(timestampLayout, s[:i], time.UTC)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "malformed frame timestamp: %s", s)
	}
	micro, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "malformed frame timestamp: %s", s)
	}
	return ts.Add(time.Duration(micro) * time.Microsecond), nil
}

// ReadFrame decodes a previously written frame, recovering its capture
// time from the file name.
func ReadFrame(fs afero.Fs, path string) (*videoframe.Frame, error) {
	name := filepath.Base(path)
	if filepath.Ext(name) != frameExt {
		return nil, errors.Errorf("not a frame file: %s", path)
	}
	ts, err := ParseTimestamp(strings.TrimSuffix(name, frameExt))
	if err != nil {
		return nil, err
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to decode frame %s", path)
	}
	return videoframe.FromImage(img, ts), nil
}

// ListFrames returns the frame files written for cameraID, oldest first.
func ListFrames(fs afero.Fs, root, cameraID string) ([]string, error) {
	matches, err := afero.Glob(fs, filepath.Join(root, cameraID, "*"+frameExt))
	if err != nil {
		return nil, err
	}
	return matches, nil
}
