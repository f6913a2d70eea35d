// Package opencvdecode decodes compressed video segments (H.264 transport
// streams and the like) through OpenCV. It needs the OpenCV shared
// libraries at runtime so only the binary links it into the decoder chain.
package opencvdecode

import (
	"context"
	"image"

	"github.com/spf13/afero"
	"github.com/tauraamui/camarchive/pkg/video/videodecode"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

var fs afero.Fs = afero.NewOsFs()

type Decoder struct{}

func New() Decoder {
	return Decoder{}
}

type decodeResult struct {
	img image.Image
	err error
}

// DecodeFirstFrame spools the segment to a temp file, OpenCV only opens
// containers by name, and reads its first frame.
func (d Decoder) DecodeFirstFrame(ctx context.Context, data []byte) (image.Image, error) {
	tmp, err := afero.TempFile(fs, "", "camarchive-segment-*.ts")
	if err != nil {
		return nil, xerror.Errorf("unable to spool segment: %w", err)
	}
	name := tmp.Name()

	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fs.Remove(name)
		return nil, xerror.Errorf("unable to spool segment: %w", err)
	}

	// the spool file outlives a cancelled call until OpenCV lets go of it
	result := make(chan decodeResult, 1)
	go func() {
		defer fs.Remove(name)
		img, err := readFirstFrame(name)
		result <- decodeResult{img, err}
	}()

	select {
	case r := <-result:
		return r.img, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func readFirstFrame(name string) (image.Image, error) {
	vc, err := gocv.VideoCaptureFile(name)
	if err != nil {
		return nil, xerror.Errorf("%w: %v", videodecode.ErrUndecodable, err)
	}
	defer vc.Close()

	mat := gocv.NewMat()
	defer mat.Close()

	if ok := vc.Read(&mat); !ok || mat.Empty() {
		return nil, videodecode.ErrUndecodable
	}
	img, err := mat.ToImage()
	if err != nil {
		return nil, xerror.Errorf("unable to convert OpenCV mat into Go image: %w", err)
	}
	return img, nil
}
