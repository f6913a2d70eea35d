package videodecode

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"io"

	// registered still image formats
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tauraamui/xerror"
)

var ErrUndecodable = errors.New("no decodable frame in data")

var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}
)

const readChunkSize = 32 * 1024

// Still decodes data as a single still image in any registered format.
func Still(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrUndecodable
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, xerror.Errorf("%w: %v", ErrUndecodable, err)
	}
	return img, nil
}

// FirstJPEG finds the first complete JPEG in data, trying each end of
// image marker in turn since embedded thumbnails carry their own.
func FirstJPEG(data []byte) (image.Image, bool) {
	start := bytes.Index(data, jpegSOI)
	if start < 0 {
		return nil, false
	}
	img, _, ok := firstJPEGFrom(data, start, start+len(jpegSOI))
	return img, ok
}

// firstJPEGFrom tries each end marker after searchFrom and reports where
// a later call should resume once more data has arrived.
func firstJPEGFrom(data []byte, start, searchFrom int) (image.Image, int, bool) {
	for searchFrom < len(data) {
		i := bytes.Index(data[searchFrom:], jpegEOI)
		if i < 0 {
			break
		}
		end := searchFrom + i + len(jpegEOI)
		if img, err := jpeg.Decode(bytes.NewReader(data[start:end])); err == nil {
			return img, end, true
		}
		searchFrom = end
	}
	return nil, resumeFrom(data, searchFrom, jpegEOI), false
}

// resumeFrom keeps the tail of data that could hold the first half of a
// marker split across reads.
func resumeFrom(data []byte, from int, marker []byte) int {
	tail := len(data) - len(marker) + 1
	if tail < from {
		return from
	}
	return tail
}

// FirstFrame reads r incrementally and returns as soon as a frame is
// decodable, either the first JPEG in a progressive stream or, once r is
// exhausted, the whole body as a still image. Bytes already scanned are
// not scanned again as the buffer grows.
func FirstFrame(r io.Reader) (image.Image, error) {
	var buf []byte
	chunk := make([]byte, readChunkSize)
	start, soiFrom, eoiFrom := -1, 0, 0
	for {
		n, err := r.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if n > 0 {
			if start < 0 {
				if i := bytes.Index(buf[soiFrom:], jpegSOI); i >= 0 {
					start = soiFrom + i
					eoiFrom = start + len(jpegSOI)
				} else {
					soiFrom = resumeFrom(buf, soiFrom, jpegSOI)
				}
			}
			if start >= 0 {
				img, next, ok := firstJPEGFrom(buf, start, eoiFrom)
				if ok {
					return img, nil
				}
				eoiFrom = next
			}
		}
		if errors.Is(err, io.EOF) {
			return Still(buf)
		}
		if err != nil {
			return nil, err
		}
	}
}

// SegmentDecoder pulls the first frame out of a fetched media segment.
type SegmentDecoder interface {
	DecodeFirstFrame(ctx context.Context, data []byte) (image.Image, error)
}

type StillDecoder struct{}

func (StillDecoder) DecodeFirstFrame(_ context.Context, data []byte) (image.Image, error) {
	return Still(data)
}

// MJPEGDecoder handles segments made of concatenated JPEG frames.
type MJPEGDecoder struct{}

func (MJPEGDecoder) DecodeFirstFrame(_ context.Context, data []byte) (image.Image, error) {
	if img, ok := FirstJPEG(data); ok {
		return img, nil
	}
	return nil, ErrUndecodable
}

// Chain tries each decoder in order and returns the first frame produced.
type Chain []SegmentDecoder

func DefaultChain() Chain {
	return Chain{StillDecoder{}, MJPEGDecoder{}}
}

func (c Chain) With(d SegmentDecoder) Chain {
	out := make(Chain, 0, len(c)+1)
	out = append(out, c...)
	return append(out, d)
}

func (c Chain) DecodeFirstFrame(ctx context.Context, data []byte) (image.Image, error) {
	var errs []error
	for _, d := range c {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := d.DecodeFirstFrame(ctx, data)
		if err == nil {
			return img, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrUndecodable
	}
	return nil, xerror.Errorf("%w: tried %d decoders, last error: %v", ErrUndecodable, len(errs), errs[len(errs)-1])
}
