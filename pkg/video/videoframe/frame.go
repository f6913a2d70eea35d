package videoframe

import (
	"image"
	"image/draw"
	"time"
)

type Dimensions struct {
	W, H int
}

// Frame is a decoded raster held row-major with a fixed channel count,
// one channel for grayscale sources and four (NRGBA) for everything else.
type Frame struct {
	Width, Height int
	Channels      int
	Pix           []uint8
	Timestamp     time.Time
}

// Now is the capture clock, truncated to microseconds so timestamps
// survive being encoded into frame file names.
var Now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func New(w, h, channels int, ts time.Time) *Frame {
	return &Frame{
		Width: w, Height: h, Channels: channels,
		Pix:       make([]uint8, w*h*channels),
		Timestamp: ts,
	}
}

func FromImage(img image.Image, ts time.Time) *Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if gray, ok := img.(*image.Gray); ok {
		f := New(w, h, 1, ts)
		for y := 0; y < h; y++ {
			off := gray.PixOffset(b.Min.X, b.Min.Y+y)
			copy(f.Pix[y*w:(y+1)*w], gray.Pix[off:off+w])
		}
		return f
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &Frame{Width: w, Height: h, Channels: 4, Pix: dst.Pix, Timestamp: ts}
}

func (f *Frame) Dimensions() Dimensions {
	return Dimensions{W: f.Width, H: f.Height}
}

// SameShape reports whether two frames can be compared pixel for pixel.
func (f *Frame) SameShape(o *Frame) bool {
	return f.Width == o.Width && f.Height == o.Height && f.Channels == o.Channels
}

func (f *Frame) Image() image.Image {
	rect := image.Rect(0, 0, f.Width, f.Height)
	if f.Channels == 1 {
		return &image.Gray{Pix: f.Pix, Stride: f.Width, Rect: rect}
	}
	return &image.NRGBA{Pix: f.Pix, Stride: f.Width * 4, Rect: rect}
}
