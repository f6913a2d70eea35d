package videoframe_test

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/tauraamui/camarchive/pkg/video/videoframe"
)

func TestFromGrayImageKeepsSingleChannel(t *testing.T) {
	is := is.New(t)

	img := image.NewGray(image.Rect(0, 0, 3, 2))
	img.SetGray(2, 1, color.Gray{Y: 200})
	ts := time.Date(2021, 3, 4, 5, 6, 7, 8000, time.UTC)

	f := videoframe.FromImage(img, ts)
	is.Equal(f.Dimensions(), videoframe.Dimensions{W: 3, H: 2})
	is.Equal(f.Channels, 1)
	is.Equal(len(f.Pix), 6)
	is.Equal(f.Pix[5], uint8(200))
	is.Equal(f.Timestamp, ts)
}

func TestFromSubImageUsesBoundsOrigin(t *testing.T) {
	is := is.New(t)

	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.SetGray(2, 2, color.Gray{Y: 9})
	sub := img.SubImage(image.Rect(2, 2, 4, 4))

	f := videoframe.FromImage(sub, time.Time{})
	is.Equal(f.Dimensions(), videoframe.Dimensions{W: 2, H: 2})
	is.Equal(f.Pix[0], uint8(9))
}

func TestFromColourImageConvertsToNRGBA(t *testing.T) {
	is := is.New(t)

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	f := videoframe.FromImage(img, time.Time{})
	is.Equal(f.Channels, 4)
	is.Equal(f.Pix[4:8], []uint8{10, 20, 30, 255})

	out, ok := f.Image().(*image.NRGBA)
	is.True(ok)
	is.Equal(out.NRGBAAt(1, 0), color.NRGBA{R: 10, G: 20, B: 30, A: 255})
}

func TestSameShape(t *testing.T) {
	is := is.New(t)

	a := videoframe.New(2, 2, 1, time.Time{})
	is.True(a.SameShape(videoframe.New(2, 2, 1, time.Time{})))
	is.True(!a.SameShape(videoframe.New(2, 3, 1, time.Time{})))
	is.True(!a.SameShape(videoframe.New(2, 2, 4, time.Time{})))
}

func TestNowIsMicrosecondUTC(t *testing.T) {
	is := is.New(t)

	ts := videoframe.Now()
	is.Equal(ts.Location(), time.UTC)
	is.Equal(ts.Nanosecond()%1000, 0)
}
