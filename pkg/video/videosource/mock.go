package videosource

import (
	"context"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/tauraamui/camarchive/pkg/camera"
	"github.com/tauraamui/camarchive/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/font/gofont/gomono"
)

const (
	testCardWidth  = 600
	testCardHeight = 400
	stampLayout    = "2006-01-02 15:04:05.000000"
)

// colour bars across the top of the card, left to right
var testCardBars = []color.RGBA{
	{192, 192, 192, 255},
	{192, 192, 0, 255},
	{0, 192, 192, 255},
	{0, 192, 0, 255},
	{192, 0, 192, 255},
	{192, 0, 0, 255},
	{0, 0, 192, 255},
}

// mockBackend renders a test card per camera instead of touching the
// network, so runs can be dry-run without any cameras reachable.
type mockBackend struct{}

func (b *mockBackend) New(rec camera.Record, s Settings) (Source, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &mockSource{id: rec.ID}, nil
}

type mockSource struct {
	id   string
	once sync.Once
	card *testCard
}

func (m *mockSource) CameraID() string { return m.id }

func (m *mockSource) Fetch(ctx context.Context) (*videoframe.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.once.Do(func() { m.card = newTestCard(m.id, testCardWidth, testCardHeight) })

	ts := videoframe.Now()
	img, err := m.card.stamped(ts.Format(stampLayout))
	if err != nil {
		return nil, err
	}
	return videoframe.FromImage(img, ts), nil
}

// testCard holds a pre-rendered background; each fetch copies it and
// writes the capture time into the caption band.
type testCard struct {
	label string
	bg    *image.RGBA
	band  image.Rectangle
}

func newTestCard(cameraID string, width, height int) *testCard {
	bg := image.NewRGBA(image.Rect(0, 0, width, height))
	bandTop := height * 2 / 3
	barWidth := (width + len(testCardBars) - 1) / len(testCardBars)
	tint := cameraTint(cameraID)

	for i, bar := range testCardBars {
		r := image.Rect(i*barWidth, 0, (i+1)*barWidth, bandTop).Intersect(bg.Bounds())
		draw.Draw(bg, r, image.NewUniform(blend(bar, tint)), image.Point{}, draw.Src)
	}
	band := image.Rect(0, bandTop, width, height)
	draw.Draw(bg, band, image.NewUniform(color.RGBA{16, 16, 16, 255}), image.Point{}, draw.Src)

	return &testCard{label: "camera " + cameraID, bg: bg, band: band}
}

// cameraTint gives each camera id a stable colour so cards from
// different cameras never compare as unchanged.
func cameraTint(cameraID string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(cameraID))
	sum := h.Sum32()
	return color.RGBA{uint8(sum), uint8(sum >> 8), uint8(sum >> 16), 255}
}

func blend(a, b color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8((3*uint16(a.R) + uint16(b.R)) / 4),
		G: uint8((3*uint16(a.G) + uint16(b.G)) / 4),
		B: uint8((3*uint16(a.B) + uint16(b.B)) / 4),
		A: 255,
	}
}

func (c *testCard) stamped(stamp string) (*image.RGBA, error) {
	out := image.NewRGBA(c.bg.Bounds())
	draw.Draw(out, out.Bounds(), c.bg, image.Point{}, draw.Src)

	lineHeight := c.band.Dy() / 2
	for i, text := range []string{c.label, stamp} {
		baseline := c.band.Min.Y + (i+1)*lineHeight - lineHeight/4
		if err := writeCaption(out, c.band, 12, baseline, text); err != nil {
			return nil, xerror.Errorf("unable to draw text onto test card: %w", err)
		}
	}
	return out, nil
}

var (
	captionFontOnce sync.Once
	captionFont     *truetype.Font
	captionFontErr  error
)

func writeCaption(dst *image.RGBA, clip image.Rectangle, x, y int, text string) error {
	captionFontOnce.Do(func() { captionFont, captionFontErr = freetype.ParseFont(gomono.TTF) })
	if captionFontErr != nil {
		return captionFontErr
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(captionFont)
	ctx.SetFontSize(float64(clip.Dy()) / 5)
	ctx.SetClip(clip)
	ctx.SetDst(dst)
	ctx.SetSrc(image.White)
	_, err := ctx.DrawString(text, freetype.Pt(x, y))
	return err
}
