package videosource_test

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 128, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	buf := bytes.Buffer{}
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	buf := bytes.Buffer{}
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h), nil))
	return buf.Bytes()
}

type testSegment struct {
	Path     string
	Duration float64
}

func buildLivePlaylist(segments []testSegment) string {
	var b strings.Builder

	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")

	if len(segments) == 0 {
		b.WriteString("#EXT-X-TARGETDURATION:1\n")
		b.WriteString("#EXT-X-MEDIA-SEQUENCE:0\n")
		return b.String()
	}

	target := 0
	for _, seg := range segments {
		if d := int(seg.Duration + 0.999); d > target {
			target = d
		}
	}
	b.WriteString(fmt.Sprintf("#EXT-X-TARGETDURATION:%d\n", target))
	b.WriteString("#EXT-X-MEDIA-SEQUENCE:0\n\n")

	for _, seg := range segments {
		b.WriteString(fmt.Sprintf("#EXTINF:%.1f,\n", seg.Duration))
		b.WriteString(seg.Path)
		b.WriteString("\n")
	}
	return b.String()
}

func buildMasterPlaylist(variants ...string) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for i, v := range variants {
		b.WriteString(fmt.Sprintf("#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=%d\n", (i+1)*1000000))
		b.WriteString(v)
		b.WriteString("\n")
	}
	return b.String()
}
