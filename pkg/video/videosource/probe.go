package videosource

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tauraamui/camarchive/pkg/archiveerr"
	"github.com/tauraamui/camarchive/pkg/video/videodecode"
	"github.com/tauraamui/camarchive/pkg/video/videoframe"
)

// probeSource reads from a device port which may answer with a still
// image or an endless progressive stream. Only the first frame is read.
type probeSource struct {
	id       string
	url      string
	client   *resty.Client
	settings Settings
}

func (p *probeSource) CameraID() string { return p.id }

func (p *probeSource) Fetch(ctx context.Context) (*videoframe.Frame, error) {
	ctx, cancel := withTimeout(ctx, p.settings)
	defer cancel()

	resp, err := p.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(p.url)
	if err != nil {
		return nil, transportError(ctx, archiveerr.Unreachable, fmt.Sprintf("probe of %s failed", p.url), err)
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		return nil, archiveerr.Fetch(archiveerr.BadResponse, fmt.Sprintf("probe returned %s", resp.Status()), nil)
	}

	budget := &io.LimitedReader{R: body, N: p.settings.ProbeByteBudget}
	img, err := firstFrame(resp.Header().Get("Content-Type"), budget)
	if err == nil {
		return videoframe.FromImage(img, videoframe.Now()), nil
	}

	switch {
	case isTimeout(ctx, err):
		return nil, archiveerr.Fetch(archiveerr.Incomplete, "no complete frame within time budget", err)
	case budget.N <= 0:
		return nil, archiveerr.Fetch(archiveerr.Incomplete, fmt.Sprintf("no complete frame within %d bytes", p.settings.ProbeByteBudget), err)
	case errors.Is(err, videodecode.ErrUndecodable):
		return nil, archiveerr.Fetch(archiveerr.BadResponse, "probe response is not an image", err)
	}
	return nil, archiveerr.Fetch(archiveerr.Incomplete, "probe stream ended before a complete frame", err)
}

// firstFrame takes the first part of an MJPEG multipart body, otherwise it
// scans the raw body.
func firstFrame(contentType string, r io.Reader) (image.Image, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") || len(params["boundary"]) == 0 {
		return videodecode.FirstFrame(r)
	}

	// cameras commonly repeat the delimiter dashes in the parameter
	mr := multipart.NewReader(r, strings.TrimPrefix(params["boundary"], "--"))
	part, err := mr.NextPart()
	if err != nil {
		return nil, err
	}
	defer part.Close()
	return videodecode.FirstFrame(part)
}
