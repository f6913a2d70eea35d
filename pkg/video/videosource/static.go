package videosource

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/tauraamui/camarchive/pkg/archiveerr"
	"github.com/tauraamui/camarchive/pkg/log"
	"github.com/tauraamui/camarchive/pkg/video/videodecode"
	"github.com/tauraamui/camarchive/pkg/video/videoframe"
)

// staticSource serves cameras publishing a snapshot at a fixed URL.
type staticSource struct {
	id       string
	url      string
	client   *resty.Client
	settings Settings
}

func (s *staticSource) CameraID() string { return s.id }

func (s *staticSource) Fetch(ctx context.Context) (*videoframe.Frame, error) {
	ctx, cancel := withTimeout(ctx, s.settings)
	defer cancel()

	resp, err := s.client.R().SetContext(ctx).Get(s.url)
	if err != nil {
		return nil, transportError(ctx, archiveerr.Unreachable, "snapshot request failed", err)
	}
	ts := videoframe.Now()

	if !resp.IsSuccess() {
		return nil, archiveerr.Fetch(archiveerr.BadResponse, fmt.Sprintf("snapshot returned %s", resp.Status()), nil)
	}
	body := resp.Body()
	if len(body) == 0 {
		return nil, archiveerr.Fetch(archiveerr.BadResponse, "snapshot body was empty", nil)
	}

	img, err := videodecode.Still(body)
	if err != nil {
		return nil, archiveerr.Fetch(archiveerr.BadResponse, "snapshot body is not an image", err)
	}
	log.Debug("Camera %s: fetched %d byte snapshot", s.id, len(body))
	return videoframe.FromImage(img, ts), nil
}
