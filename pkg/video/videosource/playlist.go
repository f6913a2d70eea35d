package videosource

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/grafov/m3u8"
	"github.com/tauraamui/camarchive/pkg/archiveerr"
	"github.com/tauraamui/camarchive/pkg/log"
	"github.com/tauraamui/camarchive/pkg/video/videoframe"
)

const maxManifestDepth = 2

// playlistSource resolves the newest media segment of an HLS stream and
// decodes its first frame.
type playlistSource struct {
	id          string
	manifestURL string
	client      *resty.Client
	settings    Settings
}

func (p *playlistSource) CameraID() string { return p.id }

func (p *playlistSource) Fetch(ctx context.Context) (*videoframe.Frame, error) {
	ctx, cancel := withTimeout(ctx, p.settings)
	defer cancel()

	segmentURL, err := p.resolveSegment(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("Camera %s: resolved segment %s", p.id, segmentURL)

	resp, err := p.client.R().SetContext(ctx).Get(segmentURL)
	if err != nil {
		return nil, transportError(ctx, archiveerr.SegmentUnavailable, "segment request failed", err)
	}
	ts := videoframe.Now()
	if !resp.IsSuccess() {
		return nil, archiveerr.Fetch(archiveerr.SegmentUnavailable, fmt.Sprintf("segment returned %s", resp.Status()), nil)
	}
	if len(resp.Body()) == 0 {
		return nil, archiveerr.Fetch(archiveerr.SegmentUnavailable, "segment body was empty", nil)
	}

	img, err := p.settings.Decoder.DecodeFirstFrame(ctx, resp.Body())
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, archiveerr.Fetch(archiveerr.Timeout, "segment decode exceeded fetch timeout", err)
		}
		return nil, archiveerr.Fetch(archiveerr.BadResponse, "segment has no decodable frame", err)
	}
	return videoframe.FromImage(img, ts), nil
}

// resolveSegment walks from the configured manifest, through the first
// variant of a master playlist, to the last segment of a media playlist.
func (p *playlistSource) resolveSegment(ctx context.Context) (string, error) {
	manifestURL := p.manifestURL
	for depth := 0; depth < maxManifestDepth; depth++ {
		resp, err := p.client.R().SetContext(ctx).Get(manifestURL)
		if err != nil {
			return "", transportError(ctx, archiveerr.ManifestUnavailable, "manifest request failed", err)
		}
		if !resp.IsSuccess() {
			return "", archiveerr.Fetch(archiveerr.ManifestUnavailable, fmt.Sprintf("manifest returned %s", resp.Status()), nil)
		}

		base, err := finalURL(resp, manifestURL)
		if err != nil {
			return "", archiveerr.Fetch(archiveerr.ManifestUnavailable, "manifest url is invalid", err)
		}

		playlist, listType, err := m3u8.DecodeFrom(bytes.NewReader(resp.Body()), false)
		if err != nil {
			return "", archiveerr.Fetch(archiveerr.ManifestUnavailable, "manifest could not be parsed", err)
		}

		switch listType {
		case m3u8.MASTER:
			master := playlist.(*m3u8.MasterPlaylist)
			if len(master.Variants) == 0 || master.Variants[0] == nil {
				return "", archiveerr.Fetch(archiveerr.ManifestUnavailable, "master playlist has no variants", nil)
			}
			manifestURL, err = resolveReference(base, master.Variants[0].URI)
			if err != nil {
				return "", archiveerr.Fetch(archiveerr.ManifestUnavailable, "variant uri is invalid", err)
			}
		case m3u8.MEDIA:
			segment := lastSegment(playlist.(*m3u8.MediaPlaylist))
			if segment == nil {
				return "", archiveerr.Fetch(archiveerr.ManifestUnavailable, "playlist has no segments", nil)
			}
			segmentURL, err := resolveReference(base, segment.URI)
			if err != nil {
				return "", archiveerr.Fetch(archiveerr.ManifestUnavailable, "segment uri is invalid", err)
			}
			return segmentURL, nil
		default:
			return "", archiveerr.Fetch(archiveerr.ManifestUnavailable, "unrecognised playlist type", nil)
		}
	}
	return "", archiveerr.Fetch(archiveerr.ManifestUnavailable, "master playlists nested too deeply", nil)
}

func lastSegment(media *m3u8.MediaPlaylist) *m3u8.MediaSegment {
	var last *m3u8.MediaSegment
	for _, seg := range media.Segments {
		if seg != nil {
			last = seg
		}
	}
	return last
}
