package videosource

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tauraamui/camarchive/pkg/archiveerr"
	"github.com/tauraamui/camarchive/pkg/camera"
	"github.com/tauraamui/camarchive/pkg/video/videodecode"
	"github.com/tauraamui/camarchive/pkg/video/videoframe"
)

const (
	DefaultFetchTimeout    = 5 * time.Second
	DefaultProbeByteBudget = 8 << 20
	userAgent              = "camarchive"
)

// Source fetches a single current frame from one camera. No retries are
// made within a call.
type Source interface {
	CameraID() string
	Fetch(ctx context.Context) (*videoframe.Frame, error)
}

type Settings struct {
	FetchTimeout    time.Duration
	ProbeByteBudget int64
	Decoder         videodecode.SegmentDecoder
}

func (s Settings) withDefaults() Settings {
	if s.FetchTimeout <= 0 {
		s.FetchTimeout = DefaultFetchTimeout
	}
	if s.ProbeByteBudget <= 0 {
		s.ProbeByteBudget = DefaultProbeByteBudget
	}
	if s.Decoder == nil {
		s.Decoder = videodecode.DefaultChain()
	}
	return s
}

type Backend interface {
	New(camera.Record, Settings) (Source, error)
}

func Default() Backend {
	return &httpBackend{client: newClient()}
}

func Mock() Backend {
	return &mockBackend{}
}

func Resolve(t string) Backend {
	switch t {
	case "mock":
		return Mock()
	default:
		return Default()
	}
}

// New validates rec and builds the source for its kind.
func New(rec camera.Record, s Settings) (Source, error) {
	return Default().New(rec, s)
}

type httpBackend struct {
	client *resty.Client
}

func (b *httpBackend) New(rec camera.Record, s Settings) (Source, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	s = s.withDefaults()

	switch rec.Kind {
	case camera.StaticURL:
		return &staticSource{id: rec.ID, url: rec.SnapshotURL, client: b.client, settings: s}, nil
	case camera.PortProbe:
		return &probeSource{id: rec.ID, url: rec.ProbeURL(), client: b.client, settings: s}, nil
	case camera.PlaylistStream:
		return &playlistSource{id: rec.ID, manifestURL: rec.ManifestURL, client: b.client, settings: s}, nil
	}
	return nil, archiveerr.Config(archiveerr.UnknownKind, "camera_type", string(rec.Kind))
}

// newClient is shared by every source of a backend so connections to the
// same host are pooled.
func newClient() *resty.Client {
	r := resty.New()
	r.SetHeader("User-Agent", userAgent)
	r.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	return r
}

func withTimeout(ctx context.Context, s Settings) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.FetchTimeout)
}
