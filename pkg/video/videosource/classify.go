package videosource

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/tauraamui/camarchive/pkg/archiveerr"
	"github.com/tauraamui/xerror"
)

// transportError maps a failed request to a fetch error, reporting any
// exhausted deadline as a timeout and everything else as kind.
func transportError(ctx context.Context, kind archiveerr.FetchKind, msg string, err error) error {
	if isTimeout(ctx, err) {
		return archiveerr.Fetch(archiveerr.Timeout, msg, err)
	}
	return archiveerr.Fetch(kind, msg, err)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// finalURL is the URL the response was actually served from, after any
// redirects, so relative references resolve against the right base.
func finalURL(resp *resty.Response, requested string) (*url.URL, error) {
	if resp != nil && resp.RawResponse != nil && resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		return resp.RawResponse.Request.URL, nil
	}
	u, err := url.Parse(requested)
	if err != nil {
		return nil, xerror.Errorf("invalid url %s: %w", requested, err)
	}
	return u, nil
}

func resolveReference(base *url.URL, ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", xerror.Errorf("invalid reference %s: %w", ref, err)
	}
	return base.ResolveReference(r).String(), nil
}
