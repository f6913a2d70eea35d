// Package directory is a client for a camera directory service which hands
// out camera records in the same shape the archiver consumes.
package directory

import (
	"context"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tauraamui/camarchive/pkg/camera"
	"github.com/tauraamui/camarchive/pkg/log"
	"github.com/tauraamui/xerror"
)

const defaultTimeout = 30 * time.Second

type Config struct {
	BaseURL      string `json:"base_url"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type Query struct {
	City    string
	State   string
	Country string
	Offset  int
	Limit   int
}

func (q Query) params() map[string]string {
	p := map[string]string{}
	if len(q.City) > 0 {
		p["city"] = q.City
	}
	if len(q.State) > 0 {
		p["state"] = q.State
	}
	if len(q.Country) > 0 {
		p["country"] = q.Country
	}
	if q.Offset > 0 {
		p["offset"] = strconv.Itoa(q.Offset)
	}
	if q.Limit > 0 {
		p["limit"] = strconv.Itoa(q.Limit)
	}
	return p
}

type Client struct {
	http  *resty.Client
	cfg   Config
	token string
}

type tokenResponse struct {
	Token string `json:"token"`
}

func New(cfg Config) *Client {
	r := resty.New()
	r.SetBaseURL(cfg.BaseURL)
	r.SetHeader("Accept", "application/json")
	r.SetTimeout(defaultTimeout)

	return &Client{http: r, cfg: cfg}
}

// Authenticate exchanges the client credentials for a bearer token used by
// every later request.
func (c *Client) Authenticate(ctx context.Context) error {
	var resp tokenResponse
	r, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"clientID":     c.cfg.ClientID,
			"clientSecret": c.cfg.ClientSecret,
		}).
		SetResult(&resp).
		Get("/auth")
	if err != nil {
		return xerror.Errorf("unable to reach camera directory: %w", err)
	}
	if r.IsError() {
		return xerror.Errorf("camera directory rejected credentials: %s", r.Status())
	}
	if len(resp.Token) == 0 {
		return xerror.New("camera directory returned no token")
	}

	c.token = resp.Token
	c.http.SetAuthToken(c.token)
	return nil
}

// Search lists cameras matching q. Records the archiver cannot use are
// dropped with a warning rather than failing the whole search.
func (c *Client) Search(ctx context.Context, q Query) ([]camera.Record, error) {
	if len(c.token) == 0 {
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	var found []camera.Record
	r, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(q.params()).
		SetResult(&found).
		Get("/cameras/search")
	if err != nil {
		return nil, xerror.Errorf("unable to search camera directory: %w", err)
	}
	if r.IsError() {
		return nil, xerror.Errorf("camera directory search failed: %s", r.Status())
	}

	records := make([]camera.Record, 0, len(found))
	for _, rec := range found {
		if err := rec.Validate(); err != nil {
			log.Warn("Skipping directory camera %s: %v", rec.ID, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
