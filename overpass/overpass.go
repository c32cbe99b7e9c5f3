// Package overpass fetches raw vector data from an Overpass API instance.
package overpass

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pdok/asciimap/httpcache"
	"github.com/perimeterx/marshmallow"
)

const DefaultURL = "https://overpass-api.de/api/interpreter"

var (
	// ErrStatus is returned when the server answers with anything but 200 OK.
	ErrStatus = errors.New("unexpected status from overpass")
	// ErrRemark is returned when the server answers 200 OK but reports a runtime error (e.g. a timeout) in its remark.
	ErrRemark = errors.New("overpass reported an error")
)

// envelope is the part of an Overpass JSON response that is checked before handing it over.
type envelope struct {
	Version   float64 `json:"version"`
	Generator string  `json:"generator"`
	Remark    string  `json:"remark"`
}

type Client struct {
	URL        string
	UserAgent  string
	HTTPClient *http.Client
	Cache      *httpcache.Cache
	Logger     log.Logger
}

func NewClient(baseURL, userAgent string, cache *httpcache.Cache, logger log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Client{
		URL:        baseURL,
		UserAgent:  userAgent,
		HTTPClient: http.DefaultClient,
		Cache:      cache,
		Logger:     logger,
	}
}

// Fetch runs q and returns the raw JSON response. Responses are cached by query text.
func (c *Client) Fetch(ctx context.Context, q Query) ([]byte, error) {
	text := q.Text(false)
	return c.Cache.GetOrFetch(ctx, text, func(ctx context.Context) ([]byte, error) {
		return c.post(ctx, text)
	})
}

func (c *Client) post(ctx context.Context, text string) ([]byte, error) {
	data := url.Values{}
	data.Set("data", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	_ = level.Debug(c.logger()).Log("msg", "querying overpass", "url", c.URL, "query", text)
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query overpass: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read overpass response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	var env envelope
	if _, err = marshmallow.Unmarshal(body, &env, marshmallow.WithExcludeKnownFieldsFromMap(true)); err != nil {
		return nil, fmt.Errorf("failed to decode overpass response: %w", err)
	}
	if env.Remark != "" {
		if strings.Contains(env.Remark, "error") {
			return nil, fmt.Errorf("%w: %s", ErrRemark, env.Remark)
		}
		_ = level.Warn(c.logger()).Log("msg", "overpass remark", "remark", env.Remark)
	}
	_ = level.Info(c.logger()).Log("msg", "fetched vector data", "bytes", len(body), "generator", env.Generator)
	return body, nil
}

func (c *Client) logger() log.Logger {
	if c.Logger == nil {
		return log.NewNopLogger()
	}
	return c.Logger
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}
