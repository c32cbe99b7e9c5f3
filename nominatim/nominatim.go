// Package nominatim geocodes place names to bounding boxes using the Nominatim search API.
package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pdok/asciimap/geo"
	"github.com/pdok/asciimap/httpcache"
	"github.com/perimeterx/marshmallow"
)

const DefaultURL = "https://nominatim.openstreetmap.org/search"

var (
	ErrNotFound        = errors.New("place not found")
	ErrInvalidResponse = errors.New("invalid response from nominatim")
)

// Place is a single search result.
type Place struct {
	PlaceID     int64    `json:"place_id"`
	OsmType     string   `json:"osm_type"`
	OsmID       int64    `json:"osm_id"`
	DisplayName string   `json:"display_name"`
	Class       string   `json:"class"`
	Type        string   `json:"type"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	BoundingBox []string `json:"boundingbox"`

	// Extra holds the fields not mapped above (e.g. importance, address).
	Extra map[string]any `json:"-"`
}

// Box converts the place's bounding box, given by Nominatim as [minLat, maxLat, minLon, maxLon], to a geo.BoundingBox.
// The box is normalized to a square.
func (p Place) Box() (geo.BoundingBox, error) {
	if len(p.BoundingBox) != 4 {
		return geo.BoundingBox{}, fmt.Errorf("%w: bounding box has %d values", ErrInvalidResponse, len(p.BoundingBox))
	}
	var v [4]float64
	for i, s := range p.BoundingBox {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return geo.BoundingBox{}, fmt.Errorf("%w: bounding box value %q: %w", ErrInvalidResponse, s, err)
		}
		v[i] = f
	}
	return geo.New(v[0], v[2], v[1], v[3]), nil
}

type Geocoder struct {
	URL        string
	UserAgent  string
	HTTPClient *http.Client
	Cache      *httpcache.Cache
	Logger     log.Logger
}

func NewGeocoder(baseURL, userAgent string, cache *httpcache.Cache, logger log.Logger) *Geocoder {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Geocoder{
		URL:        baseURL,
		UserAgent:  userAgent,
		HTTPClient: http.DefaultClient,
		Cache:      cache,
		Logger:     logger,
	}
}

// Search returns the bounding box of the best match for place.
func (g *Geocoder) Search(ctx context.Context, place string) (geo.BoundingBox, error) {
	p, err := g.Lookup(ctx, place)
	if err != nil {
		return geo.BoundingBox{}, err
	}
	box, err := p.Box()
	if err != nil {
		return geo.BoundingBox{}, err
	}
	_ = level.Info(g.logger()).Log("msg", "found place", "search", place, "name", p.DisplayName, "bbox", box)
	return box, nil
}

// Lookup returns the best match for place. Responses are cached by search string.
func (g *Geocoder) Lookup(ctx context.Context, place string) (Place, error) {
	body, err := g.Cache.GetOrFetch(ctx, place, func(ctx context.Context) ([]byte, error) {
		return g.get(ctx, place)
	})
	if err != nil {
		return Place{}, err
	}
	return decodeFirst(body, place)
}

func decodeFirst(body []byte, search string) (Place, error) {
	var results []json.RawMessage
	if err := json.Unmarshal(body, &results); err != nil {
		return Place{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if len(results) == 0 {
		return Place{}, fmt.Errorf("%w: %q", ErrNotFound, search)
	}
	var p Place
	extra, err := marshmallow.Unmarshal(results[0], &p, marshmallow.WithExcludeKnownFieldsFromMap(true))
	if err != nil {
		return Place{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	p.Extra = extra
	return p, nil
}

func (g *Geocoder) get(ctx context.Context, place string) ([]byte, error) {
	params := url.Values{}
	params.Set("q", place)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.URL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create nominatim request: %w", err)
	}
	if g.UserAgent != "" {
		req.Header.Set("User-Agent", g.UserAgent)
	}

	_ = level.Debug(g.logger()).Log("msg", "querying nominatim", "url", req.URL)
	resp, err := g.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query nominatim: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read nominatim response: %w", err)
	}
	return body, nil
}

func (g *Geocoder) logger() log.Logger {
	if g.Logger == nil {
		return log.NewNopLogger()
	}
	return g.Logger
}

func (g *Geocoder) httpClient() *http.Client {
	if g.HTTPClient == nil {
		return http.DefaultClient
	}
	return g.HTTPClient
}
