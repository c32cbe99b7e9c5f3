package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/iancoleman/strcase"
	"github.com/pdok/asciimap/config"
	"github.com/pdok/asciimap/geo"
	"github.com/pdok/asciimap/httpcache"
	"github.com/pdok/asciimap/logging"
	"github.com/pdok/asciimap/mapgen"
	"github.com/pdok/asciimap/nominatim"
	"github.com/pdok/asciimap/overpass"
	"github.com/pdok/asciimap/style"
	"github.com/urfave/cli/v2"
)

const CONFIG string = `config`
const PLACE string = `place`
const BBOX string = `bbox`
const HEIGHT string = `height`
const ZOOM string = `zoom`
const TRANSLATELAT string = `translateLat`
const TRANSLATELON string = `translateLon`
const DETAILLEVEL string = `detailLevel`
const DECORATE string = `decorate`
const NOMINATIMURL string = `nominatimUrl`
const OVERPASSURL string = `overpassUrl`
const TIMEOUT string = `timeout`
const CACHESIZE string = `cacheSize`
const LOGLEVEL string = `logLevel`

// extra time for the HTTP round trip on top of the server side query timeout
const httpTimeoutMargin = 10 * time.Second

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "asciimap: %s\n", err)
		os.Exit(1)
	}
}

//nolint:funlen
func newApp(stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "asciimap"
	app.Usage = "Draws roads and waterways of a place as a map in your terminal"
	app.Version = versioninfo.Short()
	app.Writer = stdout
	app.ErrWriter = stderr

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    CONFIG,
			Aliases: []string{"c"},
			Usage:   "Config file (YAML, JSON or TOML) with defaults for the other flags",
			EnvVars: []string{strcase.ToScreamingSnake(CONFIG)},
		},
		&cli.StringFlag{
			Name:    PLACE,
			Aliases: []string{"p"},
			Usage:   "Place to draw, looked up with Nominatim. E.g.: \"Charnoz-sur-Ain\"",
			EnvVars: []string{strcase.ToScreamingSnake(PLACE)},
		},
		&cli.Float64SliceFlag{
			Name:    BBOX,
			Aliases: []string{"b"},
			Usage:   "Area to draw instead of a place: minLat,minLon,maxLat,maxLon. E.g.: 45.8,5.1,45.9,5.3",
			EnvVars: []string{strcase.ToScreamingSnake(BBOX)},
		},
		&cli.IntFlag{
			Name:    HEIGHT,
			Usage:   "Height of the map in lines. The map is twice as wide",
			Value:   40,
			EnvVars: []string{strcase.ToScreamingSnake(HEIGHT)},
		},
		&cli.Float64Flag{
			Name:    ZOOM,
			Aliases: []string{"z"},
			Usage:   "Zoom factor, > 1 zooms in, < 1 zooms out",
			Value:   1,
			EnvVars: []string{strcase.ToScreamingSnake(ZOOM)},
		},
		&cli.Float64Flag{
			Name:    TRANSLATELAT,
			Usage:   "Move the area north (or south when negative), in degrees",
			EnvVars: []string{strcase.ToScreamingSnake(TRANSLATELAT)},
		},
		&cli.Float64Flag{
			Name:    TRANSLATELON,
			Usage:   "Move the area east (or west when negative), in degrees",
			EnvVars: []string{strcase.ToScreamingSnake(TRANSLATELON)},
		},
		&cli.IntFlag{
			Name:    DETAILLEVEL,
			Aliases: []string{"d"},
			Usage:   "Detail level, 0 (major roads and rivers only) to 6 (everything). -1 picks one matching the size of the area",
			Value:   -1,
			EnvVars: []string{strcase.ToScreamingSnake(DETAILLEVEL)},
		},
		&cli.BoolFlag{
			Name:    DECORATE,
			Usage:   "Draw a border, compass and scale around the map",
			Value:   true,
			EnvVars: []string{strcase.ToScreamingSnake(DECORATE)},
		},
		&cli.StringFlag{
			Name:    NOMINATIMURL,
			Usage:   "Nominatim search endpoint",
			Value:   nominatim.DefaultURL,
			EnvVars: []string{strcase.ToScreamingSnake(NOMINATIMURL)},
		},
		&cli.StringFlag{
			Name:    OVERPASSURL,
			Usage:   "Overpass interpreter endpoint",
			Value:   overpass.DefaultURL,
			EnvVars: []string{strcase.ToScreamingSnake(OVERPASSURL)},
		},
		&cli.DurationFlag{
			Name:    TIMEOUT,
			Usage:   "Timeout of the Overpass query",
			Value:   overpass.DefaultTimeout,
			EnvVars: []string{strcase.ToScreamingSnake(TIMEOUT)},
		},
		&cli.IntFlag{
			Name:    CACHESIZE,
			Usage:   "Number of responses kept in memory",
			Value:   httpcache.DefaultSize,
			EnvVars: []string{strcase.ToScreamingSnake(CACHESIZE)},
		},
		&cli.StringFlag{
			Name:    LOGLEVEL,
			Usage:   "Log level: debug, info, warn or error",
			Value:   logging.LevelInfo,
			EnvVars: []string{strcase.ToScreamingSnake(LOGLEVEL)},
		},
	}

	app.Action = func(c *cli.Context) error {
		opts, err := optionsFromContext(c)
		if err != nil {
			return err
		}
		logger, err := logging.New(stderr, opts.LogLevel)
		if err != nil {
			return err
		}
		text, err := renderMap(c.Context, opts, logger)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(stdout, text)
		return err
	}
	return app
}

// optionsFromContext loads the config file, if any, and applies the flags that were set on top of it.
//
//nolint:cyclop
func optionsFromContext(c *cli.Context) (config.Options, error) {
	opts, err := config.Load(c.String(CONFIG))
	if err != nil {
		return opts, err
	}
	if c.IsSet(PLACE) {
		opts.Place = c.String(PLACE)
	}
	if c.IsSet(BBOX) {
		opts.BBox = c.Float64Slice(BBOX)
	}
	if c.IsSet(HEIGHT) {
		opts.Height = c.Int(HEIGHT)
	}
	if c.IsSet(ZOOM) {
		opts.Zoom = c.Float64(ZOOM)
	}
	if c.IsSet(TRANSLATELAT) {
		opts.TranslateLat = c.Float64(TRANSLATELAT)
	}
	if c.IsSet(TRANSLATELON) {
		opts.TranslateLon = c.Float64(TRANSLATELON)
	}
	if c.IsSet(DETAILLEVEL) {
		opts.DetailLevel = c.Int(DETAILLEVEL)
	}
	if c.IsSet(DECORATE) {
		opts.Decorate = c.Bool(DECORATE)
	}
	if c.IsSet(NOMINATIMURL) {
		opts.NominatimURL = c.String(NOMINATIMURL)
	}
	if c.IsSet(OVERPASSURL) {
		opts.OverpassURL = c.String(OVERPASSURL)
	}
	if c.IsSet(TIMEOUT) {
		opts.Timeout = c.Duration(TIMEOUT)
	}
	if c.IsSet(CACHESIZE) {
		opts.CacheSize = c.Int(CACHESIZE)
	}
	if c.IsSet(LOGLEVEL) {
		opts.LogLevel = c.String(LOGLEVEL)
	}
	if err = opts.Validate(); err != nil {
		return opts, fmt.Errorf("invalid options: %w", err)
	}
	return opts, nil
}

// renderMap finds the area, fetches its ways and draws them.
func renderMap(ctx context.Context, opts config.Options, logger log.Logger) (string, error) {
	userAgent := "asciimap/" + versioninfo.Short()
	httpClient := &http.Client{Timeout: opts.Timeout + httpTimeoutMargin}
	cache := httpcache.New(opts.CacheSize)

	box, ok := opts.Box()
	if !ok {
		geocoder := nominatim.NewGeocoder(opts.NominatimURL, userAgent, cache, logger)
		geocoder.HTTPClient = httpClient
		var err error
		if box, err = geocoder.Search(ctx, opts.Place); err != nil {
			return "", err
		}
	}
	box, err := adjustBox(box, opts)
	if err != nil {
		return "", err
	}

	detailLevel := opts.DetailLevel
	if detailLevel == -1 {
		detailLevel = style.DetailLevelForScale(box.DLonKm())
	}
	query, err := overpass.NewQuery(box, detailLevel, opts.Timeout)
	if err != nil {
		return "", err
	}
	_ = level.Info(logger).Log("msg", "fetching map", "bbox", box, "width_km", box.DLonKm(), "detail_level", detailLevel)

	client := overpass.NewClient(opts.OverpassURL, userAgent, cache, logger)
	client.HTTPClient = httpClient
	raw, err := client.Fetch(ctx, query)
	if err != nil {
		return "", err
	}

	generator := mapgen.Generator{Box: box, DisplayHeight: opts.Height, Types: query.Types, Logger: logger}
	grid, stats, err := generator.Generate(raw)
	if err != nil {
		return "", err
	}
	_ = level.Info(logger).Log("msg", "map generated", "ways", stats.Ways, "painted", stats.Painted, "dropped", stats.Dropped)

	return mapgen.RenderToText(grid, box, opts.Decorate), nil
}

func adjustBox(box geo.BoundingBox, opts config.Options) (geo.BoundingBox, error) {
	box, err := box.Zoom(opts.Zoom)
	if err != nil {
		return box, err
	}
	if opts.TranslateLat != 0 || opts.TranslateLon != 0 {
		box = box.Translate(opts.TranslateLat, opts.TranslateLon)
	}
	return box, nil
}
