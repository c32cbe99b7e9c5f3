package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdok/asciimap/geo"
	"github.com/pdok/asciimap/nominatim"
	"github.com/pdok/asciimap/overpass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_defaults(t *testing.T) {
	o, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Options{
		Height:       40,
		Zoom:         1,
		DetailLevel:  -1,
		Decorate:     true,
		NominatimURL: nominatim.DefaultURL,
		OverpassURL:  overpass.DefaultURL,
		Timeout:      30 * time.Second,
		CacheSize:    64,
		LogLevel:     "info",
	}, o)
	// nothing to draw yet
	assert.Error(t, o.Validate())
}

func TestLoad_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asciimap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
place: Charnoz-sur-Ain
height: 30
zoom: 2.5
detail_level: 3
decorate: false
timeout: 1m
log_level: debug
`), 0o600))

	o, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Charnoz-sur-Ain", o.Place)
	assert.Equal(t, 30, o.Height)
	assert.Equal(t, 2.5, o.Zoom)
	assert.Equal(t, 3, o.DetailLevel)
	assert.False(t, o.Decorate)
	assert.Equal(t, time.Minute, o.Timeout)
	assert.Equal(t, "debug", o.LogLevel)
	// not in the file
	assert.Equal(t, 64, o.CacheSize)
	assert.Equal(t, overpass.DefaultURL, o.OverpassURL)
	assert.NoError(t, o.Validate())
}

func TestLoad_bboxFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asciimap.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bbox": [45.0, 4.0, 45.01, 4.01]}`), 0o600))

	o, err := Load(path)
	require.NoError(t, err)
	assert.NoError(t, o.Validate())
	box, ok := o.Box()
	require.True(t, ok)
	assert.Equal(t, geo.New(45.0, 4.0, 45.01, 4.01), box)
}

func TestLoad_missingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func validOptions() Options {
	o, _ := Load("")
	o.Place = "Lyon"
	return o
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(o *Options)
		wantErr bool
	}{
		{name: "valid", modify: func(o *Options) {}},
		{name: "bbox instead of place", modify: func(o *Options) { o.Place = ""; o.BBox = []float64{1, 2, 3, 4} }},
		{name: "neither place nor bbox", modify: func(o *Options) { o.Place = "" }, wantErr: true},
		{name: "bbox of 3 values", modify: func(o *Options) { o.BBox = []float64{1, 2, 3} }, wantErr: true},
		{name: "zero zoom", modify: func(o *Options) { o.Zoom = 0 }, wantErr: true},
		{name: "negative zoom", modify: func(o *Options) { o.Zoom = -2 }, wantErr: true},
		{name: "detail level too high", modify: func(o *Options) { o.DetailLevel = 7 }, wantErr: true},
		{name: "detail level too low", modify: func(o *Options) { o.DetailLevel = -2 }, wantErr: true},
		{name: "detail level 0", modify: func(o *Options) { o.DetailLevel = 0 }},
		{name: "height too small", modify: func(o *Options) { o.Height = 1 }, wantErr: true},
		{name: "bad url", modify: func(o *Options) { o.OverpassURL = "not a url" }, wantErr: true},
		{name: "bad log level", modify: func(o *Options) { o.LogLevel = "verbose" }, wantErr: true},
		{name: "no timeout", modify: func(o *Options) { o.Timeout = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOptions()
			tt.modify(&o)
			err := o.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOptions_Box(t *testing.T) {
	_, ok := Options{}.Box()
	assert.False(t, ok)
}
