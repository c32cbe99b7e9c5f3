// Package config holds the options of the asciimap command, with defaults, validation and an optional config file.
package config

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/pdok/asciimap/geo"
	"github.com/pdok/asciimap/nominatim"
	"github.com/pdok/asciimap/overpass"
	"github.com/spf13/viper"
)

type Options struct {
	// Place is geocoded to find the area to draw. Ignored when BBox is set.
	Place string `mapstructure:"place" validate:"required_without=BBox"`
	// BBox is minLat, minLon, maxLat, maxLon.
	BBox []float64 `mapstructure:"bbox" validate:"omitempty,len=4"`

	Height       int     `mapstructure:"height" default:"40" validate:"min=2,max=1000"`
	Zoom         float64 `mapstructure:"zoom" default:"1" validate:"gt=0"`
	TranslateLat float64 `mapstructure:"translate_lat" validate:"min=-180,max=180"`
	TranslateLon float64 `mapstructure:"translate_lon" validate:"min=-360,max=360"`
	// DetailLevel -1 picks a level matching the size of the area.
	DetailLevel int  `mapstructure:"detail_level" default:"-1" validate:"min=-1,max=6"`
	Decorate    bool `mapstructure:"decorate" default:"true"`

	NominatimURL string        `mapstructure:"nominatim_url" validate:"required,url"`
	OverpassURL  string        `mapstructure:"overpass_url" validate:"required,url"`
	Timeout      time.Duration `mapstructure:"timeout" default:"30s" validate:"gt=0"`
	CacheSize    int           `mapstructure:"cache_size" default:"64" validate:"min=1"`

	LogLevel string `mapstructure:"log_level" default:"info" validate:"oneof=debug info warn error"`
}

// SetDefaults fills in the zero fields of o.
func (o *Options) SetDefaults() {
	if defaults.CanUpdate(o.NominatimURL) {
		o.NominatimURL = nominatim.DefaultURL
	}
	if defaults.CanUpdate(o.OverpassURL) {
		o.OverpassURL = overpass.DefaultURL
	}
}

// Load returns the defaults, overridden by the config file at path (YAML, JSON or TOML) when given.
func Load(path string) (Options, error) {
	var o Options
	if err := defaults.Set(&o); err != nil {
		return o, err
	}
	if path == "" {
		return o, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return o, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := v.Unmarshal(&o); err != nil {
		return o, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return o, nil
}

func (o Options) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(o)
}

// Box returns the configured bounding box, normalized to a square, if any.
func (o Options) Box() (geo.BoundingBox, bool) {
	if len(o.BBox) != 4 {
		return geo.BoundingBox{}, false
	}
	return geo.New(o.BBox[0], o.BBox[1], o.BBox[2], o.BBox[3]), true
}
