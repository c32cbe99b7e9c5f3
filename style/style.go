// Package style maps OSM way types to the glyphs used to draw them.
//
// The catalog is ordered by importance: highways from motorway down to path,
// then waterways from river down to fish_pass.
package style

import (
	"errors"
	"fmt"

	"github.com/pdok/asciimap/mapslicehelp"
	"github.com/pdok/asciimap/mathhelp"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	HighwayKey  = "highway"
	WaterwayKey = "waterway"

	// Blank is the background glyph, also used for way types that are not in the catalog.
	Blank = " "

	MinDetailLevel = 0
	MaxDetailLevel = 6
)

var ErrInvalidDetailLevel = fmt.Errorf("detail level must be between %d and %d", MinDetailLevel, MaxDetailLevel)

// WayType is the index of a way type in the catalog.
type WayType int

// Untyped is the WayType of a way whose tags are not in the catalog.
const Untyped WayType = -1

// Orientation is the index of a glyph within a GlyphSet.
type Orientation int

const (
	Horizontal Orientation = iota
	DiagonalUp
	Vertical
	DiagonalDown
)

// GlyphSet holds the glyphs of one family, indexed by Orientation.
type GlyphSet [4]string

func (g GlyphSet) For(o Orientation) string {
	return g[o]
}

// fixed styles, never depending on the terminal
const (
	reset  = "\x1b[0m"
	yellow = "\x1b[33m"
	green  = "\x1b[32m"
	grey   = "\x1b[90m"
	blue   = "\x1b[1;34m"
	cyan   = "\x1b[36m"
)

func styled(escape string, glyphs GlyphSet) GlyphSet {
	for i := range glyphs {
		glyphs[i] = escape + glyphs[i] + reset
	}
	return glyphs
}

var (
	PrimaryHighway    = styled(yellow, GlyphSet{"═", "/", "║", "\\"})
	SecondaryHighway  = GlyphSet{"═", "/", "║", "\\"}
	TertiaryHighway   = GlyphSet{"-", "/", "|", "\\"}
	QuaternaryHighway = styled(grey, GlyphSet{"-", "/", "|", "\\"})
	SmallHighway      = styled(green, GlyphSet{"-", "/", "|", "\\"})
	VerySmallHighway  = styled(green, GlyphSet{".", ".", ":", "."})
	River             = styled(blue, GlyphSet{"~", "/", "|", "\\"})
	Stream            = styled(cyan, GlyphSet{"~", "/", "|", "\\"})

	blankSet = GlyphSet{Blank, Blank, Blank, Blank}
)

type entry struct {
	key         string // highway or waterway
	glyphs      GlyphSet
	detailLevel int // first detail level at which the type is shown
}

var (
	catalog  = newCatalog()
	wayTypes = mapslicehelp.OrderedMapKeys(catalog)
	indexOf  = func() map[string]WayType {
		m := make(map[string]WayType, len(wayTypes))
		for i, name := range wayTypes {
			m[name] = WayType(i)
		}
		return m
	}()
)

//nolint:funlen
func newCatalog() *orderedmap.OrderedMap[string, entry] {
	c := orderedmap.New[string, entry]()
	highway := func(name string, glyphs GlyphSet, level int) {
		c.Set(name, entry{key: HighwayKey, glyphs: glyphs, detailLevel: level})
	}
	waterway := func(name string, glyphs GlyphSet, level int) {
		c.Set(name, entry{key: WaterwayKey, glyphs: glyphs, detailLevel: level})
	}

	highway("motorway", PrimaryHighway, 0)
	highway("trunk", PrimaryHighway, 0)
	highway("primary", SecondaryHighway, 1)
	highway("secondary", TertiaryHighway, 2)
	highway("tertiary", QuaternaryHighway, 3)
	highway("unclassified", QuaternaryHighway, 4)
	highway("residential", SmallHighway, 5)
	highway("motorway_link", PrimaryHighway, 0)
	highway("trunk_link", PrimaryHighway, 0)
	highway("primary_link", SecondaryHighway, 1)
	highway("secondary_link", TertiaryHighway, 2)
	highway("tertiary_link", QuaternaryHighway, 3)
	highway("living_street", SmallHighway, 5)
	highway("service", QuaternaryHighway, 5)
	highway("pedestrian", VerySmallHighway, 6)
	highway("track", VerySmallHighway, 6)
	highway("bus_guideway", TertiaryHighway, 4)
	highway("escape", VerySmallHighway, 6)
	highway("raceway", VerySmallHighway, 6)
	highway("road", QuaternaryHighway, 4)
	highway("busway", TertiaryHighway, 4)
	highway("footway", VerySmallHighway, 6)
	highway("bridleway", VerySmallHighway, 6)
	highway("steps", VerySmallHighway, 6)
	highway("corridor", VerySmallHighway, 6)
	highway("path", VerySmallHighway, 6)

	waterway("river", River, 0)
	waterway("riverbank", River, 1)
	waterway("stream", Stream, 2)
	waterway("tidal_channel", Stream, 2)
	waterway("canal", Stream, 1)
	waterway("pressurised", Stream, 6)
	waterway("drain", Stream, 3)
	waterway("ditch", Stream, 3)
	waterway("fairway", Stream, 6)
	waterway("fish_pass", Stream, 6)
	return c
}

// Len is the number of way types in the catalog.
func Len() int {
	return len(wayTypes)
}

// Classify returns the catalog index of a way type (e.g. "motorway", "river").
func Classify(wayType string) (WayType, bool) {
	t, ok := indexOf[wayType]
	if !ok {
		return Untyped, false
	}
	return t, true
}

// Name returns the way type string of t, or "" when t is not in the catalog.
func Name(t WayType) string {
	if !t.valid() {
		return ""
	}
	return wayTypes[t]
}

// TagKey returns the OSM tag key ("highway" or "waterway") of t, or "" when t is not in the catalog.
func TagKey(t WayType) string {
	e, ok := lookup(t)
	if !ok {
		return ""
	}
	return e.key
}

// Glyphs returns the glyph family of t. Types that are not in the catalog get blanks only.
func Glyphs(t WayType) GlyphSet {
	e, ok := lookup(t)
	if !ok {
		return blankSet
	}
	return e.glyphs
}

// Glyph returns the glyph for a node of type t whose local direction has the given angle.
func Glyph(t WayType, angle float64) string {
	return Glyphs(t).For(OrientationIndex(angle))
}

// OrientationIndex buckets an angle (in degrees, measured counterclockwise from east)
// into one of the four orientations. Buckets are 45° wide, centered on 0°, 45°, 90° and 135°,
// repeat every 180° and include their lower boundary.
func OrientationIndex(angle float64) Orientation {
	a := mathhelp.FloatMod(angle+22.5, 180)
	switch {
	case a < 45:
		return Horizontal
	case a < 90:
		return DiagonalUp
	case a < 135:
		return Vertical
	default:
		return DiagonalDown
	}
}

// TypesForDetailLevel returns the way types shown at the given detail level, in catalog order.
// Level 0 only shows major infrastructure; every next level adds a bracket of less important types.
func TypesForDetailLevel(level int) ([]string, error) {
	if !mathhelp.BetweenInc(level, MinDetailLevel, MaxDetailLevel) {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidDetailLevel, level)
	}
	return mapslicehelp.FilterOrderedMapKeys(catalog, func(e entry) bool {
		return e.detailLevel <= level
	}), nil
}

// DetailLevelForScale derives a detail level from the width of the map in kilometers.
func DetailLevelForScale(widthKm float64) int {
	switch {
	case widthKm >= 200:
		return 0
	case widthKm >= 100:
		return 1
	case widthKm >= 50:
		return 2
	case widthKm >= 20:
		return 3
	case widthKm >= 8:
		return 4
	case widthKm >= 3:
		return 5
	default:
		return 6
	}
}

func (t WayType) valid() bool {
	return t >= 0 && int(t) < len(wayTypes)
}

func lookup(t WayType) (entry, bool) {
	if !t.valid() {
		return entry{}, false
	}
	return catalog.Get(wayTypes[t])
}

var errNotInCatalog = errors.New("not in catalog")

// MustClassify is Classify for way types known at compile time.
func MustClassify(wayType string) WayType {
	t, ok := Classify(wayType)
	if !ok {
		panic(fmt.Errorf("%q: %w", wayType, errNotInCatalog))
	}
	return t
}
