// Package mapgen rasterizes vector data onto a square grid of glyphs.
package mapgen

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pdok/asciimap/canvas"
	"github.com/pdok/asciimap/geo"
	"github.com/pdok/asciimap/geomhelp"
	"github.com/pdok/asciimap/mapdata"
	"github.com/pdok/asciimap/mapslicehelp"
	"github.com/pdok/asciimap/style"
)

const wktLogLength = 120

var ErrInvalidDisplayHeight = errors.New("display height must be greater than 0")

// Grid holds one glyph per cell, indexed [row][col]. Row 0 is the southern edge, col 0 the western edge.
type Grid [][]string

// NewGrid returns a size x size grid filled with the background glyph.
func NewGrid(size int) Grid {
	g := make(Grid, size)
	for r := range g {
		g[r] = make([]string, size)
		for c := range g[r] {
			g[r][c] = style.Blank
		}
	}
	return g
}

func (g Grid) Size() int {
	return len(g)
}

// Project returns the cell of n on a gridSize x gridSize grid covering box.
// Nodes outside the box are rejected, and so are nodes on the northern or eastern edge,
// which would land just outside the grid.
func Project(n mapdata.Node, box geo.BoundingBox, gridSize int) (row, col int, ok bool) {
	if gridSize <= 0 || box.IsDegenerate() {
		return 0, 0, false
	}
	if !box.Contains(n.Lat, n.Lon) {
		return 0, 0, false
	}
	relLat := n.Lat - box.MinLat()
	relLon := n.Lon - box.MinLon()
	row = int(math.Floor(relLat / box.DLatDeg() * float64(gridSize)))
	col = int(math.Floor(relLon / box.DLonDeg() * float64(gridSize)))
	if row >= gridSize || col >= gridSize {
		return 0, 0, false
	}
	return row, col, true
}

// Paint draws node i of w, overwriting whatever the cell held. Untyped ways paint the background glyph.
func Paint(g Grid, box geo.BoundingBox, w *mapdata.Way, i int) bool {
	row, col, ok := Project(w.Nodes[i], box, g.Size())
	if !ok {
		return false
	}
	g[row][col] = style.Glyph(w.Nodes[i].WayType, w.AngleAt(i))
	return true
}

// Stats describes a single Generate run.
type Stats struct {
	Ways         int
	FilteredWays int
	Nodes        int
	LoneNodes    int
	SkippedRefs  int
	Painted      int
	Dropped      int
}

// Generator rasterizes vector data for one bounding box.
type Generator struct {
	Box           geo.BoundingBox
	DisplayHeight int
	// Types limits the drawn ways to these way types. Nil draws every way, untyped ones included.
	Types  []string
	Logger log.Logger
}

// Generate parses raw Overpass JSON and paints every way on a DisplayHeight x DisplayHeight grid.
// Ways are painted in input order and the last one to reach a cell wins.
func (g Generator) Generate(raw []byte) (Grid, Stats, error) {
	var stats Stats
	if g.DisplayHeight <= 0 {
		return nil, stats, fmt.Errorf("%w, got %d", ErrInvalidDisplayHeight, g.DisplayHeight)
	}
	logger := g.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	data, err := mapdata.ParseVectorData(raw)
	if err != nil {
		return nil, stats, err
	}
	stats.LoneNodes = len(data.LoneNodes)
	stats.SkippedRefs = data.SkippedRefs

	var wanted map[string]struct{}
	if g.Types != nil {
		wanted = mapslicehelp.AsSet(g.Types)
	}

	grid := NewGrid(g.DisplayHeight)
	for _, w := range data.Ways {
		if wanted != nil {
			if _, ok := wanted[style.Name(w.WayType())]; !ok {
				stats.FilteredWays++
				continue
			}
		}
		stats.Ways++
		w.InterpolateNodes(g.DisplayHeight)
		if g.Logger != nil {
			_ = level.Debug(logger).Log("msg", "painting way", "id", w.ID, "type", style.Name(w.WayType()),
				"nodes", len(w.Nodes), "wkt", geomhelp.WktMustEncode(w.LineString(), wktLogLength))
		}
		for i := range w.Nodes {
			stats.Nodes++
			if Paint(grid, g.Box, w, i) {
				stats.Painted++
			} else {
				stats.Dropped++
			}
		}
	}

	_ = level.Debug(logger).Log("msg", "generated map", "bbox", g.Box, "size", g.DisplayHeight,
		"ways", stats.Ways, "filtered", stats.FilteredWays, "nodes", stats.Nodes, "painted", stats.Painted,
		"dropped", stats.Dropped, "lone_nodes", stats.LoneNodes, "skipped_refs", stats.SkippedRefs)
	return grid, stats, nil
}

// GenerateMap rasterizes every way in raw onto a displayHeight x displayHeight grid covering box.
func GenerateMap(raw []byte, box geo.BoundingBox, displayHeight int) (Grid, error) {
	grid, _, err := Generator{Box: box, DisplayHeight: displayHeight}.Generate(raw)
	return grid, err
}

// RenderToText doubles the grid horizontally and prints it, optionally with border, compass and scale legend.
func RenderToText(grid Grid, box geo.BoundingBox, withDecoration bool) string {
	c := canvas.New(grid).Double()
	if withDecoration {
		c = c.Decorate(box)
	}
	return c.Render()
}
