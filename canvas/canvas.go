// Package canvas turns a grid of glyphs into terminal text.
//
// Row 0 of a canvas is the southern edge of the map; it is printed last.
package canvas

import (
	"fmt"
	"math"
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/pdok/asciimap/geo"
	"github.com/pdok/asciimap/mathhelp"
)

const (
	// scale legend bar spans this many cells
	legendCells = 10
	// compass column, counted from the right edge of a decorated canvas
	compassOffset = 3

	compassArrow = "⇯"
	compassNorth = "N"
)

type Canvas struct {
	cells     [][]string
	legend    string
	decorated bool
}

// New wraps data, indexed [row][col], without copying it.
func New(data [][]string) *Canvas {
	return &Canvas{cells: data}
}

func (c *Canvas) Height() int {
	return len(c.cells)
}

func (c *Canvas) Width() int {
	if len(c.cells) == 0 {
		return 0
	}
	return len(c.cells[0])
}

func (c *Canvas) IsDecorated() bool {
	return c.decorated
}

// Cell returns the glyph at row, col.
func (c *Canvas) Cell(row, col int) string {
	return c.cells[row][col]
}

// Double returns a canvas twice as wide, with every cell repeated, so the map looks square in a terminal.
func (c *Canvas) Double() *Canvas {
	cells := make([][]string, len(c.cells))
	for r, row := range c.cells {
		cells[r] = make([]string, 0, 2*len(row))
		for _, glyph := range row {
			cells[r] = append(cells[r], glyph, glyph)
		}
	}
	return &Canvas{cells: cells, legend: c.legend, decorated: c.decorated}
}

// Decorate returns a copy of the canvas with a border, a compass rose at the top right
// and a scale legend for the given bounding box.
func (c *Canvas) Decorate(box geo.BoundingBox) *Canvas {
	h, w := c.Height(), c.Width()

	cells := make([][]string, 0, h+2)
	cells = append(cells, borderRow("╚", "═", "╝", w))
	for _, row := range c.cells {
		framed := make([]string, 0, w+2)
		framed = append(framed, "║")
		framed = append(framed, row...)
		framed = append(framed, "║")
		cells = append(cells, framed)
	}
	cells = append(cells, borderRow("╔", "═", "╗", w))

	// rows 1..h hold the map, the compass needs two of them and must stay off the left border
	col := w + 2 - compassOffset
	if h >= 2 && col >= 1 {
		cells[h][col] = compassNorth
		cells[h-1][col] = compassArrow
	}

	return &Canvas{
		cells:     cells,
		legend:    ScaleLegend(box, w),
		decorated: true,
	}
}

func borderRow(left, fill, right string, width int) []string {
	row := make([]string, 0, width+2)
	row = append(row, left)
	for i := 0; i < width; i++ {
		row = append(row, fill)
	}
	return append(row, right)
}

// Render prints the canvas top row first, every line terminated by a newline.
// A decorated canvas ends with its scale legend, right aligned when it fits.
func (c *Canvas) Render() string {
	var sb strings.Builder
	for r := len(c.cells) - 1; r >= 0; r-- {
		for _, glyph := range c.cells[r] {
			sb.WriteString(glyph)
		}
		sb.WriteByte('\n')
	}
	if c.legend != "" {
		if pad := c.Width() - ansi.PrintableRuneWidth(c.legend); pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
		sb.WriteString(c.legend)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ScaleLegend renders a bar of ten cells and the distance it spans on a map of gridWidth cells covering box.
func ScaleLegend(box geo.BoundingBox, gridWidth int) string {
	bar := "├" + strings.Repeat("─", legendCells-2) + "┤"
	if gridWidth <= 0 {
		return bar
	}
	charDistanceKm := box.DLatKm() / float64(gridWidth)
	return bar + " " + FormatScale(charDistanceKm*legendCells)
}

// FormatScale formats a distance as meters, rounded to 10 m, below 10 km and as whole kilometers from there.
func FormatScale(km float64) string {
	if km < 10 {
		return fmt.Sprintf("%d m", int(mathhelp.RoundTo(km*1000, 10)))
	}
	return fmt.Sprintf("%d km", int(math.Round(km)))
}
