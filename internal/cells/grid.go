// Package cells adapts the rain surface to a character-cell terminal.
//
// Every cell is one glyph square of the pixel surface. Painting a
// translucent rectangle blends the color of the covered cells toward the fill
// color, which is how the trail fades without a pixel buffer.
package cells

import (
	"image/color"
	"math"

	"github.com/san-kum/binrain/internal/rain"
)

// fadeThreshold is the largest channel distance from the background at which
// a cell is still drawn.
const fadeThreshold = 24.0

type RGB struct{ R, G, B float64 }

func (c RGB) Bytes() (r, g, b uint8) { return clamp8(c.R), clamp8(c.G), clamp8(c.B) }

func (c RGB) distance(o RGB) float64 {
	return math.Max(math.Abs(c.R-o.R), math.Max(math.Abs(c.G-o.G), math.Abs(c.B-o.B)))
}

type Cell struct {
	Glyph rune
	Color RGB
}

type Grid struct {
	cols, rows int
	glyph      int
	cells      []Cell
	background RGB
	fill       RGB
	alpha      float64
	font       int
}

// New creates a grid of cols x rows cells of glyph pixels each.
func New(cols, rows, glyph int) *Grid {
	if glyph <= 0 {
		glyph = rain.DefaultGlyphSize
	}
	g := &Grid{glyph: glyph, font: glyph, alpha: 1}
	g.Resize(cols, rows)
	return g
}

func (g *Grid) Cols() int { return g.cols }

func (g *Grid) Rows() int { return g.rows }

// Size reports the pixel dimensions of the grid.
func (g *Grid) Size() (int, int) { return g.cols * g.glyph, g.rows * g.glyph }

// Resize changes the cell dimensions, keeping the overlapping top-left cells.
func (g *Grid) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	next := make([]Cell, cols*rows)
	for r := 0; r < rows && r < g.rows; r++ {
		for c := 0; c < cols && c < g.cols; c++ {
			next[r*cols+c] = g.cells[r*g.cols+c]
		}
	}
	g.cols, g.rows, g.cells = cols, rows, next
}

func (g *Grid) SetFillColor(c color.Color) {
	rc := rain.ToColor(c)
	g.fill = RGB{float64(rc.R), float64(rc.G), float64(rc.B)}
	g.alpha = rc.A
}

func (g *Grid) SetFont(px int) { g.font = px }

// FillRect blends every cell whose center lies inside the rectangle.
func (g *Grid) FillRect(x, y, w, h float64) {
	size := float64(g.glyph)
	c0 := int(math.Max(0, math.Ceil(x/size-0.5)))
	r0 := int(math.Max(0, math.Ceil(y/size-0.5)))
	c1 := int(math.Min(float64(g.cols), math.Ceil((x+w)/size-0.5)))
	r1 := int(math.Min(float64(g.rows), math.Ceil((y+h)/size-0.5)))

	if c0 == 0 && r0 == 0 && c1 == g.cols && r1 == g.rows {
		g.background = g.fill
	}
	a := g.alpha
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			cell := &g.cells[r*g.cols+c]
			cell.Color = RGB{
				R: cell.Color.R*(1-a) + g.fill.R*a,
				G: cell.Color.G*(1-a) + g.fill.G*a,
				B: cell.Color.B*(1-a) + g.fill.B*a,
			}
			if a >= 1 {
				cell.Glyph = 0
			}
		}
	}
}

// FillText places the first rune of text in the cell whose bottom edge
// holds the baseline y.
func (g *Grid) FillText(text string, x, y float64) {
	size := float64(g.glyph)
	col := int(math.Floor(x / size))
	row := int(math.Ceil(y/size)) - 1
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return
	}
	for _, r := range text {
		g.cells[row*g.cols+col] = Cell{Glyph: r, Color: g.fill}
		return
	}
}

func (g *Grid) Cell(col, row int) Cell {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return Cell{}
	}
	return g.cells[row*g.cols+col]
}

// Background is the color of the last rectangle that covered the whole grid.
func (g *Grid) Background() RGB { return g.background }

// Visible reports whether the cell holds a glyph that has not yet faded
// into the background.
func (g *Grid) Visible(col, row int) bool {
	cell := g.Cell(col, row)
	return cell.Glyph != 0 && cell.Color.distance(g.background) > fadeThreshold
}

// Clear paints every cell with the background and drops all glyphs.
func (g *Grid) Clear(bg color.Color) {
	rc := rain.ToColor(bg)
	g.background = RGB{float64(rc.R), float64(rc.G), float64(rc.B)}
	for i := range g.cells {
		g.cells[i] = Cell{Color: g.background}
	}
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
