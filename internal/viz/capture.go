package viz

import (
	"image"
	"image/color"
	"image/gif"
	"os"
	"time"

	"github.com/san-kum/binrain/internal/cells"
	"github.com/san-kum/binrain/internal/rain"
	"github.com/san-kum/binrain/internal/raster"
	"github.com/san-kum/binrain/internal/record"
)

// capture renders the cell grid to pixels once per tick while active.
type capture struct {
	grid    *cells.Grid
	glyph   int
	delay   int
	active  bool
	surface *raster.Surface
	palette color.Palette
	frames  []*image.Paletted
}

func newCapture(grid *cells.Grid, cfg rain.Config) *capture {
	return &capture{
		grid:    grid,
		glyph:   cfg.GlyphSize,
		delay:   max(int(cfg.Delay/(10*time.Millisecond)), 1),
		palette: record.Palette(),
	}
}

func (c *capture) OnTick(rain.TickInfo) {
	if c.active {
		c.captureFrame()
	}
}

func (c *capture) start() {
	c.active = true
	c.frames = c.frames[:0]
}

func (c *capture) captureFrame() {
	w, h := c.grid.Size()
	if w == 0 || h == 0 {
		return
	}
	if c.surface == nil {
		c.surface = raster.New(w, h)
	} else if sw, sh := c.surface.Size(); sw != w || sh != h {
		c.surface.Resize(w, h)
	}

	r, g, b := c.grid.Background().Bytes()
	c.surface.Clear(color.RGBA{R: r, G: g, B: b, A: 0xff})
	c.surface.SetFont(c.glyph)
	for row := 0; row < c.grid.Rows(); row++ {
		for col := 0; col < c.grid.Cols(); col++ {
			if !c.grid.Visible(col, row) {
				continue
			}
			cell := c.grid.Cell(col, row)
			r, g, b := cell.Color.Bytes()
			c.surface.SetFillColor(color.RGBA{R: r, G: g, B: b, A: 0xff})
			c.surface.FillText(string(cell.Glyph), float64(col*c.glyph), float64((row+1)*c.glyph))
		}
	}
	c.frames = append(c.frames, c.surface.Paletted(c.palette))
}

// save stops capturing and writes the frames to path.
func (c *capture) save(path string) error {
	c.active = false
	if len(c.frames) == 0 {
		return record.ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range c.frames {
		b := frame.Bounds()
		anim.Config.Width = max(anim.Config.Width, b.Dx())
		anim.Config.Height = max(anim.Config.Height, b.Dy())
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, c.delay)
	}
	anim.Config.ColorModel = c.palette
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}
