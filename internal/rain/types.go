package rain

import (
	"image/color"
	"time"
)

// ColumnState holds the drop position of every column, in glyph-height units.
type ColumnState []float64

func (c ColumnState) Clone() ColumnState {
	out := make(ColumnState, len(c))
	copy(out, c)
	return out
}

// reset resizes c to n entries, reusing its backing array, and sets every
// entry to v.
func (c ColumnState) reset(n int, v float64) ColumnState {
	if n < 0 {
		n = 0
	}
	if cap(c) < n {
		c = make(ColumnState, n)
	}
	c = c[:n]
	for i := range c {
		c[i] = v
	}
	return c
}

// Surface is the drawing target of an animator. Coordinates are pixels with
// the origin at the top-left corner; FillText anchors the glyph baseline at y,
// matching a 2D canvas context.
type Surface interface {
	Size() (width, height int)
	SetFillColor(c color.Color)
	SetFont(sizePx int)
	FillRect(x, y, w, h float64)
	FillText(text string, x, y float64)
}

// Scheduler runs fn once, no earlier than d from now, on the host's frame
// cadence. The returned function cancels the call if it has not run yet.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// Source supplies uniform pseudo-random numbers in [0, 1).
// *math/rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// TickInfo summarizes one tick for observers.
type TickInfo struct {
	Index     int
	Columns   int
	Resets    int
	Glyphs    []int // draw count per alphabet entry
	MeanDepth float64
	Dark      bool
}

type Observer interface {
	OnTick(info TickInfo)
}

// ObserverFunc adapts a plain function to an Observer.
type ObserverFunc func(info TickInfo)

func (f ObserverFunc) OnTick(info TickInfo) { f(info) }
