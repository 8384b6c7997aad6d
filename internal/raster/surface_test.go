package raster

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/san-kum/binrain/internal/rain"
)

func TestFillRectOpaque(t *testing.T) {
	s := New(20, 10)
	s.SetFillColor(color.RGBA{R: 255, A: 255})
	s.FillRect(5, 0, 5, 10)

	if got := s.Image().RGBAAt(6, 5); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("inside pixel = %v", got)
	}
	if got := s.Image().RGBAAt(15, 5); got.A != 0 {
		t.Errorf("outside pixel = %v, want transparent", got)
	}
}

func TestFillRectClipsToBounds(t *testing.T) {
	s := New(4, 4)
	s.SetFillColor(color.White)
	s.FillRect(-10, -10, 100, 100)
	s.FillRect(50, 50, 5, 5)
	if got := s.Image().RGBAAt(3, 3); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("corner pixel = %v", got)
	}
}

func TestTrailTintBlends(t *testing.T) {
	s := New(2, 2)
	s.Clear(rain.ThemeDark.Glyph)
	s.SetFillColor(rain.ThemeDark.Trail)
	s.FillRect(0, 0, 2, 2)

	got := s.Image().RGBAAt(0, 0)
	// 5% of the way from #0ea5e9 toward rgb(2,6,23).
	want := color.RGBA{R: 13, G: 157, B: 222, A: 255}
	if diff(got.R, want.R) > 1 || diff(got.G, want.G) > 1 || diff(got.B, want.B) > 1 || got.A != 255 {
		t.Errorf("blended pixel = %v, want ~%v", got, want)
	}
}

func TestFillTextDrawsInsideCell(t *testing.T) {
	s := New(28, 28)
	s.Clear(color.Black)
	s.SetFillColor(color.White)
	s.SetFont(14)
	s.FillText("1", 14, 14)

	lit := 0
	b := image.Rect(14, 0, 28, 14)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if s.Image().RGBAAt(x, y).R > 128 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("glyph left no pixels in its cell")
	}
	if s.Image().RGBAAt(2, 20).R != 0 {
		t.Error("glyph bled outside its cell")
	}
}

func TestResizeKeepsContent(t *testing.T) {
	s := New(10, 10)
	s.Clear(color.Black)
	s.SetFillColor(color.White)
	s.FillRect(0, 0, 10, 10)
	s.Resize(20, 5)

	w, h := s.Size()
	if w != 20 || h != 5 {
		t.Fatalf("Size() = %dx%d", w, h)
	}
	if s.Image().RGBAAt(9, 4).R != 255 {
		t.Error("kept region lost")
	}
	if s.Image().RGBAAt(15, 4).R != 0 {
		t.Error("new region not filled with background")
	}
}

func TestPalettedUsesNearestColor(t *testing.T) {
	s := New(2, 1)
	s.Clear(color.RGBA{R: 250, G: 250, B: 250, A: 255})
	p := Gradient(color.Black, color.White, 2)
	img := s.Paletted(p)
	if img.ColorIndexAt(0, 0) != 1 {
		t.Errorf("index = %d, want 1", img.ColorIndexAt(0, 0))
	}
}

func TestGradientEndpoints(t *testing.T) {
	p := Gradient(rain.ThemeDark.Background(), rain.ThemeDark.Glyph, 16)
	if len(p) != 16 {
		t.Fatalf("len = %d", len(p))
	}
	if p[0] != (color.RGBA{2, 6, 23, 255}) {
		t.Errorf("first = %v", p[0])
	}
	if p[15] != (color.RGBA{0x0e, 0xa5, 0xe9, 255}) {
		t.Errorf("last = %v", p[15])
	}
}

func TestAnimatorOnRaster(t *testing.T) {
	s := New(140, 280)
	a, err := rain.New(rain.DefaultConfig(), stubScheduler{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	a.Start(s, false)
	if a.Columns() != 10 {
		t.Errorf("columns = %d, want 10", a.Columns())
	}
}

type stubScheduler struct{}

func (stubScheduler) AfterFunc(_ time.Duration, _ func()) func() { return func() {} }

func diff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
