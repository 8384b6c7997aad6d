package gui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text" //nolint:staticcheck // v1 text API takes x/image faces directly
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"github.com/san-kum/binrain/internal/fonts"
)

// Surface paints rain ticks onto an offscreen ebiten image that persists
// between frames, so the translucent trail accumulates.
type Surface struct {
	img   *ebiten.Image
	fill  color.Color
	faces *fonts.Cache
	face  font.Face
}

func NewSurface(w, h int) *Surface {
	return &Surface{
		img:   ebiten.NewImage(max(w, 1), max(h, 1)),
		fill:  color.Black,
		faces: fonts.NewCache(),
	}
}

func (s *Surface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *Surface) SetFillColor(c color.Color) { s.fill = c }

func (s *Surface) SetFont(px int) { s.face = s.faces.Get(px) }

func (s *Surface) FillRect(x, y, w, h float64) {
	vector.DrawFilledRect(s.img, float32(x), float32(y), float32(w), float32(h), s.fill, false)
}

func (s *Surface) FillText(str string, x, y float64) {
	if s.face == nil {
		s.face = s.faces.Get(14)
	}
	text.Draw(s.img, str, s.face, int(x), int(y), s.fill)
}

func (s *Surface) Clear(c color.Color) { s.img.Fill(c) }

// Resize reallocates the image, keeping the top-left content and filling
// the rest with bg.
func (s *Surface) Resize(w, h int, bg color.Color) {
	next := ebiten.NewImage(max(w, 1), max(h, 1))
	next.Fill(bg)
	next.DrawImage(s.img, nil)
	s.img.Deallocate()
	s.img = next
}

func (s *Surface) Image() *ebiten.Image { return s.img }
