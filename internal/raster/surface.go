// Package raster implements the rain surface on an in-memory RGBA image,
// for PNG snapshots and GIF recordings.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/san-kum/binrain/internal/fonts"
)

type Surface struct {
	img   *image.RGBA
	bg    color.Color
	fill  *image.Uniform
	faces *fonts.Cache
	face  font.Face
}

// New creates a transparent surface of w x h pixels.
func New(w, h int) *Surface {
	return &Surface{
		img:   image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0))),
		bg:    color.Transparent,
		fill:  image.NewUniform(color.Black),
		faces: fonts.NewCache(),
	}
}

func (s *Surface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *Surface) SetFillColor(c color.Color) { s.fill = image.NewUniform(c) }

func (s *Surface) SetFont(px int) { s.face = s.faces.Get(px) }

// FillRect composites the current fill color over the rectangle.
func (s *Surface) FillRect(x, y, w, h float64) {
	r := image.Rect(
		int(math.Floor(x)), int(math.Floor(y)),
		int(math.Ceil(x+w)), int(math.Ceil(y+h)),
	).Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(s.img, r, s.fill, image.Point{}, draw.Over)
}

// FillText draws text with its baseline at y.
func (s *Surface) FillText(text string, x, y float64) {
	if s.face == nil {
		s.face = s.faces.Get(14)
	}
	d := font.Drawer{
		Dst:  s.img,
		Src:  s.fill,
		Face: s.face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(text)
}

// Clear replaces every pixel with c, which also becomes the color of
// pixels exposed by later resizes.
func (s *Surface) Clear(c color.Color) {
	s.bg = c
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Resize reallocates the image to w x h, keeping the top-left content.
func (s *Surface) Resize(w, h int) {
	next := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	draw.Draw(next, next.Bounds(), image.NewUniform(s.bg), image.Point{}, draw.Src)
	draw.Draw(next, s.img.Bounds().Intersect(next.Bounds()), s.img, image.Point{}, draw.Src)
	s.img = next
}

func (s *Surface) Image() *image.RGBA { return s.img }

// Paletted quantizes the current frame to p (nearest color).
func (s *Surface) Paletted(p color.Palette) *image.Paletted {
	out := image.NewPaletted(s.img.Bounds(), p)
	draw.Draw(out, out.Bounds(), s.img, image.Point{}, draw.Src)
	return out
}

// Gradient builds n evenly spaced colors from a to b, inclusive.
func Gradient(a, b color.Color, n int) color.Palette {
	if n < 2 {
		n = 2
	}
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	lerp := func(x, y uint32, t float64) uint8 {
		return uint8((float64(x)+(float64(y)-float64(x))*t)/257 + 0.5)
	}
	p := make(color.Palette, n)
	for i := range p {
		t := float64(i) / float64(n-1)
		p[i] = color.RGBA{R: lerp(ar, br, t), G: lerp(ag, bg, t), B: lerp(ab, bb, t), A: 0xff}
	}
	return p
}
