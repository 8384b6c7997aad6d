package export

import (
	"fmt"
	"html"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/binrain/internal/rain"
)

// SVG is a rain surface that records every paint operation as an SVG
// element, so the composited result matches a canvas bit for bit in any
// SVG renderer.
type SVG struct {
	width, height int
	background    rain.Color
	fill          rain.Color
	font          int
	body          strings.Builder
	ops           int
}

func NewSVG(width, height int, background color.Color) *SVG {
	return &SVG{
		width:      width,
		height:     height,
		background: rain.ToColor(background).Opaque(),
		fill:       rain.Color{A: 1},
		font:       rain.DefaultGlyphSize,
	}
}

func (s *SVG) Size() (int, int) { return s.width, s.height }

func (s *SVG) SetFillColor(c color.Color) { s.fill = rain.ToColor(c) }

func (s *SVG) SetFont(px int) { s.font = px }

func (s *SVG) FillRect(x, y, w, h float64) {
	fmt.Fprintf(&s.body, `<rect x="%s" y="%s" width="%s" height="%s"%s/>`+"\n",
		num(x), num(y), num(w), num(h), s.paint())
	s.ops++
}

func (s *SVG) FillText(text string, x, y float64) {
	fmt.Fprintf(&s.body, `<text x="%s" y="%s" font-size="%d"%s>%s</text>`+"\n",
		num(x), num(y), s.font, s.paint(), html.EscapeString(text))
	s.ops++
}

// Resize changes the document size. Recorded elements keep their
// coordinates.
func (s *SVG) Resize(width, height int) {
	s.width, s.height = width, height
}

// Ops is the number of recorded paint operations.
func (s *SVG) Ops() int { return s.ops }

func (s *SVG) paint() string {
	attr := ` fill="` + s.fill.Hex() + `"`
	if s.fill.A < 1 {
		attr += ` fill-opacity="` + strconv.FormatFloat(s.fill.A, 'f', -1, 64) + `"`
	}
	return attr
}

func (s *SVG) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<g font-family="monospace">
`, s.width, s.height, s.width, s.height, s.background.Hex()))
	sb.WriteString(s.body.String())
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
