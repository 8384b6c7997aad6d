package rain

import (
	"fmt"
	"image/color"
	"strconv"
)

// Color is a straight (non-premultiplied) RGB color with a fractional alpha,
// kept exact so vector surfaces can reproduce the CSS value.
type Color struct {
	R, G, B uint8
	A       float64
}

// RGBA implements color.Color with alpha-premultiplied 16-bit channels.
func (c Color) RGBA() (r, g, b, a uint32) {
	alpha := c.A
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	a = uint32(alpha*0xffff + 0.5)
	r = uint32(c.R) * 0x101 * a / 0xffff
	g = uint32(c.G) * 0x101 * a / 0xffff
	b = uint32(c.B) * 0x101 * a / 0xffff
	return
}

func (c Color) Opaque() Color { return Color{R: c.R, G: c.G, B: c.B, A: 1} }

// Hex returns the #rrggbb form, ignoring alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// CSS returns the color as a CSS value: #rrggbb when opaque, rgba() otherwise.
func (c Color) CSS() string {
	if c.A >= 1 {
		return c.Hex()
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

func (c Color) String() string { return c.CSS() }

// ToColor converts any color.Color into a Color.
func ToColor(c color.Color) Color {
	if rc, ok := c.(Color); ok {
		return rc
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: float64(n.A) / 255}
}

// Theme is the color pair used by a tick: a translucent trail tint painted
// over the whole surface, and the glyph color.
type Theme struct {
	Name  string
	Trail Color
	Glyph Color
}

// Background is the color the trail tint converges to.
func (t Theme) Background() Color { return t.Trail.Opaque() }

var (
	ThemeDark = Theme{
		Name:  "dark",
		Trail: Color{R: 2, G: 6, B: 23, A: 0.05},
		Glyph: Color{R: 0x0E, G: 0xA5, B: 0xE9, A: 1},
	}

	ThemeLight = Theme{
		Name:  "light",
		Trail: Color{R: 249, G: 250, B: 251, A: 0.05},
		Glyph: Color{R: 0x02, G: 0x84, B: 0xc7, A: 1},
	}
)

func ThemeFor(isDark bool) Theme {
	if isDark {
		return ThemeDark
	}
	return ThemeLight
}

// ParseTheme maps "dark" or "light" to the matching flag.
func ParseTheme(name string) (isDark bool, err error) {
	switch name {
	case "dark", "":
		return true, nil
	case "light":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
}
