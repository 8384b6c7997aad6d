// Package fonts provides the monospace glyph faces used by the raster and
// window surfaces.
package fonts

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

var (
	monoOnce sync.Once
	mono     *truetype.Font
	monoErr  error
)

func monoFont() (*truetype.Font, error) {
	monoOnce.Do(func() {
		mono, monoErr = truetype.Parse(gomono.TTF)
	})
	return mono, monoErr
}

// Mono returns a new Go Mono face whose em is sizePx pixels. Faces cache
// glyph masks and are not safe for concurrent use, so every surface gets
// its own.
func Mono(sizePx int) font.Face {
	f, err := monoFont()
	if err != nil {
		panic(fmt.Sprintf("fonts: go mono failed to parse: %v", err))
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    float64(sizePx),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Cache hands out one face per size for a single owner.
type Cache struct {
	faces map[int]font.Face
}

func NewCache() *Cache { return &Cache{faces: map[int]font.Face{}} }

func (c *Cache) Get(sizePx int) font.Face {
	f, ok := c.faces[sizePx]
	if !ok {
		f = Mono(sizePx)
		c.faces[sizePx] = f
	}
	return f
}
