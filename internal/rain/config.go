package rain

import (
	"fmt"
	"time"
)

const (
	DefaultGlyphSize        = 14
	DefaultIncrement        = 0.75
	DefaultResetProbability = 0.005
	DefaultInitialPosition  = 1.0
	DefaultDelay            = 100 * time.Millisecond
)

// BinaryAlphabet is the glyph set of the classic effect.
var BinaryAlphabet = []string{"0", "1"}

type Config struct {
	GlyphSize        int
	Increment        float64
	ResetProbability float64
	InitialPosition  float64
	Delay            time.Duration
	Alphabet         []string
	Seed             int64
}

func DefaultConfig() Config {
	return Config{
		GlyphSize:        DefaultGlyphSize,
		Increment:        DefaultIncrement,
		ResetProbability: DefaultResetProbability,
		InitialPosition:  DefaultInitialPosition,
		Delay:            DefaultDelay,
		Alphabet:         append([]string(nil), BinaryAlphabet...),
		Seed:             1,
	}
}

func (c Config) Validate() error {
	if c.GlyphSize <= 0 {
		return fmt.Errorf("%w, got %d", ErrGlyphSize, c.GlyphSize)
	}
	if c.Increment <= 0 {
		return fmt.Errorf("%w, got %g", ErrIncrement, c.Increment)
	}
	if c.ResetProbability < 0 || c.ResetProbability > 1 {
		return fmt.Errorf("%w, got %g", ErrResetProbability, c.ResetProbability)
	}
	if c.Delay <= 0 {
		return fmt.Errorf("%w, got %v", ErrDelay, c.Delay)
	}
	if len(c.Alphabet) == 0 {
		return ErrAlphabet
	}
	for _, g := range c.Alphabet {
		if g == "" {
			return ErrAlphabet
		}
	}
	return nil
}

// Columns is the column count for a surface of the given pixel width.
func (c Config) Columns(width int) int {
	if width <= 0 || c.GlyphSize <= 0 {
		return 0
	}
	return width / c.GlyphSize
}
