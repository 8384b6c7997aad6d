package rain

import "errors"

// Configuration errors returned by New and Config.Validate.
var (
	ErrGlyphSize        = errors.New("rain: glyph size must be positive")
	ErrIncrement        = errors.New("rain: increment must be positive")
	ErrResetProbability = errors.New("rain: reset probability must be within [0, 1]")
	ErrDelay            = errors.New("rain: tick delay must be positive")
	ErrAlphabet         = errors.New("rain: alphabet must contain at least one non-empty glyph")
	ErrNoScheduler      = errors.New("rain: scheduler is required")
	ErrUnknownTheme     = errors.New("rain: unknown theme")
)
