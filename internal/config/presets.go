package config

import (
	"sort"
	"time"
)

// Preset tweaks the rain section of a default configuration.
type Preset struct {
	Description string
	Apply       func(*RainConfig)
}

var Presets = map[string]Preset{
	"classic": {
		Description: "the classic effect: 14px binary glyphs every 100ms",
		Apply:       func(*RainConfig) {},
	},
	"drizzle": {
		Description: "slow, sparse columns that rarely restart",
		Apply: func(r *RainConfig) {
			r.Increment = 0.5
			r.ResetProbability = 0.002
			r.Delay = 150 * time.Millisecond
		},
	},
	"storm": {
		Description: "fast columns restarting often",
		Apply: func(r *RainConfig) {
			r.Increment = 1
			r.ResetProbability = 0.05
			r.Delay = 50 * time.Millisecond
		},
	},
	"mono": {
		Description: "larger glyphs drawn from a single digit",
		Apply: func(r *RainConfig) {
			r.GlyphSize = 18
			r.Alphabet = []string{"1"}
		},
	},
}

// GetPreset returns the default configuration with the named preset applied,
// or nil when no such preset exists.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.Apply(&cfg.Rain)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
