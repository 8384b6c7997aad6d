package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/binrain/internal/rain"
	"github.com/san-kum/binrain/internal/record"
	"github.com/san-kum/binrain/internal/typewriter"
)

const (
	DefaultWidth     = 640
	DefaultHeight    = 360
	DefaultTicks     = 60
	DefaultFormat    = "gif"
	DefaultAddr      = ":8080"
	DefaultMaxTicks  = 600
	DefaultMaxPixels = 1920 * 1080
	DefaultMaxSide   = 8192
	DefaultDataDir   = "data"
	DefaultName      = "Haymanot Asmare"

	// Server-side work caps: SVG text elements (columns x ticks) and GIF
	// frame pixels (width x height x ticks).
	DefaultMaxGlyphs      = 1 << 18
	DefaultMaxFramePixels = 256 << 20
)

// DefaultPhrases are the roles cycled by the hero overlay.
var DefaultPhrases = []string{
	"Full Stack Developer",
	"Problem Solver",
	"React Developer",
	"Django Expert",
}

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Theme   string       `yaml:"theme"`
	Seed    int64        `yaml:"seed"`
	Rain    RainConfig   `yaml:"rain"`
	Render  RenderConfig `yaml:"render"`
	Hero    HeroConfig   `yaml:"hero"`
	Server  ServerConfig `yaml:"server"`
	DataDir string       `yaml:"data_dir"`
}

type RainConfig struct {
	GlyphSize        int           `yaml:"glyph_size"`
	Increment        float64       `yaml:"increment"`
	ResetProbability float64       `yaml:"reset_probability"`
	InitialPosition  float64       `yaml:"initial_position"`
	Delay            time.Duration `yaml:"delay"`
	Alphabet         []string      `yaml:"alphabet"`
}

// RenderConfig sizes headless recordings.
type RenderConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Ticks  int    `yaml:"ticks"`
	Format string `yaml:"format"`
}

type HeroConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Name        string        `yaml:"name"`
	Phrases     []string      `yaml:"phrases"`
	TypeDelay   time.Duration `yaml:"type_delay"`
	DeleteDelay time.Duration `yaml:"delete_delay"`
	Hold        time.Duration `yaml:"hold"`
}

type ServerConfig struct {
	Addr           string `yaml:"addr"`
	MaxTicks       int    `yaml:"max_ticks"`
	MaxPixels      int    `yaml:"max_pixels"`
	MaxSide        int    `yaml:"max_side"`
	MaxGlyphs      int    `yaml:"max_glyphs"`
	MaxFramePixels int    `yaml:"max_frame_pixels"`
}

func DefaultConfig() *Config {
	return &Config{
		Theme: "dark",
		Seed:  1,
		Rain: RainConfig{
			GlyphSize:        rain.DefaultGlyphSize,
			Increment:        rain.DefaultIncrement,
			ResetProbability: rain.DefaultResetProbability,
			InitialPosition:  rain.DefaultInitialPosition,
			Delay:            rain.DefaultDelay,
			Alphabet:         append([]string(nil), rain.BinaryAlphabet...),
		},
		Render: RenderConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Ticks:  DefaultTicks,
			Format: DefaultFormat,
		},
		Hero: HeroConfig{
			Enabled:     true,
			Name:        DefaultName,
			Phrases:     append([]string(nil), DefaultPhrases...),
			TypeDelay:   typewriter.DefaultTypeDelay,
			DeleteDelay: typewriter.DefaultDeleteDelay,
			Hold:        typewriter.DefaultHold,
		},
		Server: ServerConfig{
			Addr:           DefaultAddr,
			MaxTicks:       DefaultMaxTicks,
			MaxPixels:      DefaultMaxPixels,
			MaxSide:        DefaultMaxSide,
			MaxGlyphs:      DefaultMaxGlyphs,
			MaxFramePixels: DefaultMaxFramePixels,
		},
		DataDir: DefaultDataDir,
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from BINRAIN_* variables. PORT is honoured for
// the server address when BINRAIN_ADDR is unset.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, set func(string) error) {
		if v, ok := lookup(key); ok && v != "" {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}

	str("BINRAIN_THEME", &c.Theme)
	str("BINRAIN_DATA_DIR", &c.DataDir)
	str("BINRAIN_FORMAT", &c.Render.Format)
	str("BINRAIN_HERO_NAME", &c.Hero.Name)
	if v, ok := lookup("PORT"); ok && v != "" {
		c.Server.Addr = ":" + v
	}
	str("BINRAIN_ADDR", &c.Server.Addr)

	num("BINRAIN_SEED", func(v string) (err error) {
		c.Seed, err = strconv.ParseInt(v, 10, 64)
		return
	})
	num("BINRAIN_GLYPH_SIZE", func(v string) (err error) {
		c.Rain.GlyphSize, err = strconv.Atoi(v)
		return
	})
	num("BINRAIN_INCREMENT", func(v string) (err error) {
		c.Rain.Increment, err = strconv.ParseFloat(v, 64)
		return
	})
	num("BINRAIN_RESET_PROBABILITY", func(v string) (err error) {
		c.Rain.ResetProbability, err = strconv.ParseFloat(v, 64)
		return
	})
	num("BINRAIN_DELAY", func(v string) (err error) {
		c.Rain.Delay, err = time.ParseDuration(v)
		return
	})
	num("BINRAIN_HERO", func(v string) (err error) {
		c.Hero.Enabled, err = strconv.ParseBool(v)
		return
	})

	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	if err := c.ToRain().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := rain.ParseTheme(c.Theme); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Render.Width < c.Rain.GlyphSize || c.Render.Height < c.Rain.GlyphSize {
		return fmt.Errorf("%w: render size %dx%d is smaller than one glyph", ErrInvalid, c.Render.Width, c.Render.Height)
	}
	if c.Render.Ticks < 1 {
		return fmt.Errorf("%w: render ticks must be at least 1", ErrInvalid)
	}
	if _, err := record.ParseFormat(c.Render.Format); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Hero.Enabled {
		if err := c.ToTypewriter().Validate(); err != nil {
			return fmt.Errorf("%w: hero: %w", ErrInvalid, err)
		}
	}
	if c.Server.MaxTicks < 1 || c.Server.MaxPixels < 1 || c.Server.MaxSide < 1 ||
		c.Server.MaxGlyphs < 1 || c.Server.MaxFramePixels < 1 {
		return fmt.Errorf("%w: server limits must be positive", ErrInvalid)
	}
	return nil
}

// Dark reports whether the configured theme is the dark one. Unknown names
// fall back to dark; Validate reports them.
func (c *Config) Dark() bool {
	dark, err := rain.ParseTheme(c.Theme)
	return err != nil || dark
}

func (c *Config) ToRain() rain.Config {
	return rain.Config{
		GlyphSize:        c.Rain.GlyphSize,
		Increment:        c.Rain.Increment,
		ResetProbability: c.Rain.ResetProbability,
		InitialPosition:  c.Rain.InitialPosition,
		Delay:            c.Rain.Delay,
		Alphabet:         append([]string(nil), c.Rain.Alphabet...),
		Seed:             c.Seed,
	}
}

func (c *Config) ToTypewriter() typewriter.Config {
	return typewriter.Config{
		Phrases:     append([]string(nil), c.Hero.Phrases...),
		TypeDelay:   c.Hero.TypeDelay,
		DeleteDelay: c.Hero.DeleteDelay,
		Hold:        c.Hero.Hold,
	}
}
