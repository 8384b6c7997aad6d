// Package record drives a rain animator offline, against a mock clock, and
// encodes the result as an animated GIF, a PNG snapshot or an SVG document.
package record

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"time"

	"github.com/san-kum/binrain/internal/clock"
	"github.com/san-kum/binrain/internal/export"
	"github.com/san-kum/binrain/internal/metrics"
	"github.com/san-kum/binrain/internal/rain"
	"github.com/san-kum/binrain/internal/raster"
)

var (
	ErrTicks     = errors.New("record: tick count must be at least 1")
	ErrSize      = errors.New("record: surface must be at least one glyph in each direction")
	ErrFormat    = errors.New("record: unknown format")
	ErrNoFrames  = errors.New("record: no frames captured")
	ErrWrongKind = errors.New("record: format not supported by this recorder's surface")
)

type Format string

const (
	FormatGIF Format = "gif"
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatGIF, FormatPNG, FormatSVG:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatGIF:
		return "image/gif"
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	}
	return "application/octet-stream"
}

// Canvas is a rain surface that can change size.
type Canvas interface {
	rain.Surface
	Resize(w, h int)
}

type Options struct {
	Width, Height int
	Dark          bool
	Format        Format
	// Capture keeps a quantized frame after every tick (GIF output).
	Capture bool
}

type Recorder struct {
	cfg     rain.Config
	opts    Options
	clock   *clock.MockTimeProvider
	sched   *clock.Scheduler
	anim    *rain.Animator
	canvas  Canvas
	raster  *raster.Surface
	svg     *export.SVG
	dark    bool
	started bool
	palette color.Palette
	frames  []*image.Paletted
	series  *metrics.Series
	metrics *metrics.Set
}

func New(cfg rain.Config, opts Options) (*Recorder, error) {
	if opts.Width < cfg.GlyphSize || opts.Height < cfg.GlyphSize {
		return nil, fmt.Errorf("%w: %dx%d", ErrSize, opts.Width, opts.Height)
	}
	if opts.Format == "" {
		opts.Format = FormatGIF
	}
	if _, err := ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}

	mock := clock.NewMockTimeProvider(time.Unix(0, 0))
	sched := clock.NewScheduler(mock)
	anim, err := rain.New(cfg, sched, nil)
	if err != nil {
		return nil, err
	}

	r := &Recorder{
		cfg:     cfg,
		opts:    opts,
		clock:   mock,
		sched:   sched,
		anim:    anim,
		dark:    opts.Dark,
		palette: Palette(),
		series:  &metrics.Series{},
		metrics: metrics.Defaults(),
	}
	bg := rain.ThemeFor(opts.Dark).Background()
	if opts.Format == FormatSVG {
		r.svg = export.NewSVG(opts.Width, opts.Height, bg)
		r.canvas = r.svg
	} else {
		r.raster = raster.New(opts.Width, opts.Height)
		r.raster.Clear(bg)
		r.canvas = r.raster
	}
	anim.AddObserver(r.series)
	anim.AddObserver(r.metrics)
	return r, nil
}

// Palette covers both themes' background-to-glyph ramps.
func Palette() color.Palette {
	p := raster.Gradient(rain.ThemeDark.Background(), rain.ThemeDark.Glyph, 96)
	p = append(p, raster.Gradient(rain.ThemeLight.Background(), rain.ThemeLight.Glyph, 96)...)
	return append(p, color.Black, color.White)
}

func (r *Recorder) AddObserver(o rain.Observer) { r.anim.AddObserver(o) }

// Start paints the first tick.
func (r *Recorder) Start() {
	if r.started {
		return
	}
	r.started = true
	r.anim.Start(r.canvas, r.dark)
	r.capture()
}

// Step advances the mock clock by one tick delay n times.
func (r *Recorder) Step(n int) {
	r.Start()
	for i := 0; i < n; i++ {
		r.clock.Advance(r.cfg.Delay)
		if r.sched.Pump() > 0 {
			r.capture()
		}
	}
}

// Run starts the animation and records ticks ticks in total.
func (r *Recorder) Run(ticks int) error {
	if ticks < 1 {
		return ErrTicks
	}
	before := r.anim.Ticks()
	r.Start()
	r.Step(ticks - (r.anim.Ticks() - before))
	return nil
}

func (r *Recorder) Resize(w, h int) error {
	if w < r.cfg.GlyphSize || h < r.cfg.GlyphSize {
		return fmt.Errorf("%w: %dx%d", ErrSize, w, h)
	}
	r.canvas.Resize(w, h)
	r.anim.Resize(r.canvas)
	return nil
}

func (r *Recorder) SetTheme(dark bool) {
	r.dark = dark
	r.anim.SetTheme(dark)
}

func (r *Recorder) Stop() { r.anim.Stop() }

func (r *Recorder) capture() {
	if !r.opts.Capture || r.raster == nil {
		return
	}
	r.frames = append(r.frames, r.raster.Paletted(r.palette))
}

func (r *Recorder) Ticks() int { return r.anim.Ticks() }

func (r *Recorder) Frames() []*image.Paletted { return r.frames }

func (r *Recorder) Series() *metrics.Series { return r.series }

func (r *Recorder) Metrics() map[string]float64 { return r.metrics.Values() }

func (r *Recorder) Animator() *rain.Animator { return r.anim }

func (r *Recorder) Size() (int, int) { return r.canvas.Size() }

func (r *Recorder) Format() Format { return r.opts.Format }

func (r *Recorder) Encode(w io.Writer) error {
	switch r.opts.Format {
	case FormatGIF:
		return r.EncodeGIF(w)
	case FormatPNG:
		return r.EncodePNG(w)
	case FormatSVG:
		return r.EncodeSVG(w)
	}
	return ErrFormat
}

func (r *Recorder) EncodeGIF(w io.Writer) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	delay := int(r.cfg.Delay / (10 * time.Millisecond))
	if delay < 1 {
		delay = 1
	}
	anim := gif.GIF{LoopCount: 0}
	for _, f := range r.frames {
		b := f.Bounds()
		anim.Config.Width = max(anim.Config.Width, b.Dx())
		anim.Config.Height = max(anim.Config.Height, b.Dy())
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, delay)
	}
	anim.Config.ColorModel = r.palette
	return gif.EncodeAll(w, &anim)
}

// EncodePNG writes the current frame.
func (r *Recorder) EncodePNG(w io.Writer) error {
	if r.raster == nil {
		return ErrWrongKind
	}
	return png.Encode(w, r.raster.Image())
}

func (r *Recorder) EncodeSVG(w io.Writer) error {
	if r.svg == nil {
		return ErrWrongKind
	}
	_, err := r.svg.WriteTo(w)
	return err
}
