package rain

import (
	"math/rand"
)

// Animator paints the rain effect onto a Surface, one tick per scheduler
// interval, until stopped.
type Animator struct {
	cfg       Config
	sched     Scheduler
	src       Source
	surface   Surface
	theme     Theme
	positions ColumnState
	observers []Observer

	running bool
	cancel  func()
	gen     uint64
	ticks   int
}

// New validates cfg and builds an animator. A nil src uses a math/rand
// source seeded with cfg.Seed.
func New(cfg Config, sched Scheduler, src Source) (*Animator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, ErrNoScheduler
	}
	if src == nil {
		src = rand.New(rand.NewSource(cfg.Seed))
	}
	return &Animator{
		cfg:       cfg,
		sched:     sched,
		src:       src,
		theme:     ThemeDark,
		observers: make([]Observer, 0),
	}, nil
}

func (a *Animator) AddObserver(o Observer) { a.observers = append(a.observers, o) }

// Start sizes the column table to surface, paints the first tick and
// schedules the rest. Starting a running animator or passing a nil surface
// is a caller bug and panics.
func (a *Animator) Start(surface Surface, isDark bool) {
	if surface == nil {
		panic("rain: Start called with nil surface")
	}
	if a.running {
		panic("rain: Start called on a running animator")
	}
	a.running = true
	a.gen++
	a.SetTheme(isDark)
	a.Resize(surface)
	a.loop(a.gen)
}

// Stop cancels the pending tick. It is safe to call repeatedly. A tick that
// is already executing completes but does not reschedule.
func (a *Animator) Stop() {
	a.running = false
	a.gen++
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// Resize adopts surface and rebuilds the column table from its current
// width. All columns restart from the initial position.
func (a *Animator) Resize(surface Surface) {
	if surface == nil {
		panic("rain: Resize called with nil surface")
	}
	a.surface = surface
	w, _ := surface.Size()
	a.positions = a.positions.reset(a.cfg.Columns(w), a.cfg.InitialPosition)
}

// SetTheme switches the colors used from the next tick on. Column state and
// the schedule are left untouched.
func (a *Animator) SetTheme(isDark bool) { a.theme = ThemeFor(isDark) }

func (a *Animator) loop(gen uint64) {
	if gen != a.gen || !a.running {
		return
	}
	a.cancel = nil
	a.Tick()
	if gen != a.gen || !a.running {
		return
	}
	a.cancel = a.sched.AfterFunc(a.cfg.Delay, func() { a.loop(gen) })
}

// Tick runs one simulation and paint step against the current surface.
func (a *Animator) Tick() {
	if a.surface == nil {
		panic("rain: Tick called before Start or Resize")
	}
	w, h := a.surface.Size()
	g := float64(a.cfg.GlyphSize)
	bottom := float64(h)

	a.surface.SetFillColor(a.theme.Trail)
	a.surface.FillRect(0, 0, float64(w), float64(h))
	a.surface.SetFillColor(a.theme.Glyph)
	a.surface.SetFont(a.cfg.GlyphSize)

	info := TickInfo{
		Index:   a.ticks,
		Columns: len(a.positions),
		Glyphs:  make([]int, len(a.cfg.Alphabet)),
		Dark:    a.theme.Name == ThemeDark.Name,
	}

	var depth float64
	for i := range a.positions {
		k := a.pickGlyph()
		info.Glyphs[k]++
		a.surface.FillText(a.cfg.Alphabet[k], float64(i)*g, a.positions[i]*g)

		if a.positions[i]*g > bottom && a.src.Float64() < a.cfg.ResetProbability {
			a.positions[i] = 0
			info.Resets++
		}
		a.positions[i] += a.cfg.Increment
		depth += a.positions[i]
	}
	if n := len(a.positions); n > 0 {
		info.MeanDepth = depth / float64(n)
	}

	a.ticks++
	for _, o := range a.observers {
		o.OnTick(info)
	}
}

func (a *Animator) pickGlyph() int {
	n := len(a.cfg.Alphabet)
	k := int(a.src.Float64() * float64(n))
	if k >= n {
		k = n - 1
	}
	if k < 0 {
		k = 0
	}
	return k
}

func (a *Animator) Running() bool { return a.running }

func (a *Animator) Ticks() int { return a.ticks }

func (a *Animator) Theme() Theme { return a.theme }

func (a *Animator) Config() Config { return a.cfg }

func (a *Animator) Columns() int { return len(a.positions) }

// Positions returns a copy of the column table.
func (a *Animator) Positions() ColumnState { return a.positions.Clone() }
