// Package typewriter animates a cycling list of phrases the way a person
// types them: one rune at a time, a pause once the phrase is complete, a
// faster delete, then the next phrase.
package typewriter

import (
	"errors"
	"time"
)

const (
	DefaultTypeDelay   = 100 * time.Millisecond
	DefaultDeleteDelay = 50 * time.Millisecond
	DefaultHold        = 2 * time.Second
)

var (
	ErrNoPhrases = errors.New("typewriter: at least one phrase is required")
	ErrDelay     = errors.New("typewriter: delays must be positive")
)

// Scheduler runs fn once after d; the returned function cancels it.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

type Config struct {
	Phrases     []string
	TypeDelay   time.Duration
	DeleteDelay time.Duration
	Hold        time.Duration
}

func DefaultConfig(phrases ...string) Config {
	return Config{
		Phrases:     phrases,
		TypeDelay:   DefaultTypeDelay,
		DeleteDelay: DefaultDeleteDelay,
		Hold:        DefaultHold,
	}
}

func (c Config) Validate() error {
	if len(c.Phrases) == 0 {
		return ErrNoPhrases
	}
	if c.TypeDelay <= 0 || c.DeleteDelay <= 0 || c.Hold <= 0 {
		return ErrDelay
	}
	return nil
}

type Typewriter struct {
	cfg      Config
	sched    Scheduler
	phrases  [][]rune
	index    int
	shown    int
	deleting bool
	running  bool
	cancel   func()
}

func New(cfg Config, sched Scheduler) (*Typewriter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	phrases := make([][]rune, len(cfg.Phrases))
	for i, p := range cfg.Phrases {
		phrases[i] = []rune(p)
	}
	return &Typewriter{cfg: cfg, sched: sched, phrases: phrases}, nil
}

func (t *Typewriter) Start() {
	if t.running {
		return
	}
	t.running = true
	t.cancel = t.sched.AfterFunc(t.cfg.TypeDelay, t.run)
}

func (t *Typewriter) Stop() {
	t.running = false
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *Typewriter) run() {
	if !t.running {
		return
	}
	next := t.Step()
	t.cancel = t.sched.AfterFunc(next, t.run)
}

// Step advances the effect by one action and returns the delay before the
// next one.
func (t *Typewriter) Step() time.Duration {
	phrase := t.phrases[t.index]
	if !t.deleting {
		if t.shown < len(phrase) {
			t.shown++
			return t.cfg.TypeDelay
		}
		t.deleting = true
		return t.cfg.Hold
	}
	if t.shown > 0 {
		t.shown--
		return t.cfg.DeleteDelay
	}
	t.deleting = false
	t.index = (t.index + 1) % len(t.phrases)
	return t.cfg.TypeDelay
}

// Text is the currently visible prefix of the active phrase.
func (t *Typewriter) Text() string { return string(t.phrases[t.index][:t.shown]) }

func (t *Typewriter) Phrase() int { return t.index }

func (t *Typewriter) Deleting() bool { return t.deleting }

func (t *Typewriter) Running() bool { return t.running }
