// Package tui runs the rain animation directly on a tcell screen, drawing
// one glyph per terminal cell with true-color styles.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/san-kum/binrain/internal/cells"
	"github.com/san-kum/binrain/internal/clock"
	"github.com/san-kum/binrain/internal/rain"
	"github.com/san-kum/binrain/internal/typewriter"
)

const frameRate = 16 * time.Millisecond // ~60 FPS

type Options struct {
	Rain     rain.Config
	Dark     bool
	HeroName string
	// Hero is nil when the greeting overlay is disabled.
	Hero  *typewriter.Config
	Clock clock.TimeProvider
}

type App struct {
	screen tcell.Screen
	sched  *clock.Scheduler
	anim   *rain.Animator
	grid   *cells.Grid
	typer  *typewriter.Typewriter
	name   string
	dark   bool
	paused bool
}

// New binds an animator to an initialised screen.
func New(screen tcell.Screen, opts Options) (*App, error) {
	sched := clock.NewScheduler(opts.Clock)
	anim, err := rain.New(opts.Rain, sched, nil)
	if err != nil {
		return nil, err
	}
	a := &App{
		screen: screen,
		sched:  sched,
		anim:   anim,
		grid:   cells.New(0, 0, opts.Rain.GlyphSize),
		name:   opts.HeroName,
		dark:   opts.Dark,
	}
	if opts.Hero != nil {
		if a.typer, err = typewriter.New(*opts.Hero, sched); err != nil {
			return nil, err
		}
	}
	a.fitScreen()
	a.grid.Clear(rain.ThemeFor(a.dark).Background())
	return a, nil
}

// fitScreen sizes the grid to the screen minus the status row.
func (a *App) fitScreen() {
	w, h := a.screen.Size()
	a.grid.Resize(max(w, 1), max(h-1, 1))
}

func (a *App) Start() {
	a.anim.Start(a.grid, a.dark)
	if a.typer != nil {
		a.typer.Start()
	}
}

func (a *App) Stop() {
	a.anim.Stop()
	if a.typer != nil {
		a.typer.Stop()
	}
}

// HandleEvent applies one terminal event and reports whether to keep running.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		a.fitScreen()
		a.anim.Resize(a.grid)
		a.screen.Sync()
	}
	return true
}

func (a *App) handleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
		switch r {
		case 'q':
			return false
		case ' ':
			a.paused = !a.paused
		case 't':
			a.dark = !a.dark
			a.anim.SetTheme(a.dark)
		case 'r':
			a.grid.Clear(rain.ThemeFor(a.dark).Background())
			a.anim.Resize(a.grid)
		}
	}
	return true
}

// Frame pumps due ticks and redraws the screen.
func (a *App) Frame() {
	if !a.paused {
		a.sched.Pump()
	}
	a.Draw()
}

func rgb(c cells.RGB) tcell.Color {
	r, g, b := c.Bytes()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (a *App) Draw() {
	bg := rgb(a.grid.Background())
	base := tcell.StyleDefault.Background(bg)

	for row := 0; row < a.grid.Rows(); row++ {
		for col := 0; col < a.grid.Cols(); col++ {
			if a.grid.Visible(col, row) {
				cell := a.grid.Cell(col, row)
				a.screen.SetContent(col, row, cell.Glyph, nil, base.Foreground(rgb(cell.Color)))
			} else {
				a.screen.SetContent(col, row, ' ', nil, base)
			}
		}
	}
	a.drawHero(base)
	a.drawStatus()
	a.screen.Show()
}

func (a *App) drawHero(base tcell.Style) {
	if a.typer == nil {
		return
	}
	theme := rain.ThemeFor(a.dark)
	text := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	if !a.dark {
		text = tcell.StyleDefault.Foreground(tcell.ColorBlack)
	}
	g := theme.Glyph
	accent := base.Foreground(tcell.NewRGBColor(int32(g.R), int32(g.G), int32(g.B))).Bold(true)

	mid := a.grid.Rows()/2 - 1
	a.putCentered(mid, "Hello, I'm "+a.name, text.Background(rgb(a.grid.Background())).Bold(true))
	a.putCentered(mid+1, a.typer.Text()+"▌", accent)
}

func (a *App) putCentered(row int, s string, style tcell.Style) {
	runes := []rune(s)
	if row < 0 || len(runes) > a.grid.Cols() {
		return
	}
	x := (a.grid.Cols() - len(runes)) / 2
	for i, r := range runes {
		a.screen.SetContent(x+i, row, r, nil, style)
	}
}

func (a *App) drawStatus() {
	w, _ := a.screen.Size()
	state := "RUNNING"
	if a.paused {
		state = "PAUSED"
	}
	line := fmt.Sprintf(" %s  %s  cols %d  tick %d  space pause · t theme · r restart · q quit",
		state, a.anim.Theme().Name, a.anim.Columns(), a.anim.Ticks())
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	row := a.grid.Rows()
	runes := []rune(line)
	for x := 0; x < w; x++ {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		a.screen.SetContent(x, row, r, nil, style)
	}
}

// Run drives the app until ctx is done or the user quits.
func (a *App) Run(ctx context.Context) error {
	a.Start()
	defer a.Stop()

	ticker := time.NewTicker(frameRate)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-eventChan:
			if !a.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			a.Frame()
		}
	}
}

// Run opens the terminal screen and runs the app on it.
func Run(ctx context.Context, opts Options) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.HideCursor()

	app, err := New(screen, opts)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
