// Package gui shows the rain in a resizable desktop window using ebiten.
package gui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text" //nolint:staticcheck // v1 text API takes x/image faces directly
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"github.com/san-kum/binrain/internal/clock"
	"github.com/san-kum/binrain/internal/fonts"
	"github.com/san-kum/binrain/internal/rain"
	"github.com/san-kum/binrain/internal/typewriter"
)

const (
	windowWidth  = 960
	windowHeight = 540
)

type Options struct {
	Rain     rain.Config
	Dark     bool
	HeroName string
	Hero     *typewriter.Config
}

type App struct {
	sched    *clock.Scheduler
	anim     *rain.Animator
	surface  *Surface
	typer    *typewriter.Typewriter
	name     string
	dark     bool
	paused   bool
	showHUD  bool
	title    font.Face
	subtitle font.Face
	small    font.Face
}

func NewApp(opts Options) (*App, error) {
	sched := clock.NewScheduler(nil)
	anim, err := rain.New(opts.Rain, sched, nil)
	if err != nil {
		return nil, err
	}
	a := &App{
		sched:    sched,
		anim:     anim,
		name:     opts.HeroName,
		dark:     opts.Dark,
		showHUD:  true,
		title:    fonts.Mono(40),
		subtitle: fonts.Mono(24),
		small:    fonts.Mono(12),
	}
	if opts.Hero != nil {
		if a.typer, err = typewriter.New(*opts.Hero, sched); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *App) background() color.Color { return rain.ThemeFor(a.dark).Background() }

func (a *App) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		a.anim.Stop()
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		a.paused = !a.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		a.dark = !a.dark
		a.anim.SetTheme(a.dark)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if a.surface != nil {
			a.surface.Clear(a.background())
			a.anim.Resize(a.surface)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		a.showHUD = !a.showHUD
	}

	if a.surface == nil {
		return nil
	}
	if !a.anim.Running() {
		a.anim.Start(a.surface, a.dark)
		if a.typer != nil {
			a.typer.Start()
		}
	}
	if !a.paused {
		a.sched.Pump()
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.surface == nil {
		return
	}
	screen.DrawImage(a.surface.Image(), nil)
	if !a.showHUD {
		return
	}

	w, h := a.surface.Size()
	theme := rain.ThemeFor(a.dark)
	fg := color.Color(color.White)
	if !a.dark {
		fg = color.RGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}
	}

	if a.typer != nil {
		greeting := "Hello, I'm " + a.name
		role := a.typer.Text() + "|"
		gw := font.MeasureString(a.title, greeting).Ceil()
		rw := font.MeasureString(a.subtitle, role).Ceil()
		text.Draw(screen, greeting, a.title, (w-gw)/2, h/2-10, fg)
		text.Draw(screen, role, a.subtitle, (w-rw)/2, h/2+30, theme.Glyph)
	}

	state := "running"
	if a.paused {
		state = "paused"
	}
	status := fmt.Sprintf("%s · %s · %d columns · tick %d · %.0f fps   space pause  t theme  r restart  h hud  q quit",
		state, theme.Name, a.anim.Columns(), a.anim.Ticks(), ebiten.ActualFPS())
	vector.DrawFilledRect(screen, 0, float32(h-20), float32(w), 20, theme.Background(), false)
	text.Draw(screen, status, a.small, 8, h-6, fg)
}

// Layout resizes the rain surface to the window; the animator rebuilds its
// columns whenever the width or height changes.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if a.surface == nil {
		a.surface = NewSurface(outsideWidth, outsideHeight)
		a.surface.Clear(a.background())
		return outsideWidth, outsideHeight
	}
	if w, h := a.surface.Size(); w != outsideWidth || h != outsideHeight {
		a.surface.Resize(outsideWidth, outsideHeight, a.background())
		if a.anim.Running() {
			a.anim.Resize(a.surface)
		}
	}
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it is closed.
func Run(opts Options) error {
	app, err := NewApp(opts)
	if err != nil {
		return err
	}
	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowTitle("binrain")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(app)
}
