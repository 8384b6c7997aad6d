package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/binrain/internal/cells"
	"github.com/san-kum/binrain/internal/clock"
	"github.com/san-kum/binrain/internal/rain"
	"github.com/san-kum/binrain/internal/typewriter"
)

const (
	width          = 80
	height         = 24
	frameRate      = time.Second / 60
	depthCapacity  = 256
	cursorInterval = 500 * time.Millisecond
	defaultGIFPath = "binrain.gif"
)

type TickMsg time.Time

// Hero configures the greeting overlay.
type Hero struct {
	Name   string
	Typing typewriter.Config
}

type Options struct {
	Rain rain.Config
	Dark bool
	// Hero is nil when the overlay is disabled.
	Hero *Hero
	// Clock defaults to the wall clock.
	Clock   clock.TimeProvider
	GIFPath string
}

type tickStats struct {
	depth  []float64
	resets int
}

func (s *tickStats) OnTick(info rain.TickInfo) {
	s.depth = append(s.depth, info.MeanDepth)
	if len(s.depth) > depthCapacity {
		s.depth = s.depth[1:]
	}
	s.resets += info.Resets
}

type styleKey struct{ fg, bg [3]uint8 }

// Model owns the animator, its cell surface and the optional hero overlay.
type Model struct {
	anim          *rain.Animator
	sched         *clock.Scheduler
	grid          *cells.Grid
	typer         *typewriter.Typewriter
	name          string
	stats         *tickStats
	rec           *capture
	styles        map[styleKey]lipgloss.Style
	gifPath       string
	status        string
	saveErr       error
	dark          bool
	paused        bool
	showHelp      bool
	showHero      bool
	width, height int
}

func NewModel(opts Options) (Model, error) {
	sched := clock.NewScheduler(opts.Clock)
	anim, err := rain.New(opts.Rain, sched, nil)
	if err != nil {
		return Model{}, err
	}

	grid := cells.New(width, height-1, opts.Rain.GlyphSize)
	grid.Clear(rain.ThemeFor(opts.Dark).Background())

	m := Model{
		anim:    anim,
		sched:   sched,
		grid:    grid,
		stats:   &tickStats{},
		rec:     newCapture(grid, opts.Rain),
		styles:  make(map[styleKey]lipgloss.Style),
		gifPath: opts.GIFPath,
		dark:    opts.Dark,
		width:   width,
		height:  height,
	}
	if m.gifPath == "" {
		m.gifPath = defaultGIFPath
	}
	if opts.Hero != nil {
		m.typer, err = typewriter.New(opts.Hero.Typing, sched)
		if err != nil {
			return Model{}, err
		}
		m.name = opts.Hero.Name
		m.showHero = true
	}
	anim.AddObserver(m.stats)
	anim.AddObserver(m.rec)
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Init starts the animation and the frame clock.
func (m Model) Init() tea.Cmd {
	if !m.anim.Running() {
		m.anim.Start(m.grid, m.dark)
	}
	if m.typer != nil {
		m.typer.Start()
	}
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.grid.Resize(max(msg.Width, 1), max(msg.Height-1, 1))
		m.anim.Resize(m.grid)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.stop()
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "r":
			m.grid.Clear(rain.ThemeFor(m.dark).Background())
			m.anim.Resize(m.grid)
		case "t":
			m.dark = !m.dark
			m.anim.SetTheme(m.dark)
		case "h":
			m.showHero = !m.showHero && m.typer != nil
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if !m.paused {
			m.sched.Pump()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) toggleRecording() {
	if !m.rec.active {
		m.rec.start()
		m.status = ""
		return
	}
	if err := m.rec.save(m.gifPath); err != nil {
		m.status = "gif: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("saved %s (%d frames)", m.gifPath, len(m.rec.frames))
}

func (m *Model) stop() {
	m.anim.Stop()
	if m.typer != nil {
		m.typer.Stop()
	}
	if m.rec.active {
		if err := m.rec.save(m.gifPath); err != nil {
			m.saveErr = fmt.Errorf("save %s: %w", m.gifPath, err)
			m.status = "gif: " + err.Error()
		}
	}
}

// Err reports a recording that could not be written when the model quit.
func (m Model) Err() error { return m.saveErr }

func (m Model) style(fg, bg [3]uint8) lipgloss.Style {
	key := styleKey{fg, bg}
	if s, ok := m.styles[key]; ok {
		return s
	}
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexColor(fg))).
		Background(lipgloss.Color(hexColor(bg)))
	m.styles[key] = s
	return s
}

type overlay struct {
	col  int
	text string
	fg   lipgloss.Color
}

func (m Model) overlays() map[int]overlay {
	if !m.showHero || m.typer == nil {
		return nil
	}
	theme := ThemeFor(m.dark)
	cursor := " "
	if m.sched.Now().UnixNano()/int64(cursorInterval)%2 == 0 {
		cursor = "▌"
	}
	lines := []overlay{
		{text: "Hello, I'm " + m.name, fg: theme.Text},
		{text: m.typer.Text() + cursor, fg: theme.Primary},
	}
	top := m.grid.Rows()/2 - 1
	out := make(map[int]overlay, len(lines))
	for i, l := range lines {
		n := len([]rune(l.text))
		if n > m.grid.Cols() {
			continue
		}
		l.col = (m.grid.Cols() - n) / 2
		out[top+i] = l
	}
	return out
}

// View renders the cell grid, the hero overlay and a status line.
func (m Model) View() string {
	bg := [3]uint8{}
	bg[0], bg[1], bg[2] = m.grid.Background().Bytes()
	overlays := m.overlays()

	var s strings.Builder
	for row := 0; row < m.grid.Rows(); row++ {
		if o, ok := overlays[row]; ok {
			s.WriteString(m.renderCells(row, 0, o.col, bg))
			hero := lipgloss.NewStyle().Bold(true).Foreground(o.fg).
				Background(lipgloss.Color(hexColor(bg)))
			s.WriteString(hero.Render(o.text))
			s.WriteString(m.renderCells(row, o.col+len([]rune(o.text)), m.grid.Cols(), bg))
		} else {
			s.WriteString(m.renderCells(row, 0, m.grid.Cols(), bg))
		}
		s.WriteByte('\n')
	}
	s.WriteString(m.statusLine())
	return s.String()
}

// renderCells renders cells [from, to) of row, merging runs of equal color.
func (m Model) renderCells(row, from, to int, bg [3]uint8) string {
	var s strings.Builder
	var run []rune
	var runFg [3]uint8
	flush := func() {
		if len(run) > 0 {
			s.WriteString(m.style(runFg, bg).Render(string(run)))
			run = run[:0]
		}
	}
	for col := from; col < to; col++ {
		glyph, fg := ' ', bg
		if m.grid.Visible(col, row) {
			cell := m.grid.Cell(col, row)
			glyph = cell.Glyph
			fg[0], fg[1], fg[2] = cell.Color.Bytes()
		}
		if fg != runFg {
			flush()
			runFg = fg
		}
		run = append(run, glyph)
	}
	flush()
	return s.String()
}

func (m Model) statusLine() string {
	line := lipgloss.NewStyle().MaxWidth(m.width)
	if m.showHelp {
		return line.Render(KeyHint.Render("space pause · r restart · t theme · h hero · g gif · ? help · q quit"))
	}

	status := StatusRunning.Render("RUNNING")
	if m.paused {
		status = StatusPaused.Render("PAUSED")
	}
	if m.rec.active {
		status += " " + StatusRecording.Render(fmt.Sprintf("REC %d", len(m.rec.frames)))
	}
	parts := []string{
		status,
		MetricLabel.Render("theme ") + MetricValue.Render(m.anim.Theme().Name),
		MetricLabel.Render("cols ") + MetricValue.Render(fmt.Sprint(m.anim.Columns())),
		MetricLabel.Render("tick ") + MetricValue.Render(fmt.Sprint(m.anim.Ticks())),
		MetricLabel.Render("resets ") + MetricValue.Render(fmt.Sprint(m.stats.resets)),
		MetricLabel.Render("depth ") + SparklineChart(m.stats.depth, 16),
	}
	if m.status != "" {
		parts = append(parts, KeyHint.Render(m.status))
	} else {
		parts = append(parts, KeyHint.Render("?:help"))
	}
	return line.Render(" " + strings.Join(parts, "  "))
}

// Run starts the full-screen program and blocks until the user quits.
func Run(opts Options) error {
	m, err := NewModel(opts)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.Err()
	}
	return nil
}
