package rain_test

import (
	"image/color"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/binrain/internal/clock"
	"github.com/san-kum/binrain/internal/rain"
)

type call struct {
	op    string
	color color.Color
	text  string
	x, y  float64
	w, h  float64
	size  int
}

type fakeSurface struct {
	width, height int
	calls         []call
}

func (f *fakeSurface) Size() (int, int) { return f.width, f.height }
func (f *fakeSurface) SetFillColor(c color.Color) {
	f.calls = append(f.calls, call{op: "color", color: c})
}
func (f *fakeSurface) SetFont(px int) { f.calls = append(f.calls, call{op: "font", size: px}) }
func (f *fakeSurface) FillRect(x, y, w, h float64) {
	f.calls = append(f.calls, call{op: "rect", x: x, y: y, w: w, h: h})
}
func (f *fakeSurface) FillText(s string, x, y float64) {
	f.calls = append(f.calls, call{op: "text", text: s, x: x, y: y})
}

func (f *fakeSurface) count(op string) int {
	n := 0
	for _, c := range f.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func (f *fakeSurface) texts() []string {
	var out []string
	for _, c := range f.calls {
		if c.op == "text" {
			out = append(out, c.text)
		}
	}
	return out
}

// seqSource replays a fixed sequence of values.
type seqSource struct {
	vals []float64
	i    int
}

func (s *seqSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func uniform(n int, v float64) rain.ColumnState {
	out := make(rain.ColumnState, n)
	for i := range out {
		out[i] = v
	}
	return out
}

var _ = Describe("Animator", func() {
	var (
		mock  *clock.MockTimeProvider
		sched *clock.Scheduler
		cfg   rain.Config
	)

	BeforeEach(func() {
		mock = clock.NewMockTimeProvider(time.Unix(0, 0))
		sched = clock.NewScheduler(mock)
		cfg = rain.DefaultConfig()
	})

	newAnimator := func(src rain.Source) *rain.Animator {
		a, err := rain.New(cfg, sched, src)
		Expect(err).NotTo(HaveOccurred())
		return a
	}

	Describe("New", func() {
		DescribeTable("rejects invalid configuration",
			func(mutate func(*rain.Config), want error) {
				mutate(&cfg)
				_, err := rain.New(cfg, sched, nil)
				Expect(err).To(MatchError(want))
			},
			Entry("zero glyph size", func(c *rain.Config) { c.GlyphSize = 0 }, rain.ErrGlyphSize),
			Entry("negative increment", func(c *rain.Config) { c.Increment = -1 }, rain.ErrIncrement),
			Entry("probability above one", func(c *rain.Config) { c.ResetProbability = 1.5 }, rain.ErrResetProbability),
			Entry("zero delay", func(c *rain.Config) { c.Delay = 0 }, rain.ErrDelay),
			Entry("empty alphabet", func(c *rain.Config) { c.Alphabet = nil }, rain.ErrAlphabet),
			Entry("blank glyph", func(c *rain.Config) { c.Alphabet = []string{"0", ""} }, rain.ErrAlphabet),
		)

		It("requires a scheduler", func() {
			_, err := rain.New(cfg, nil, nil)
			Expect(err).To(MatchError(rain.ErrNoScheduler))
		})
	})

	Describe("Resize", func() {
		DescribeTable("sizes the column table to floor(width / glyph size)",
			func(width, want int) {
				a := newAnimator(nil)
				a.Resize(&fakeSurface{width: width, height: 100})
				Expect(a.Columns()).To(Equal(want))
				Expect(a.Positions()).To(HaveLen(want))
			},
			Entry("empty", 0, 0),
			Entry("narrower than a glyph", 13, 0),
			Entry("one glyph", 14, 1),
			Entry("exact multiple", 140, 10),
			Entry("remainder dropped", 1000, 71),
			Entry("negative width", -20, 0),
		)

		It("resets every column to the initial position", func() {
			a := newAnimator(nil)
			s := &fakeSurface{width: 140, height: 280}
			a.Start(s, true)
			a.Tick()
			Expect(a.Positions()).NotTo(Equal(uniform(10, 1)))

			s.width = 280
			a.Resize(s)
			Expect(a.Positions()).To(Equal(uniform(20, 1)))
		})
	})

	Describe("Tick", func() {
		It("advances a 140x280 surface from 1 to 1.75 in one tick", func() {
			a := newAnimator(nil)
			a.Resize(&fakeSurface{width: 140, height: 280})
			Expect(a.Positions()).To(Equal(uniform(10, 1)))

			a.Tick()
			Expect(a.Positions()).To(Equal(uniform(10, 1.75)))
		})

		It("paints the trail, then one glyph per column", func() {
			a := newAnimator(&seqSource{vals: []float64{0.1, 0.9}})
			s := &fakeSurface{width: 28, height: 1000}
			a.Resize(s)
			a.Tick()

			Expect(s.calls).To(HaveLen(6))
			Expect(s.calls[0].op).To(Equal("color"))
			Expect(s.calls[1]).To(Equal(call{op: "rect", x: 0, y: 0, w: 28, h: 1000}))
			Expect(s.calls[2].op).To(Equal("color"))
			Expect(s.calls[3]).To(Equal(call{op: "font", size: 14}))
			Expect(s.calls[4]).To(Equal(call{op: "text", text: "0", x: 0, y: 14}))
			Expect(s.calls[5]).To(Equal(call{op: "text", text: "1", x: 14, y: 14}))
		})

		It("moves every column by the increment until a reset occurs", func() {
			a := newAnimator(nil)
			a.Resize(&fakeSurface{width: 70, height: 100000})
			for n := 1; n <= 20; n++ {
				a.Tick()
				Expect(a.Positions()).To(Equal(uniform(5, 1+float64(n)*0.75)))
			}
		})

		It("is deterministic for a fixed seed", func() {
			run := func() []string {
				a := newAnimator(nil)
				s := &fakeSurface{width: 140, height: 70}
				a.Resize(s)
				for i := 0; i < 30; i++ {
					a.Tick()
				}
				return s.texts()
			}
			first := run()
			Expect(first).To(HaveLen(300))
			Expect(run()).To(Equal(first))
		})

		It("resets only columns past the bottom edge when the probability is forced to 1", func() {
			cfg.ResetProbability = 1
			a := newAnimator(nil)
			a.Resize(&fakeSurface{width: 56, height: 56})
			a.SetPositions(rain.ColumnState{1, 10, 1, 4.5})

			a.Tick()
			Expect(a.Positions()).To(Equal(rain.ColumnState{1.75, 0.75, 1.75, 0.75}))
		})

		It("never resets with probability zero", func() {
			cfg.ResetProbability = 0
			a := newAnimator(nil)
			a.Resize(&fakeSurface{width: 14, height: 14})
			for i := 0; i < 50; i++ {
				a.Tick()
			}
			Expect(a.Positions()).To(Equal(rain.ColumnState{1 + 50*0.75}))
		})

		It("reports tick statistics to observers", func() {
			cfg.ResetProbability = 1
			var infos []rain.TickInfo
			a := newAnimator(nil)
			a.AddObserver(rain.ObserverFunc(func(info rain.TickInfo) { infos = append(infos, info) }))
			a.Resize(&fakeSurface{width: 42, height: 14})
			a.SetPositions(rain.ColumnState{1, 2, 3})
			a.Tick()

			Expect(infos).To(HaveLen(1))
			Expect(infos[0].Index).To(Equal(0))
			Expect(infos[0].Columns).To(Equal(3))
			Expect(infos[0].Resets).To(Equal(2))
			Expect(infos[0].Glyphs[0] + infos[0].Glyphs[1]).To(Equal(3))
			Expect(infos[0].MeanDepth).To(BeNumerically("~", (1.75+0.75+0.75)/3, 1e-9))
			Expect(infos[0].Dark).To(BeTrue())
		})

		It("panics without a surface", func() {
			a := newAnimator(nil)
			Expect(a.Tick).To(Panic())
		})
	})

	Describe("SetTheme", func() {
		DescribeTable("uses the exact theme colors on the next tick",
			func(dark bool, trail, glyph rain.Color) {
				a := newAnimator(nil)
				s := &fakeSurface{width: 14, height: 14}
				a.Resize(s)
				a.SetTheme(dark)
				a.Tick()

				Expect(s.calls[0].color).To(Equal(trail))
				Expect(s.calls[2].color).To(Equal(glyph))
			},
			Entry("dark", true, rain.Color{R: 2, G: 6, B: 23, A: 0.05}, rain.Color{R: 0x0E, G: 0xA5, B: 0xE9, A: 1}),
			Entry("light", false, rain.Color{R: 249, G: 250, B: 251, A: 0.05}, rain.Color{R: 0x02, G: 0x84, B: 0xC7, A: 1}),
		)

		It("keeps column state and the schedule", func() {
			a := newAnimator(nil)
			a.Start(&fakeSurface{width: 140, height: 280}, true)
			before := a.Positions()

			a.SetTheme(false)
			Expect(a.Positions()).To(Equal(before))
			Expect(sched.Pending()).To(Equal(1))
			Expect(a.Theme()).To(Equal(rain.ThemeLight))
		})
	})

	Describe("lifecycle", func() {
		It("paints immediately on Start and once per delay afterwards", func() {
			a := newAnimator(nil)
			s := &fakeSurface{width: 140, height: 280}
			a.Start(s, true)
			Expect(s.count("rect")).To(Equal(1))

			mock.Advance(50 * time.Millisecond)
			sched.Pump()
			Expect(s.count("rect")).To(Equal(1))

			mock.Advance(50 * time.Millisecond)
			sched.Pump()
			Expect(s.count("rect")).To(Equal(2))
			Expect(a.Ticks()).To(Equal(2))
		})

		It("never paints again after Stop", func() {
			a := newAnimator(nil)
			s := &fakeSurface{width: 140, height: 280}
			a.Start(s, true)
			mock.Advance(cfg.Delay)
			sched.Pump()
			painted := len(s.calls)

			a.Stop()
			Expect(sched.Pending()).To(BeZero())
			for i := 0; i < 10; i++ {
				mock.Advance(cfg.Delay)
				sched.Pump()
			}
			Expect(s.calls).To(HaveLen(painted))
			Expect(a.Running()).To(BeFalse())
		})

		It("tolerates repeated Stop calls", func() {
			a := newAnimator(nil)
			a.Stop()
			a.Start(&fakeSurface{width: 14, height: 14}, false)
			a.Stop()
			Expect(a.Stop).NotTo(Panic())
		})

		It("does not reschedule when stopped from inside a tick", func() {
			a := newAnimator(nil)
			a.AddObserver(rain.ObserverFunc(func(rain.TickInfo) { a.Stop() }))
			a.Start(&fakeSurface{width: 14, height: 14}, true)
			Expect(sched.Pending()).To(BeZero())
		})

		It("can be restarted after Stop", func() {
			a := newAnimator(nil)
			s := &fakeSurface{width: 28, height: 28}
			a.Start(s, true)
			a.Stop()
			a.Start(s, false)
			Expect(sched.Pending()).To(Equal(1))
			Expect(a.Theme()).To(Equal(rain.ThemeLight))
		})

		It("rejects a nil surface and a double start", func() {
			a := newAnimator(nil)
			Expect(func() { a.Start(nil, true) }).To(Panic())
			a.Start(&fakeSurface{width: 14, height: 14}, true)
			Expect(func() { a.Start(&fakeSurface{width: 14, height: 14}, true) }).To(Panic())
		})
	})
})

var _ = Describe("Color", func() {
	It("formats CSS values", func() {
		Expect(rain.ThemeDark.Trail.CSS()).To(Equal("rgba(2, 6, 23, 0.05)"))
		Expect(rain.ThemeDark.Glyph.CSS()).To(Equal("#0ea5e9"))
		Expect(rain.ThemeLight.Glyph.CSS()).To(Equal("#0284c7"))
	})

	It("premultiplies alpha", func() {
		r, _, _, a := rain.Color{R: 255, A: 0.5}.RGBA()
		Expect(a).To(BeNumerically("==", 0x8000))
		Expect(r).To(BeNumerically("~", 0x8000, 1))
	})

	It("parses theme names", func() {
		dark, err := rain.ParseTheme("light")
		Expect(err).NotTo(HaveOccurred())
		Expect(dark).To(BeFalse())
		_, err = rain.ParseTheme("sepia")
		Expect(err).To(MatchError(rain.ErrUnknownTheme))
	})
})
