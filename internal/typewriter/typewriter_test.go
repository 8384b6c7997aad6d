package typewriter_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/binrain/internal/clock"
	"github.com/san-kum/binrain/internal/typewriter"
)

var _ = Describe("Typewriter", func() {
	var (
		mock  *clock.MockTimeProvider
		sched *clock.Scheduler
	)

	BeforeEach(func() {
		mock = clock.NewMockTimeProvider(time.Unix(0, 0))
		sched = clock.NewScheduler(mock)
	})

	newTypewriter := func(phrases ...string) *typewriter.Typewriter {
		tw, err := typewriter.New(typewriter.DefaultConfig(phrases...), sched)
		Expect(err).NotTo(HaveOccurred())
		return tw
	}

	It("types, holds, deletes and moves to the next phrase", func() {
		tw := newTypewriter("Go", "Hi")

		Expect(tw.Step()).To(Equal(typewriter.DefaultTypeDelay))
		Expect(tw.Text()).To(Equal("G"))
		Expect(tw.Step()).To(Equal(typewriter.DefaultTypeDelay))
		Expect(tw.Text()).To(Equal("Go"))

		Expect(tw.Step()).To(Equal(typewriter.DefaultHold))
		Expect(tw.Deleting()).To(BeTrue())
		Expect(tw.Text()).To(Equal("Go"))

		Expect(tw.Step()).To(Equal(typewriter.DefaultDeleteDelay))
		Expect(tw.Text()).To(Equal("G"))
		Expect(tw.Step()).To(Equal(typewriter.DefaultDeleteDelay))
		Expect(tw.Text()).To(BeEmpty())

		Expect(tw.Step()).To(Equal(typewriter.DefaultTypeDelay))
		Expect(tw.Phrase()).To(Equal(1))
		Expect(tw.Deleting()).To(BeFalse())
	})

	It("wraps around to the first phrase", func() {
		tw := newTypewriter("a")
		for i := 0; i < 4; i++ {
			tw.Step()
		}
		Expect(tw.Phrase()).To(Equal(0))
		tw.Step()
		Expect(tw.Text()).To(Equal("a"))
	})

	It("counts runes, not bytes", func() {
		tw := newTypewriter("héllo")
		tw.Step()
		tw.Step()
		Expect(tw.Text()).To(Equal("hé"))
	})

	It("follows the scheduler once started", func() {
		tw := newTypewriter("abc")
		tw.Start()
		tw.Start()
		Expect(sched.Pending()).To(Equal(1))

		for i := 0; i < 3; i++ {
			mock.Advance(typewriter.DefaultTypeDelay)
			sched.Pump()
		}
		Expect(tw.Text()).To(Equal("abc"))

		tw.Stop()
		Expect(sched.Pending()).To(BeZero())
		mock.Advance(time.Minute)
		sched.Pump()
		Expect(tw.Text()).To(Equal("abc"))
		Expect(tw.Running()).To(BeFalse())
	})

	It("validates its configuration", func() {
		_, err := typewriter.New(typewriter.DefaultConfig(), sched)
		Expect(err).To(MatchError(typewriter.ErrNoPhrases))

		cfg := typewriter.DefaultConfig("x")
		cfg.Hold = 0
		_, err = typewriter.New(cfg, sched)
		Expect(err).To(MatchError(typewriter.ErrDelay))
	})
})
