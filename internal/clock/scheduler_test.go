package clock_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/binrain/internal/clock"
)

var _ = Describe("Scheduler", func() {
	var (
		mock  *clock.MockTimeProvider
		sched *clock.Scheduler
	)

	BeforeEach(func() {
		mock = clock.NewMockTimeProvider(time.Unix(100, 0))
		sched = clock.NewScheduler(mock)
	})

	It("runs a task only once its delay has elapsed", func() {
		ran := 0
		sched.Schedule(100*time.Millisecond, func() { ran++ })

		Expect(sched.Pump()).To(BeZero())
		mock.Advance(99 * time.Millisecond)
		Expect(sched.Pump()).To(BeZero())
		mock.Advance(time.Millisecond)
		Expect(sched.Pump()).To(Equal(1))
		Expect(ran).To(Equal(1))

		mock.Advance(time.Second)
		Expect(sched.Pump()).To(BeZero())
		Expect(ran).To(Equal(1))
	})

	It("runs due tasks in deadline order, ties in scheduling order", func() {
		var order []string
		sched.Schedule(30*time.Millisecond, func() { order = append(order, "c") })
		sched.Schedule(10*time.Millisecond, func() { order = append(order, "a") })
		sched.Schedule(10*time.Millisecond, func() { order = append(order, "b") })

		mock.Advance(time.Second)
		Expect(sched.Pump()).To(Equal(3))
		Expect(order).To(Equal([]string{"a", "b", "c"}))
	})

	It("defers tasks scheduled while pumping to the next pump", func() {
		ran := 0
		var again func()
		again = func() {
			ran++
			sched.Schedule(0, again)
		}
		sched.Schedule(0, again)

		Expect(sched.Pump()).To(Equal(1))
		Expect(sched.Pump()).To(Equal(1))
		Expect(ran).To(Equal(2))
		Expect(sched.Pending()).To(Equal(1))
	})

	It("cancels pending tasks", func() {
		ran := false
		task := sched.Schedule(time.Millisecond, func() { ran = true })
		Expect(task.Cancel()).To(BeTrue())
		Expect(task.Cancel()).To(BeFalse())
		Expect(sched.Pending()).To(BeZero())

		mock.Advance(time.Second)
		sched.Pump()
		Expect(ran).To(BeFalse())
	})

	It("skips a due task cancelled by an earlier task in the same pump", func() {
		ran := false
		var victim *clock.Task
		sched.Schedule(time.Millisecond, func() { victim.Cancel() })
		victim = sched.Schedule(2*time.Millisecond, func() { ran = true })

		mock.Advance(time.Second)
		Expect(sched.Pump()).To(Equal(1))
		Expect(ran).To(BeFalse())
	})

	It("returns a cancel func from AfterFunc", func() {
		ran := false
		cancel := sched.AfterFunc(time.Millisecond, func() { ran = true })
		cancel()
		cancel()
		mock.Advance(time.Second)
		sched.Pump()
		Expect(ran).To(BeFalse())
	})

	It("reports the deadline relative to the provider", func() {
		task := sched.Schedule(time.Second, func() {})
		Expect(task.Deadline()).To(Equal(time.Unix(101, 0)))
	})

	Describe("Run", func() {
		It("pumps until the context is cancelled", func() {
			live := clock.NewScheduler(nil)
			done := make(chan struct{})
			live.Schedule(0, func() { close(done) })

			ctx, cancel := context.WithCancel(context.Background())
			errc := make(chan error, 1)
			go func() { errc <- live.Run(ctx, time.Millisecond) }()

			Eventually(done).Should(BeClosed())
			cancel()
			Eventually(errc).Should(Receive(MatchError(context.Canceled)))
		})

		It("rejects a non-positive frame interval", func() {
			Expect(sched.Run(context.Background(), 0)).To(MatchError(clock.ErrFrameInterval))
		})
	})
})

var _ = Describe("MockTimeProvider", func() {
	It("advances and sets time", func() {
		start := time.Unix(0, 0)
		m := clock.NewMockTimeProvider(start)
		m.Advance(time.Minute)
		Expect(m.Now()).To(Equal(start.Add(time.Minute)))
		m.SetTime(start)
		Expect(m.Now()).To(Equal(start))
	})
})
