package clock

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrFrameInterval = errors.New("clock: frame interval must be positive")

// Task is a single scheduled callback.
type Task struct {
	s        *Scheduler
	deadline time.Time
	seq      uint64
	fn       func()
	done     bool
}

// Cancel removes the task if it has not run. It reports whether the task was
// still pending.
func (t *Task) Cancel() bool {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	for i, p := range s.tasks {
		if p == t {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			break
		}
	}
	return true
}

func (t *Task) Deadline() time.Time { return t.deadline }

// Scheduler queues delayed callbacks and runs them when the host pumps it,
// so a callback fires on the first frame after its delay has elapsed and
// always on the pumping goroutine.
type Scheduler struct {
	mu    sync.Mutex
	clock TimeProvider
	tasks []*Task
	seq   uint64
}

func NewScheduler(tp TimeProvider) *Scheduler {
	if tp == nil {
		tp = NewMonotonicTimeProvider()
	}
	return &Scheduler{clock: tp, tasks: make([]*Task, 0, 4)}
}

func (s *Scheduler) Now() time.Time { return s.clock.Now() }

func (s *Scheduler) Schedule(d time.Duration, fn func()) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &Task{s: s, deadline: s.clock.Now().Add(d), seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// AfterFunc schedules fn and returns a function that cancels it.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) (cancel func()) {
	t := s.Schedule(d, fn)
	return func() { t.Cancel() }
}

// Pump runs every task that is due, in deadline order. Tasks scheduled while
// pumping wait for the next Pump. It returns the number of tasks run.
func (s *Scheduler) Pump() int {
	now := s.clock.Now()

	s.mu.Lock()
	due := make([]*Task, 0, len(s.tasks))
	keep := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.deadline.After(now) {
			due = append(due, t)
		} else {
			keep = append(keep, t)
		}
	}
	for i := len(keep); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = keep
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline.Equal(due[j].deadline) {
			return due[i].seq < due[j].seq
		}
		return due[i].deadline.Before(due[j].deadline)
	})

	ran := 0
	for _, t := range due {
		s.mu.Lock()
		if t.done {
			s.mu.Unlock()
			continue
		}
		t.done = true
		s.mu.Unlock()

		t.fn()
		ran++
	}
	return ran
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Run pumps the scheduler once per frame interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context, frame time.Duration) error {
	if frame <= 0 {
		return ErrFrameInterval
	}
	ticker := time.NewTicker(frame)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Pump()
		}
	}
}
