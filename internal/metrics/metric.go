// Package metrics aggregates per-tick statistics reported by a rain animator.
package metrics

import (
	"sort"

	"github.com/san-kum/binrain/internal/rain"
)

type Metric interface {
	Name() string
	Observe(info rain.TickInfo)
	Value() float64
	Reset()
}

// Set fans tick reports out to its metrics. It implements rain.Observer.
type Set struct {
	metrics []Metric
}

func NewSet(ms ...Metric) *Set { return &Set{metrics: ms} }

// Defaults returns the metrics recorded for every run.
func Defaults() *Set {
	return NewSet(NewResetRate(), NewOnesRatio(), NewMeanDepth())
}

func (s *Set) Add(m Metric) { s.metrics = append(s.metrics, m) }

func (s *Set) OnTick(info rain.TickInfo) {
	for _, m := range s.metrics {
		m.Observe(info)
	}
}

func (s *Set) Reset() {
	for _, m := range s.metrics {
		m.Reset()
	}
}

func (s *Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Names lists metric names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.metrics))
	for _, m := range s.metrics {
		names = append(names, m.Name())
	}
	sort.Strings(names)
	return names
}
