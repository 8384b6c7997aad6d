package metrics

import "github.com/san-kum/binrain/internal/rain"

// Series keeps the raw tick reports for plotting and export.
type Series struct {
	Ticks []rain.TickInfo
}

func (s *Series) OnTick(info rain.TickInfo) {
	info.Glyphs = append([]int(nil), info.Glyphs...)
	s.Ticks = append(s.Ticks, info)
}

func (s *Series) Resets() []float64 {
	out := make([]float64, len(s.Ticks))
	for i, t := range s.Ticks {
		out[i] = float64(t.Resets)
	}
	return out
}

func (s *Series) Depth() []float64 {
	out := make([]float64, len(s.Ticks))
	for i, t := range s.Ticks {
		out[i] = t.MeanDepth
	}
	return out
}

func (s *Series) Columns() []float64 {
	out := make([]float64, len(s.Ticks))
	for i, t := range s.Ticks {
		out[i] = float64(t.Columns)
	}
	return out
}
