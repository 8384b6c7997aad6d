package metrics

import "github.com/san-kum/binrain/internal/rain"

// MeanDepth averages the mean column position over all observed ticks.
type MeanDepth struct {
	name    string
	samples int
	total   float64
}

func NewMeanDepth() *MeanDepth { return &MeanDepth{name: "mean_depth"} }

func (d *MeanDepth) Name() string { return d.name }

func (d *MeanDepth) Observe(info rain.TickInfo) {
	if info.Columns == 0 {
		return
	}
	d.total += info.MeanDepth
	d.samples++
}

func (d *MeanDepth) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return d.total / float64(d.samples)
}

func (d *MeanDepth) Reset() {
	d.total = 0
	d.samples = 0
}
