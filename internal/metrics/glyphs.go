package metrics

import "github.com/san-kum/binrain/internal/rain"

// OnesRatio is the share of drawn glyphs taken from the last alphabet entry
// ("1" for the binary alphabet). It should hover around 0.5.
type OnesRatio struct {
	name  string
	ones  int
	total int
}

func NewOnesRatio() *OnesRatio { return &OnesRatio{name: "ones_ratio"} }

func (o *OnesRatio) Name() string { return o.name }

func (o *OnesRatio) Observe(info rain.TickInfo) {
	if len(info.Glyphs) == 0 {
		return
	}
	for _, n := range info.Glyphs {
		o.total += n
	}
	o.ones += info.Glyphs[len(info.Glyphs)-1]
}

func (o *OnesRatio) Value() float64 {
	if o.total == 0 {
		return 0
	}
	return float64(o.ones) / float64(o.total)
}

func (o *OnesRatio) Reset() {
	o.ones = 0
	o.total = 0
}
