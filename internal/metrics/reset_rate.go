package metrics

import "github.com/san-kum/binrain/internal/rain"

// ResetRate is the fraction of column updates that restarted a drop.
type ResetRate struct {
	name    string
	resets  int
	updates int
}

func NewResetRate() *ResetRate { return &ResetRate{name: "reset_rate"} }

func (r *ResetRate) Name() string { return r.name }

func (r *ResetRate) Observe(info rain.TickInfo) {
	r.resets += info.Resets
	r.updates += info.Columns
}

func (r *ResetRate) Value() float64 {
	if r.updates == 0 {
		return 0
	}
	return float64(r.resets) / float64(r.updates)
}

func (r *ResetRate) Reset() {
	r.resets = 0
	r.updates = 0
}
