package rain

// SetPositions overwrites the column table so tests can stage uneven columns.
func (a *Animator) SetPositions(p ColumnState) { a.positions = p.Clone() }
