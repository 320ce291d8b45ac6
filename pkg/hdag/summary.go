package hdag

import "math/big"

// Summary holds the aggregate statistics of a DAG.
type Summary struct {
	Nodes     int
	Edges     int
	Leaves    int
	Histories *big.Int
	Histogram Histogram
	MinScore  int
	MaxScore  int
}

// Summarize computes size, history count and score distribution in one
// bottom-up pass. A nil fn scores with
// [AmbiguousLeafHammingScore].
func (d *DAG) Summarize(fn ScoreFunc) Summary {
	if fn == nil {
		fn = AmbiguousLeafHammingScore
	}
	h := d.ScoreHistogram(fn)
	lo, _ := h.Min()
	hi, _ := h.Max()
	return Summary{
		Nodes:     len(d.nodes),
		Edges:     d.edges,
		Leaves:    len(d.Leaves()),
		Histories: h.Total(),
		Histogram: h,
		MinScore:  lo,
		MaxScore:  hi,
	}
}
