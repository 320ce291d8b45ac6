package hdag

import (
	"fmt"
	"maps"
	"math/big"
	"slices"
	"strings"

	"github.com/matzehuels/historydag/pkg/genome"
)

// ScoreFunc scores one edge of a history. The score of a history is the sum
// of its edge scores. Parent is the UA label on edges leaving the root.
type ScoreFunc func(parent, child Label) int

// HammingScore counts the sites at which parent and child genomes differ.
// Edges leaving the UA root score zero, so a history scores its parsimony.
func HammingScore(parent, child Label) int {
	if parent.IsUA() || child.IsUA() {
		return 0
	}
	return len(genome.Diff(parent.Genome, child.Genome))
}

// AmbiguousLeafHammingScore counts the sites at which parent and child
// genomes cannot agree. An IUPAC code on a leaf costs nothing when it admits
// the parent's base, so a history scores the same as [tree.ParsimonyScore]
// on its annotated tree. On unambiguous genomes it equals [HammingScore].
func AmbiguousLeafHammingScore(parent, child Label) int {
	if parent.IsUA() || child.IsUA() {
		return 0
	}
	n := 0
	for _, m := range genome.Diff(parent.Genome, child.Genome) {
		if !genome.Compatible(m.Ref, m.Alt) {
			n++
		}
	}
	return n
}

// Histogram maps a history score to the number of histories with that score.
type Histogram map[int]*big.Int

func unitHistogram() Histogram { return Histogram{0: big.NewInt(1)} }

// Total returns the number of histories counted by the histogram.
func (h Histogram) Total() *big.Int {
	total := new(big.Int)
	for _, c := range h {
		total.Add(total, c)
	}
	return total
}

// Scores returns the scores present in the histogram, ascending.
func (h Histogram) Scores() []int {
	return slices.Sorted(maps.Keys(h))
}

// Min returns the smallest score. ok is false for an empty histogram.
func (h Histogram) Min() (score int, ok bool) {
	if len(h) == 0 {
		return 0, false
	}
	return slices.Min(h.Scores()), true
}

// Max returns the largest score. ok is false for an empty histogram.
func (h Histogram) Max() (score int, ok bool) {
	if len(h) == 0 {
		return 0, false
	}
	return slices.Max(h.Scores()), true
}

// Equal reports whether both histograms hold the same counts.
func (h Histogram) Equal(o Histogram) bool {
	return maps.EqualFunc(h, o, func(a, b *big.Int) bool { return a.Cmp(b) == 0 })
}

// String renders the histogram as "{score: count, ...}" in score order.
func (h Histogram) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, s := range h.Scores() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d: %s", s, h[s])
	}
	b.WriteByte('}')
	return b.String()
}

// add accumulates o shifted by w into h.
func (h Histogram) add(o Histogram, w int) {
	for s, c := range o {
		if cur, ok := h[s+w]; ok {
			cur.Add(cur, c)
		} else {
			h[s+w] = new(big.Int).Set(c)
		}
	}
}

// convolve returns the distribution of the sum of independent choices from a
// and b.
func convolve(a, b Histogram) Histogram {
	out := make(Histogram, len(a)+len(b))
	for sa, ca := range a {
		for sb, cb := range b {
			prod := new(big.Int).Mul(ca, cb)
			if cur, ok := out[sa+sb]; ok {
				cur.Add(cur, prod)
			} else {
				out[sa+sb] = prod
			}
		}
	}
	return out
}

// ScoreHistogram returns the distribution of history scores under fn,
// computed bottom-up without enumerating histories. Alternatives within a
// clade add; independent clades convolve.
func (d *DAG) ScoreHistogram(fn ScoreFunc) Histogram {
	return d.histograms(fn)[d.root]
}

func (d *DAG) histograms(fn ScoreFunc) []Histogram {
	hists := make([]Histogram, len(d.nodes))
	for _, id := range d.Postorder() {
		n := d.nodes[id]
		h := unitHistogram()
		for _, targets := range n.children {
			group := make(Histogram)
			for _, t := range targets {
				group.add(hists[t], fn(n.Label, d.nodes[t].Label))
			}
			h = convolve(h, group)
		}
		hists[id] = h
	}
	return hists
}

// optimum is the best score of the sub-histories below a node and how many
// of them achieve it.
type optimum struct {
	score int
	count *big.Int
}

func (d *DAG) optima(fn ScoreFunc, maximize bool) []optimum {
	better := func(a, b int) bool { return a < b }
	if maximize {
		better = func(a, b int) bool { return a > b }
	}
	opt := make([]optimum, len(d.nodes))
	for _, id := range d.Postorder() {
		n := d.nodes[id]
		o := optimum{count: big.NewInt(1)}
		for _, targets := range n.children {
			var best optimum
			for i, t := range targets {
				s := opt[t].score + fn(n.Label, d.nodes[t].Label)
				switch {
				case i == 0 || better(s, best.score):
					best = optimum{score: s, count: new(big.Int).Set(opt[t].count)}
				case s == best.score:
					best.count.Add(best.count, opt[t].count)
				}
			}
			o.score += best.score
			o.count.Mul(o.count, best.count)
		}
		opt[id] = o
	}
	return opt
}

// MinScore returns the minimum history score under fn and the number of
// histories achieving it.
func (d *DAG) MinScore(fn ScoreFunc) (int, *big.Int) {
	o := d.optima(fn, false)[d.root]
	return o.score, o.count
}

// MaxScore returns the maximum history score under fn and the number of
// histories achieving it.
func (d *DAG) MaxScore(fn ScoreFunc) (int, *big.Int) {
	o := d.optima(fn, true)[d.root]
	return o.score, o.count
}
