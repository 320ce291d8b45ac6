package hdag

import (
	"math/big"

	"github.com/matzehuels/historydag/pkg/genome"
)

// uncollapsedPenalty scales the smallest mutation frequency to weigh edges
// that carry no mutation in [DAG.AdjustedNodeProbabilities].
const uncollapsedPenalty = 1e-2

// EdgeWeight weighs an edge of a history. A history's weight is the product
// of its edge weights. Weights must not be negative.
type EdgeWeight func(parent, child *Node) float64

// NodeProbabilities returns, for each node, the fraction of histories that
// contain it. The UA root and every leaf have probability one.
func (d *DAG) NodeProbabilities() map[NodeID]*big.Rat {
	total := d.CountHistories()
	out := make(map[NodeID]*big.Rat, len(d.nodes))
	for id, c := range d.CountNodes() {
		out[id] = new(big.Rat).SetFrac(c, total)
	}
	return out
}

// WeightedNodeProbabilities returns the probability of each node when a
// history is drawn with probability proportional to its weight under w.
// With a constant weight it matches [DAG.NodeProbabilities]. If every history
// weighs zero, every node gets zero.
func (d *DAG) WeightedNodeProbabilities(w EdgeWeight) map[NodeID]float64 {
	order := d.Postorder()
	weights := make([][][]float64, len(d.nodes))
	below := make([]float64, len(d.nodes))
	for _, id := range order {
		n := d.nodes[id]
		weights[id] = make([][]float64, len(n.children))
		v := 1.0
		for ci, targets := range n.children {
			weights[id][ci] = make([]float64, len(targets))
			sum := 0.0
			for k, t := range targets {
				weights[id][ci][k] = w(n, d.nodes[t])
				sum += weights[id][ci][k] * below[t]
			}
			v *= sum
		}
		below[id] = v
	}

	above := make([]float64, len(d.nodes))
	above[d.root] = 1
	for i := len(order) - 1; i >= 0; i-- {
		n := d.nodes[order[i]]
		sums := make([]float64, len(n.children))
		for ci, targets := range n.children {
			for k, t := range targets {
				sums[ci] += weights[n.ID][ci][k] * below[t]
			}
		}
		for ci, targets := range n.children {
			ctx := above[n.ID]
			for cj, s := range sums {
				if cj != ci {
					ctx *= s
				}
			}
			for k, t := range targets {
				above[t] += ctx * weights[n.ID][ci][k]
			}
		}
	}

	total := below[d.root]
	out := make(map[NodeID]float64, len(d.nodes))
	for _, n := range d.nodes {
		if total > 0 {
			out[n.ID] = above[n.ID] * below[n.ID] / total
		} else {
			out[n.ID] = 0
		}
	}
	return out
}

// AdjustedNodeProbabilities returns node probabilities with histories
// weighted by how surprising their mutations are. Each mutation's frequency
// is its share of all mutations on internal edges, counted once per history
// using the edge. An internal edge weighs one minus the product of its
// mutations' frequencies. An internal edge without mutations weighs a small
// fraction of the rarest frequency. Edges from the UA root and edges into
// leaves weigh one.
func (d *DAG) AdjustedNodeProbabilities() map[NodeID]float64 {
	internal := func(parent, child *Node) bool { return !parent.IsUA() && !child.IsLeaf() }

	counts := d.CountEdges()
	freq := make(map[genome.Mutation]float64)
	total := 0.0
	for _, e := range d.Edges() {
		parent, child := d.nodes[e.From], d.nodes[e.To]
		if !internal(parent, child) {
			continue
		}
		c, _ := new(big.Float).SetInt(counts[e]).Float64()
		for _, m := range genome.Diff(parent.Label.Genome, child.Label.Genome) {
			freq[m] += c
			total += c
		}
	}
	rarest := 1.0
	for m := range freq {
		freq[m] /= total
		rarest = min(rarest, freq[m])
	}

	return d.WeightedNodeProbabilities(func(parent, child *Node) float64 {
		if !internal(parent, child) {
			return 1
		}
		diff := genome.Diff(parent.Label.Genome, child.Label.Genome)
		if len(diff) == 0 {
			return uncollapsedPenalty * rarest
		}
		p := 1.0
		for _, m := range diff {
			p *= freq[m]
		}
		return 1 - p
	})
}
