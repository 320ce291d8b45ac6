package hdag

import "math/big"

// CountHistories returns the number of distinct histories in the DAG: the
// product over a node's clades of the sum of its children's counts, with
// leaves counting one.
func (d *DAG) CountHistories() *big.Int {
	counts := d.countBelow()
	return new(big.Int).Set(counts[d.root])
}

// countBelow returns the number of sub-histories rooted at each node.
func (d *DAG) countBelow() []*big.Int {
	counts := make([]*big.Int, len(d.nodes))
	for _, id := range d.Postorder() {
		c := big.NewInt(1)
		for _, targets := range d.nodes[id].children {
			sum := new(big.Int)
			for _, t := range targets {
				sum.Add(sum, counts[t])
			}
			c.Mul(c, sum)
		}
		counts[id] = c
	}
	return counts
}

// countAbove returns, for each node, the number of ways to complete a
// history around the node once its sub-history is fixed.
func (d *DAG) countAbove(below []*big.Int) []*big.Int {
	above := make([]*big.Int, len(d.nodes))
	for i := range above {
		above[i] = new(big.Int)
	}
	order := d.Postorder()
	above[d.root].SetInt64(1)
	for i := len(order) - 1; i >= 0; i-- {
		n := d.nodes[order[i]]
		if n.IsLeaf() {
			continue
		}
		sums := cladeSums(n, below)
		for ci, targets := range n.children {
			ctx := new(big.Int).Set(above[n.ID])
			for cj, s := range sums {
				if cj != ci {
					ctx.Mul(ctx, s)
				}
			}
			for _, t := range targets {
				above[t].Add(above[t], ctx)
			}
		}
	}
	return above
}

func cladeSums(n *Node, below []*big.Int) []*big.Int {
	sums := make([]*big.Int, len(n.children))
	for ci, targets := range n.children {
		sums[ci] = new(big.Int)
		for _, t := range targets {
			sums[ci].Add(sums[ci], below[t])
		}
	}
	return sums
}

// CountNodes returns, for each node, the number of histories containing it.
func (d *DAG) CountNodes() map[NodeID]*big.Int {
	below := d.countBelow()
	above := d.countAbove(below)
	out := make(map[NodeID]*big.Int, len(d.nodes))
	for _, n := range d.nodes {
		out[n.ID] = new(big.Int).Mul(above[n.ID], below[n.ID])
	}
	return out
}

// CountEdges returns, for each edge, the number of histories using it.
func (d *DAG) CountEdges() map[Edge]*big.Int {
	below := d.countBelow()
	above := d.countAbove(below)
	out := make(map[Edge]*big.Int, d.edges)
	for _, n := range d.nodes {
		sums := cladeSums(n, below)
		for ci, targets := range n.children {
			ctx := new(big.Int).Set(above[n.ID])
			for cj, s := range sums {
				if cj != ci {
					ctx.Mul(ctx, s)
				}
			}
			for _, t := range targets {
				out[Edge{From: n.ID, To: t, Clade: ci}] = new(big.Int).Mul(ctx, below[t])
			}
		}
	}
	return out
}
