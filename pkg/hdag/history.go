package hdag

import (
	"iter"
	"slices"

	"github.com/matzehuels/historydag/pkg/tree"
)

// Histories enumerates every history as an annotated tree rooted below the
// UA node. The number of histories grows exponentially with the DAG, so this
// is meant for small DAGs and tests; use [DAG.CountHistories] and
// [DAG.ScoreHistogram] otherwise.
//
// Yielded trees may share subtrees with each other. Clone a tree before
// modifying it.
func (d *DAG) Histories() iter.Seq[*tree.Node] {
	return func(yield func(*tree.Node) bool) {
		seqs := make(map[NodeID]string)
		sequence := func(n *Node) string {
			if s, ok := seqs[n.ID]; ok {
				return s
			}
			s, err := n.Label.Genome.Sequence()
			if err != nil {
				// Constructors validate every genome against the reference.
				panic("hdag: invalid genome in validated DAG: " + err.Error())
			}
			seqs[n.ID] = s
			return s
		}

		var walk func(id NodeID, emit func(*tree.Node) bool) bool
		walk = func(id NodeID, emit func(*tree.Node) bool) bool {
			n := d.nodes[id]
			if n.IsLeaf() {
				return emit(&tree.Node{Name: n.Label.Name, Sequence: sequence(n)})
			}
			var pick func(ci int, acc []*tree.Node) bool
			pick = func(ci int, acc []*tree.Node) bool {
				if ci == len(n.children) {
					return emit(&tree.Node{Sequence: sequence(n), Children: slices.Clone(acc)})
				}
				for _, t := range n.children[ci] {
					ok := walk(t, func(sub *tree.Node) bool {
						return pick(ci+1, append(acc, sub))
					})
					if !ok {
						return false
					}
				}
				return true
			}
			return pick(0, make([]*tree.Node, 0, len(n.children)))
		}

		for _, t := range d.Root().children[0] {
			if !walk(t, yield) {
				return
			}
		}
	}
}
