package hdag

import "fmt"

// Validate checks every structural invariant of the DAG:
//   - exactly one UA node, with no parents and a single clade
//   - leaves have no clades; other nodes have disjoint clades, each with at
//     least one edge
//   - each edge target's clade union equals the clade it is filed under
//   - the graph is acyclic and every node is reachable from the root
//   - every genome is relative to the DAG reference
//
// Violations are returned as STRUCTURAL_VIOLATION errors wrapping one of the
// package sentinels.
func (d *DAG) Validate() error {
	if d.root < 0 || int(d.root) >= len(d.nodes) {
		return structural(ErrNoRoot, "validate")
	}
	root := d.nodes[d.root]
	if !root.IsUA() || len(root.clades) != 1 {
		return structural(ErrNoRoot, "validate")
	}
	if len(root.parents) > 0 {
		return structural(ErrRootHasParents, "validate")
	}
	for _, n := range d.nodes {
		if err := d.validateNode(n); err != nil {
			return structural(err, "node %d (%s)", n.ID, n.Label)
		}
	}
	if err := d.detectCycles(); err != nil {
		return structural(err, "validate")
	}
	seen := make([]bool, len(d.nodes))
	for _, id := range d.Postorder() {
		seen[id] = true
	}
	for id, ok := range seen {
		if !ok {
			return structural(ErrUnreachableNode, "node %d (%s)", id, d.nodes[id].Label)
		}
	}
	return nil
}

func (d *DAG) validateNode(n *Node) error {
	if n.IsUA() {
		if n.ID != d.root {
			return ErrMultipleRoots
		}
	} else if n.Label.Genome.Reference() != d.reference {
		return ErrReferenceMismatch
	}
	total := 0
	for ci, c := range n.clades {
		if len(n.children[ci]) == 0 {
			return fmt.Errorf("%w: clade %d", ErrEmptyClade, ci)
		}
		total += c.Len()
		for _, t := range n.children[ci] {
			if !d.nodes[t].union.Equal(c) {
				return fmt.Errorf("%w: %s", ErrCladeMismatch, d.nodes[t].Label)
			}
		}
	}
	if len(n.clades) > 0 && total != n.union.Len() {
		return ErrCladeOverlap
	}
	return nil
}

const (
	white = iota
	gray
	black
)

func (d *DAG) detectCycles() error {
	state := make([]uint8, len(d.nodes))
	var visit func(NodeID) error
	visit = func(id NodeID) error {
		state[id] = gray
		for _, targets := range d.nodes[id].children {
			for _, t := range targets {
				switch state[t] {
				case gray:
					return fmt.Errorf("%w: through %s", ErrGraphHasCycle, d.nodes[t].Label)
				case white:
					if err := visit(t); err != nil {
						return err
					}
				}
			}
		}
		state[id] = black
		return nil
	}
	for id := range d.nodes {
		if state[id] == white {
			if err := visit(NodeID(id)); err != nil {
				return err
			}
		}
	}
	return nil
}
