package hdag

import (
	"slices"
	"strings"
)

// NodeID indexes a node in its DAG's arena. IDs are only meaningful within
// the DAG that issued them.
type NodeID int

// Node is a history DAG vertex. Its identity is structural: the pair of its
// label and the set of child clades, never its address or ID.
//
// Outgoing edges are grouped by clade. A history picks exactly one edge from
// every clade group, so several edges in one group are alternative
// reconstructions of the same clade.
type Node struct {
	ID    NodeID
	Label Label

	clades   []Clade    // sorted by key
	children [][]NodeID // edge targets per clade
	parents  []NodeID
	union    Clade
	key      string
}

func newNode(id NodeID, label Label, clades []Clade) *Node {
	sorted := slices.Clone(clades)
	slices.SortFunc(sorted, compareClades)
	n := &Node{
		ID:       id,
		Label:    label,
		clades:   sorted,
		children: make([][]NodeID, len(sorted)),
		key:      nodeKey(label, sorted),
	}
	if len(sorted) == 0 {
		n.union = NewClade(label.Key())
	} else {
		n.union = sorted[0]
		for _, c := range sorted[1:] {
			n.union = n.union.Union(c)
		}
	}
	return n
}

// nodeKey expects clades sorted by key.
func nodeKey(label Label, clades []Clade) string {
	var b strings.Builder
	b.WriteString(label.Key())
	b.WriteByte('\x1e')
	for i, c := range clades {
		if i > 0 {
			b.WriteByte('\x1d')
		}
		b.WriteString(c.Key())
	}
	return b.String()
}

// Key returns the structural identity of the node.
func (n *Node) Key() string { return n.key }

// IsLeaf reports whether the node has no child clades.
func (n *Node) IsLeaf() bool { return len(n.clades) == 0 }

// IsUA reports whether the node is the universal ancestor.
func (n *Node) IsUA() bool { return n.Label.IsUA() }

// Clades returns the node's child clades in key order.
func (n *Node) Clades() []Clade { return slices.Clone(n.clades) }

// CladeUnion returns every leaf below the node. A leaf's union is itself.
func (n *Node) CladeUnion() Clade { return n.union }

// Children returns the edge targets of the clade at index i of [Node.Clades].
func (n *Node) Children(i int) []NodeID { return slices.Clone(n.children[i]) }

// AllChildren returns every edge target, clade by clade.
func (n *Node) AllChildren() []NodeID {
	var out []NodeID
	for _, targets := range n.children {
		out = append(out, targets...)
	}
	return out
}

// Parents returns the sources of the node's incoming edges.
func (n *Node) Parents() []NodeID { return slices.Clone(n.parents) }

// OutDegree returns the number of outgoing edges.
func (n *Node) OutDegree() int {
	d := 0
	for _, targets := range n.children {
		d += len(targets)
	}
	return d
}

// cladeIndex returns the position of c among the node's clades, or -1.
func (n *Node) cladeIndex(c Clade) int {
	i, ok := slices.BinarySearchFunc(n.clades, c, compareClades)
	if !ok {
		return -1
	}
	return i
}

func (n *Node) clone() *Node {
	out := *n
	out.children = make([][]NodeID, len(n.children))
	for i, targets := range n.children {
		out.children[i] = slices.Clone(targets)
	}
	out.parents = slices.Clone(n.parents)
	return &out
}
