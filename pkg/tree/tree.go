// Package tree provides the labeled input trees that history DAGs are built
// from, along with ancestral sequence reconstruction and normalization.
//
// A tree is a recursive [Node] structure. Leaves carry a unique Name and an
// observed Sequence; internal nodes may carry a reconstructed Sequence or
// leave it empty for [Reconstruct] to fill in.
package tree

import (
	"slices"
	"strings"
)

// Node is a vertex of a rooted phylogenetic tree.
type Node struct {
	Name     string
	Sequence string
	Children []*Node
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	out := &Node{Name: n.Name, Sequence: n.Sequence}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Postorder returns every node of the subtree, children before parents.
func (n *Node) Postorder() []*Node {
	var out []*Node
	var visit func(*Node)
	visit = func(x *Node) {
		for _, c := range x.Children {
			visit(c)
		}
		out = append(out, x)
	}
	visit(n)
	return out
}

// Leaves returns the leaves of the subtree in left-to-right order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	for _, x := range n.Postorder() {
		if x.IsLeaf() {
			out = append(out, x)
		}
	}
	return out
}

// Size returns the number of nodes in the subtree.
func (n *Node) Size() int { return len(n.Postorder()) }

// Canonical returns a string that identifies the labeled topology regardless
// of child order. Leaves contribute name and sequence, internal nodes only
// their sequence, so two histories compare equal iff they assign the same
// sequences to the same clade structure.
func (n *Node) Canonical() string {
	if n.IsLeaf() {
		return n.Name + ":" + n.Sequence
	}
	keys := make([]string, len(n.Children))
	for i, c := range n.Children {
		keys[i] = c.Canonical()
	}
	slices.Sort(keys)
	return "(" + strings.Join(keys, ",") + ")" + n.Sequence
}

// Collapse removes internal nodes whose sequence equals their parent's,
// attaching their children to the parent. The root and leaves are never
// removed. Collapse modifies the tree in place and returns it.
func Collapse(root *Node) *Node {
	var visit func(*Node)
	visit = func(n *Node) {
		for _, c := range n.Children {
			visit(c)
		}
		var kept []*Node
		for _, c := range n.Children {
			if !c.IsLeaf() && c.Sequence == n.Sequence {
				kept = append(kept, c.Children...)
				continue
			}
			kept = append(kept, c)
		}
		n.Children = kept
	}
	visit(root)
	return root
}

// IsCollapsed reports whether no internal non-root node shares its parent's sequence.
func IsCollapsed(root *Node) bool {
	for _, n := range root.Postorder() {
		for _, c := range n.Children {
			if !c.IsLeaf() && c.Sequence == n.Sequence {
				return false
			}
		}
	}
	return true
}
