package hdag

import (
	"errors"
	"fmt"

	herrors "github.com/matzehuels/historydag/pkg/errors"
)

var (
	// ErrNoRoot is returned by [DAG.Validate] when the DAG has no UA node
	// holding exactly one clade.
	ErrNoRoot = errors.New("dag has no universal ancestor root")

	// ErrMultipleRoots is returned by [DAG.Validate] when more than one node
	// carries the UA label.
	ErrMultipleRoots = errors.New("dag has more than one universal ancestor")

	// ErrRootHasParents is returned by [DAG.Validate] when an edge targets the
	// UA node.
	ErrRootHasParents = errors.New("universal ancestor has incoming edges")

	// ErrCladeOverlap is returned when two child clades of a node share a leaf.
	ErrCladeOverlap = errors.New("child clades overlap")

	// ErrEmptyClade is returned by [DAG.Validate] when a clade has no edges.
	ErrEmptyClade = errors.New("clade has no edges")

	// ErrCladeMismatch is returned when an edge target's clade union differs
	// from the clade the edge is filed under.
	ErrCladeMismatch = errors.New("edge target does not match clade")

	// ErrUnreachableNode is returned by [DAG.Validate] when a node cannot be
	// reached from the UA root.
	ErrUnreachableNode = errors.New("node unreachable from root")

	// ErrGraphHasCycle is returned when a cycle is detected. Cycles are found
	// by depth-first search with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")

	// ErrDuplicateLeaf is returned by [FromTree] when two leaves share a label.
	ErrDuplicateLeaf = errors.New("duplicate leaf label")

	// ErrReferenceMismatch is returned when genomes or DAGs are relative to
	// different reference sequences.
	ErrReferenceMismatch = errors.New("reference sequences differ")

	// ErrLeafSetMismatch is returned by [DAG.Merge] when the DAGs do not
	// describe the same leaves.
	ErrLeafSetMismatch = errors.New("leaf sets differ")
)

// Edge is a directed parent→child connection filed under one of the parent's
// clades. Clade indexes [Node.Clades] of the parent.
type Edge struct {
	From  NodeID
	To    NodeID
	Clade int
}

// DAG is a history DAG: a rooted DAG in which every history is obtained by
// choosing, starting at the UA root, one edge from every clade of every
// reached node.
//
// Nodes live in an arena indexed by [NodeID] and are interned by structural
// key, so two nodes with the same label and clade set never coexist.
//
// The zero value is not usable. Obtain DAGs from [FromTree], [Merge] or
// [FromForm], which validate once so queries never fail. A DAG is not safe for
// concurrent use without external synchronization.
type DAG struct {
	nodes     []*Node
	index     map[string]NodeID
	root      NodeID
	reference string
	refID     string
	edges     int
}

func newDAG(reference string) *DAG {
	return &DAG{
		index:     make(map[string]NodeID),
		root:      -1,
		reference: reference,
	}
}

// Reference returns the reference sequence shared by every genome.
func (d *DAG) Reference() string { return d.reference }

// ReferenceID returns the optional identifier of the reference sequence.
func (d *DAG) ReferenceID() string { return d.refID }

// SetReferenceID sets the identifier recorded with the reference sequence.
func (d *DAG) SetReferenceID(id string) { d.refID = id }

// Root returns the UA node.
func (d *DAG) Root() *Node { return d.nodes[d.root] }

// Node returns the node with the given ID.
func (d *DAG) Node(id NodeID) (*Node, bool) {
	if id < 0 || int(id) >= len(d.nodes) {
		return nil, false
	}
	return d.nodes[id], true
}

// Nodes returns every node in ID order.
func (d *DAG) Nodes() []*Node {
	out := make([]*Node, len(d.nodes))
	copy(out, d.nodes)
	return out
}

// NodeCount returns the number of nodes, UA included.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges.
func (d *DAG) EdgeCount() int { return d.edges }

// Leaves returns the leaf nodes in ID order.
func (d *DAG) Leaves() []*Node {
	var out []*Node
	for _, n := range d.nodes {
		if n.IsLeaf() {
			out = append(out, n)
		}
	}
	return out
}

// Lookup finds the node with the given label and child clades.
func (d *DAG) Lookup(label Label, clades []Clade) (*Node, bool) {
	probe := newNode(-1, label, clades)
	id, ok := d.index[probe.key]
	if !ok {
		return nil, false
	}
	return d.nodes[id], true
}

// Edges returns every edge, grouped by parent in ID order.
func (d *DAG) Edges() []Edge {
	out := make([]Edge, 0, d.edges)
	for _, n := range d.nodes {
		for ci, targets := range n.children {
			for _, t := range targets {
				out = append(out, Edge{From: n.ID, To: t, Clade: ci})
			}
		}
	}
	return out
}

// Copy returns a deep copy of the DAG.
func (d *DAG) Copy() *DAG {
	out := &DAG{
		nodes:     make([]*Node, len(d.nodes)),
		index:     make(map[string]NodeID, len(d.index)),
		root:      d.root,
		reference: d.reference,
		refID:     d.refID,
		edges:     d.edges,
	}
	for i, n := range d.nodes {
		out.nodes[i] = n.clone()
	}
	for k, v := range d.index {
		out.index[k] = v
	}
	return out
}

// Postorder returns the IDs of every node reachable from the root, children
// before parents. Each node appears once.
func (d *DAG) Postorder() []NodeID {
	out := make([]NodeID, 0, len(d.nodes))
	if d.root < 0 {
		return out
	}
	seen := make([]bool, len(d.nodes))
	var visit func(NodeID)
	visit = func(id NodeID) {
		seen[id] = true
		for _, targets := range d.nodes[id].children {
			for _, t := range targets {
				if !seen[t] {
					visit(t)
				}
			}
		}
		out = append(out, id)
	}
	visit(d.root)
	return out
}

// addNode interns a node, returning the existing ID when the key is known.
func (d *DAG) addNode(label Label, clades []Clade) (NodeID, bool) {
	n := newNode(NodeID(len(d.nodes)), label, clades)
	if id, ok := d.index[n.key]; ok {
		return id, false
	}
	d.nodes = append(d.nodes, n)
	d.index[n.key] = n.ID
	return n.ID, true
}

// addEdge files child under the parent clade equal to the child's union.
// Reports false when the edge already exists.
func (d *DAG) addEdge(parent, child NodeID) (bool, error) {
	p, c := d.nodes[parent], d.nodes[child]
	ci := p.cladeIndex(c.union)
	if ci < 0 {
		return false, fmt.Errorf("%w: %s -> %s", ErrCladeMismatch, p.Label, c.Label)
	}
	for _, t := range p.children[ci] {
		if t == child {
			return false, nil
		}
	}
	p.children[ci] = append(p.children[ci], child)
	c.parents = append(c.parents, parent)
	d.edges++
	return true, nil
}

func structural(err error, format string, args ...any) error {
	return herrors.Wrap(herrors.ErrCodeStructural, err, format, args...)
}
