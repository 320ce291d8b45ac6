package hdag

import (
	"fmt"

	herrors "github.com/matzehuels/historydag/pkg/errors"
	"github.com/matzehuels/historydag/pkg/genome"
	"github.com/matzehuels/historydag/pkg/tree"
)

// BuildOptions configures [FromTree].
type BuildOptions struct {
	// Collapse removes internal nodes whose sequence equals their parent's
	// before conversion, so zero-length edges do not split clades.
	Collapse bool
}

// FromTree converts an annotated tree into a single-history DAG.
//
// The tree is not modified. Internal nodes without a sequence get one from
// Fitch parsimony ([tree.Reconstruct]). Every sequence must align with
// reference. Leaves keep their names so identical leaf sequences remain
// distinct; internal names are dropped.
//
// Two leaves with the same label yield a STRUCTURAL_VIOLATION wrapping
// [ErrDuplicateLeaf].
func FromTree(t *tree.Node, reference string, opts BuildOptions) (*DAG, error) {
	if t == nil {
		return nil, herrors.New(herrors.ErrCodeInvalidInput, "tree is nil")
	}
	if err := herrors.ValidateSequence(reference); err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	t = t.Clone()
	if tree.NeedsReconstruction(t) {
		if err := tree.Reconstruct(t); err != nil {
			return nil, err
		}
	}
	if opts.Collapse {
		t = tree.Collapse(t)
	}

	d := newDAG(reference)
	var build func(n *tree.Node) (NodeID, error)
	build = func(n *tree.Node) (NodeID, error) {
		g, err := genome.FromSequence(n.Sequence, reference)
		if err != nil {
			return 0, herrors.Wrap(herrors.ErrCodeInvalidInput, err, "node %q", n.Name)
		}
		if n.IsLeaf() {
			id, created := d.addNode(Label{Genome: g, Name: n.Name}, nil)
			if !created {
				return 0, structural(ErrDuplicateLeaf, "leaf %q", n.Name)
			}
			return id, nil
		}

		ids := make([]NodeID, len(n.Children))
		clades := make([]Clade, len(n.Children))
		for i, c := range n.Children {
			if ids[i], err = build(c); err != nil {
				return 0, err
			}
			clades[i] = d.nodes[ids[i]].union
			for _, prev := range clades[:i] {
				if prev.Overlaps(clades[i]) {
					return 0, structural(ErrCladeOverlap, "node %q", n.Name)
				}
			}
		}
		id, _ := d.addNode(Label{Genome: g}, clades)
		for _, cid := range ids {
			if _, err := d.addEdge(id, cid); err != nil {
				return 0, structural(err, "node %q", n.Name)
			}
		}
		return id, nil
	}

	top, err := build(t)
	if err != nil {
		return nil, err
	}
	ua, _ := d.addNode(UALabel(), []Clade{d.nodes[top].union})
	if _, err := d.addEdge(ua, top); err != nil {
		return nil, structural(err, "root")
	}
	d.root = ua
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
