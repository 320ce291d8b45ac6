package tree

import (
	"errors"

	herrors "github.com/matzehuels/historydag/pkg/errors"
)

// ErrUnknownLeaf is returned by [Annotate] when a leaf has no sequence.
var ErrUnknownLeaf = errors.New("no sequence for leaf")

// Annotate sets node sequences from seqs, keyed by node name. Every leaf
// must be found. Internal nodes are annotated when their name is present and
// otherwise left for [Reconstruct].
func Annotate(root *Node, seqs map[string]string) error {
	for _, n := range root.Postorder() {
		s, ok := seqs[n.Name]
		switch {
		case ok && n.Name != "":
			n.Sequence = s
		case n.IsLeaf() && n.Sequence == "":
			return herrors.Wrap(herrors.ErrCodeInvalidInput, ErrUnknownLeaf, "leaf %q", n.Name)
		}
	}
	return nil
}
