package tree

import (
	"errors"
	"fmt"
	"math/bits"

	herrors "github.com/matzehuels/historydag/pkg/errors"
	"github.com/matzehuels/historydag/pkg/genome"
)

var (
	// ErrMissingLeafSequence is returned by [Reconstruct] when a leaf has no sequence.
	ErrMissingLeafSequence = errors.New("leaf has no sequence")

	// ErrSequenceLength is returned by [Reconstruct] when sequences differ in length.
	ErrSequenceLength = errors.New("sequences have different lengths")
)

func lowest(set uint8) byte { return genome.StateOrder[bits.TrailingZeros8(set)] }

// Reconstruct assigns a maximum parsimony sequence to every internal node with
// an empty Sequence, using Fitch's algorithm generalized to polytomies (a
// node's candidate states are those shared by the most children). Ties are
// broken by the order A, C, G, T, gap, preferring the parent's base.
//
// Leaves must have sequences; they may contain IUPAC ambiguity codes and are
// left untouched. Internal nodes that already have a sequence are kept fixed.
// The tree is modified in place.
func Reconstruct(root *Node) error {
	nodes := root.Postorder()
	length := -1
	for _, n := range nodes {
		if n.Sequence == "" {
			if n.IsLeaf() {
				return herrors.Wrap(herrors.ErrCodeInvalidInput, ErrMissingLeafSequence, "leaf %q", n.Name)
			}
			continue
		}
		if err := herrors.ValidateSequence(n.Sequence); err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
		if length >= 0 && len(n.Sequence) != length {
			return herrors.Wrap(herrors.ErrCodeInvalidInput, ErrSequenceLength, "node %q has %d sites, want %d", n.Name, len(n.Sequence), length)
		}
		length = len(n.Sequence)
	}

	sets := make(map[*Node][]uint8, len(nodes))
	for _, n := range nodes {
		if n.Sequence != "" {
			s := make([]uint8, length)
			for i := 0; i < length; i++ {
				s[i] = genome.States(n.Sequence[i])
			}
			sets[n] = s
			continue
		}
		s := make([]uint8, length)
		for i := 0; i < length; i++ {
			var counts [5]int
			best := 0
			for _, c := range n.Children {
				cs := sets[c][i]
				for b := 0; b < 5; b++ {
					if cs&(1<<b) != 0 {
						counts[b]++
						best = max(best, counts[b])
					}
				}
			}
			for b := 0; b < 5; b++ {
				if counts[b] == best {
					s[i] |= 1 << b
				}
			}
		}
		sets[n] = s
	}

	var assign func(n *Node, parent []byte)
	assign = func(n *Node, parent []byte) {
		if n.Sequence == "" {
			seq := make([]byte, length)
			for i, set := range sets[n] {
				if parent != nil {
					if b := genome.States(parent[i]); b&set != 0 && bits.OnesCount8(b) == 1 {
						seq[i] = parent[i]
						continue
					}
				}
				seq[i] = lowest(set)
			}
			n.Sequence = string(seq)
		}
		for _, c := range n.Children {
			assign(c, []byte(n.Sequence))
		}
	}
	assign(root, nil)
	return nil
}

// NeedsReconstruction reports whether any internal node lacks a sequence.
func NeedsReconstruction(root *Node) bool {
	for _, n := range root.Postorder() {
		if !n.IsLeaf() && n.Sequence == "" {
			return true
		}
	}
	return false
}

// ParsimonyScore returns the number of site changes along all edges of a
// fully labeled tree. Ambiguous leaf sites cost nothing when they admit the
// parent's base.
func ParsimonyScore(root *Node) int {
	score := 0
	for _, n := range root.Postorder() {
		for _, c := range n.Children {
			for i := 0; i < len(c.Sequence) && i < len(n.Sequence); i++ {
				if !genome.Compatible(c.Sequence[i], n.Sequence[i]) {
					score++
				}
			}
		}
	}
	return score
}
