package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	herrors "github.com/matzehuels/historydag/pkg/errors"
)

func leaf(name, seq string) *Node { return &Node{Name: name, Sequence: seq} }

func inner(seq string, children ...*Node) *Node {
	return &Node{Sequence: seq, Children: children}
}

func TestCanonicalIgnoresChildOrder(t *testing.T) {
	a := inner("AA", inner("AC", leaf("x", "CC"), leaf("y", "AC")), leaf("z", "GA"))
	b := inner("AA", leaf("z", "GA"), inner("AC", leaf("y", "AC"), leaf("x", "CC")))
	assert.Equal(t, a.Canonical(), b.Canonical())

	c := inner("AA", leaf("z", "GA"), inner("AG", leaf("y", "AC"), leaf("x", "CC")))
	assert.NotEqual(t, a.Canonical(), c.Canonical())
}

func TestCloneIsDeep(t *testing.T) {
	a := inner("AA", leaf("x", "CC"), leaf("y", "AC"))
	b := a.Clone()
	b.Children[0].Sequence = "GG"
	assert.Equal(t, "CC", a.Children[0].Sequence)
	assert.Equal(t, 3, b.Size())
	assert.Len(t, b.Leaves(), 2)
}

func TestPostorder(t *testing.T) {
	x, y, z := leaf("x", "A"), leaf("y", "C"), leaf("z", "G")
	mid := inner("A", x, y)
	root := inner("A", mid, z)
	assert.Equal(t, []*Node{x, y, mid, z, root}, root.Postorder())
}

func TestCollapse(t *testing.T) {
	root := inner("AA",
		inner("AA", leaf("x", "CA"), inner("AA", leaf("y", "AC"), leaf("w", "AT"))),
		inner("GA", leaf("z", "GA"), leaf("v", "GG")),
	)
	require.False(t, IsCollapsed(root))

	Collapse(root)
	assert.True(t, IsCollapsed(root))
	assert.Len(t, root.Children, 4)
	assert.Len(t, root.Leaves(), 5)
}

func TestCollapseKeepsLeaves(t *testing.T) {
	root := inner("AA", leaf("x", "AA"), leaf("y", "AC"))
	Collapse(root)
	assert.Len(t, root.Children, 2)
}

func TestReconstruct(t *testing.T) {
	// ((x:AC, y:AC), (z:GT, w:GC))
	root := inner("", inner("", leaf("x", "AC"), leaf("y", "AC")), inner("", leaf("z", "GT"), leaf("w", "GC")))
	require.True(t, NeedsReconstruction(root))
	require.NoError(t, Reconstruct(root))
	require.False(t, NeedsReconstruction(root))

	assert.Equal(t, "AC", root.Children[0].Sequence)
	// Site 1 ties between A and G at the root, broken alphabetically.
	assert.Equal(t, "AC", root.Sequence)
	// Right cherry: site 1 is G; site 2 ties C/T and follows the parent's C.
	assert.Equal(t, "GC", root.Children[1].Sequence)
	assert.Equal(t, 2, ParsimonyScore(root))
}

func TestReconstructPolytomy(t *testing.T) {
	root := inner("", leaf("a", "A"), leaf("b", "G"), leaf("c", "G"))
	require.NoError(t, Reconstruct(root))
	assert.Equal(t, "G", root.Sequence)
	assert.Equal(t, 1, ParsimonyScore(root))
}

func TestReconstructAmbiguousLeaf(t *testing.T) {
	root := inner("", leaf("a", "N"), leaf("b", "R"), leaf("c", "G"))
	require.NoError(t, Reconstruct(root))
	assert.Equal(t, "G", root.Sequence)
	assert.Equal(t, 0, ParsimonyScore(root))
	assert.Equal(t, "N", root.Children[0].Sequence, "leaves are untouched")
}

func TestReconstructKeepsFixedInternal(t *testing.T) {
	root := inner("", inner("TT", leaf("x", "AA"), leaf("y", "AA")), leaf("z", "TT"))
	require.NoError(t, Reconstruct(root))
	assert.Equal(t, "TT", root.Children[0].Sequence)
	assert.Equal(t, "TT", root.Sequence)
}

func TestReconstructErrors(t *testing.T) {
	tests := []struct {
		name string
		root *Node
		code herrors.Code
	}{
		{"missing leaf sequence", inner("", leaf("x", ""), leaf("y", "A")), herrors.ErrCodeInvalidInput},
		{"length mismatch", inner("", leaf("x", "AA"), leaf("y", "A")), herrors.ErrCodeInvalidInput},
		{"invalid character", inner("", leaf("x", "AZ"), leaf("y", "AA")), herrors.ErrCodeInvalidSequence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Reconstruct(tt.root)
			require.Error(t, err)
			assert.True(t, herrors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestAnnotate(t *testing.T) {
	root := &Node{Children: []*Node{
		{Name: "anc", Children: []*Node{{Name: "x"}, {Name: "y"}}},
		{Name: "z"},
	}}
	seqs := map[string]string{"x": "AC", "y": "AG", "z": "TT", "anc": "AA"}
	require.NoError(t, Annotate(root, seqs))
	assert.Equal(t, "AA", root.Children[0].Sequence)
	assert.Equal(t, "TT", root.Children[1].Sequence)
	assert.Equal(t, "", root.Sequence)

	err := Annotate(&Node{Children: []*Node{{Name: "x"}, {Name: "missing"}}}, seqs)
	assert.ErrorIs(t, err, ErrUnknownLeaf)
	assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidInput))
}
