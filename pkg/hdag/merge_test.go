package hdag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	herrors "github.com/matzehuels/historydag/pkg/errors"
)

func TestMergeAlternativeParents(t *testing.T) {
	x := build(t, inner("AAAC", leaf("L", "AAAA")))
	y := build(t, inner("AAAG", leaf("L", "AAAA")))

	d := merged(t, x, y)
	assert.Equal(t, int64(2), d.CountHistories().Int64())
	assert.Equal(t, 4, d.NodeCount())
	assert.Len(t, d.Root().Children(0), 2)
}

func TestMergeSharesStructure(t *testing.T) {
	trees := []*DAG{
		build(t, topology([2][2]string{{"a", "b"}, {"c", "d"}})),
		build(t, topology([2][2]string{{"a", "c"}, {"b", "d"}})),
		build(t, topology([2][2]string{{"a", "d"}, {"b", "c"}})),
	}
	d := merged(t, trees...)

	assert.Equal(t, int64(3), d.CountHistories().Int64())
	assert.Equal(t, 14, d.NodeCount())
	total := 0
	for _, tr := range trees {
		total += tr.NodeCount()
	}
	assert.Less(t, d.NodeCount(), total)
}

func TestMergeRecombinesClades(t *testing.T) {
	t1 := build(t, quartet("AAAA", "AAAA"))
	t2 := build(t, quartet("CAAA", "AAAC"))
	d := merged(t, t1, t2)

	// The root node is shared, so both clades choose independently.
	assert.Equal(t, int64(4), d.CountHistories().Int64())
	for _, in := range []*DAG{t1, t2} {
		for h := range in.Histories() {
			assert.True(t, containsHistory(d, h.Canonical()))
		}
	}
}

func TestMergeLaws(t *testing.T) {
	a := build(t, quartet("AAAA", "AAAA"))
	b := build(t, quartet("CAAA", "AAAC"))
	c := build(t, topology([2][2]string{{"a", "c"}, {"b", "d"}}))

	t.Run("idempotent", func(t *testing.T) {
		requireEqual(t, merged(t, a, a), a)
	})
	t.Run("commutative", func(t *testing.T) {
		requireEqual(t, merged(t, a, b), merged(t, b, a))
	})
	t.Run("associative", func(t *testing.T) {
		requireEqual(t, merged(t, merged(t, a, b), c), merged(t, a, merged(t, b, c)))
	})
	t.Run("inputs untouched", func(t *testing.T) {
		before := a.Canonicalize()
		_ = merged(t, a, b, c)
		eq, err := before.Equal(a.Canonicalize())
		require.NoError(t, err)
		assert.True(t, eq)
	})
}

func TestMergeIncomparable(t *testing.T) {
	a := build(t, quartet("AAAA", "AAAA"))

	other, err := FromTree(inner("CCCC", leaf("a", "CCCA"), leaf("b", "ACCC")), "CCCC", BuildOptions{})
	require.NoError(t, err)
	err = a.Merge(other)
	assert.True(t, herrors.Is(err, herrors.ErrCodeIncomparable))
	assert.True(t, errors.Is(err, ErrReferenceMismatch))

	fewer := build(t, inner("AAAA", leaf("a", "CAAA"), leaf("b", "ACAA")))
	err = a.Merge(fewer)
	assert.True(t, herrors.Is(err, herrors.ErrCodeIncomparable))
	assert.True(t, errors.Is(err, ErrLeafSetMismatch))

	_, err = Merge()
	assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidInput))
}

func TestMergeRollsBackOnCycle(t *testing.T) {
	// Unifurcating chains with swapped labels intern to the same two nodes
	// with opposite edges.
	a := build(t, inner("AAAC", inner("AAAG", leaf("L", "AAAA"))))
	b := build(t, inner("AAAG", inner("AAAC", leaf("L", "AAAA"))))

	before := a.Copy()
	err := a.Merge(b)
	require.Error(t, err)
	assert.True(t, herrors.Is(err, herrors.ErrCodeStructural))
	assert.ErrorIs(t, err, ErrGraphHasCycle)

	assert.Equal(t, before.NodeCount(), a.NodeCount())
	assert.Equal(t, before.EdgeCount(), a.EdgeCount())
	require.NoError(t, a.Validate())
	requireEqual(t, a, before)
}

func containsHistory(d *DAG, canonical string) bool {
	for h := range d.Histories() {
		if h.Canonical() == canonical {
			return true
		}
	}
	return false
}
