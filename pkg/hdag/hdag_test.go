package hdag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/historydag/pkg/tree"
)

const ref = "AAAA"

func leaf(name, seq string) *tree.Node { return &tree.Node{Name: name, Sequence: seq} }

func inner(seq string, children ...*tree.Node) *tree.Node {
	return &tree.Node{Sequence: seq, Children: children}
}

func build(t *testing.T, root *tree.Node) *DAG {
	t.Helper()
	d, err := FromTree(root, ref, BuildOptions{})
	require.NoError(t, err)
	return d
}

func merged(t *testing.T, dags ...*DAG) *DAG {
	t.Helper()
	d, err := Merge(dags...)
	require.NoError(t, err)
	require.NoError(t, d.Validate())
	return d
}

// quartet builds ((a,b)x,(c,d)y) with root sequence AAAA.
func quartet(x, y string) *tree.Node {
	return inner("AAAA",
		inner(x, leaf("a", "CAAA"), leaf("b", "ACAA")),
		inner(y, leaf("c", "AACA"), leaf("d", "AAAC")),
	)
}

func topology(pairs [2][2]string) *tree.Node {
	seqs := map[string]string{"a": "CAAA", "b": "ACAA", "c": "AACA", "d": "AAAC"}
	return inner("AAAA",
		inner("AAAA", leaf(pairs[0][0], seqs[pairs[0][0]]), leaf(pairs[0][1], seqs[pairs[0][1]])),
		inner("AAAA", leaf(pairs[1][0], seqs[pairs[1][0]]), leaf(pairs[1][1], seqs[pairs[1][1]])),
	)
}

func requireEqual(t *testing.T, a, b *DAG) {
	t.Helper()
	eq, err := Equal(a, b)
	require.NoError(t, err)
	require.True(t, eq)
}
