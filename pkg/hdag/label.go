package hdag

import (
	"cmp"

	"github.com/matzehuels/historydag/pkg/genome"
)

// uaKey is the structural key of the universal ancestor label. It cannot
// collide with a genome key, which never starts with a NUL byte.
const uaKey = "\x00UA"

// Label is the identity content of a node: a compact genome and, on leaves, a
// unique leaf name. The universal ancestor (UA) node carries a distinguished
// sentinel label created with [UALabel].
type Label struct {
	Genome genome.CompactGenome
	Name   string
	ua     bool
}

// UALabel returns the sentinel label of the universal ancestor node.
func UALabel() Label { return Label{ua: true} }

// NewLabel creates a label. Name should only be set for leaves.
func NewLabel(g genome.CompactGenome, name string) Label {
	return Label{Genome: g, Name: name}
}

// IsUA reports whether l is the universal ancestor sentinel.
func (l Label) IsUA() bool { return l.ua }

// Key returns the structural key of the label. Two labels have the same key
// iff they are equal within one DAG (where all genomes share a reference).
func (l Label) Key() string {
	if l.ua {
		return uaKey
	}
	if l.Name == "" {
		return l.Genome.Key()
	}
	return l.Genome.Key() + "\x1c" + l.Name
}

// Equal reports whether two labels are identical, references included.
func (l Label) Equal(o Label) bool {
	return l.ua == o.ua && l.Name == o.Name && l.Genome.Equal(o.Genome)
}

// Compare orders labels by genome, then name. The UA label sorts last.
func (l Label) Compare(o Label) int {
	switch {
	case l.ua && o.ua:
		return 0
	case l.ua:
		return 1
	case o.ua:
		return -1
	}
	if c := l.Genome.Compare(o.Genome); c != 0 {
		return c
	}
	return cmp.Compare(l.Name, o.Name)
}

// String implements fmt.Stringer.
func (l Label) String() string {
	switch {
	case l.ua:
		return "UA"
	case l.Name != "":
		return l.Name
	default:
		return l.Genome.String()
	}
}
