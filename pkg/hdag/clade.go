package hdag

import (
	"slices"
	"strings"
)

// Clade is an immutable set of leaf label keys: the leaves reachable below an
// edge. Clades are structural keys only and are never mutated once built.
type Clade struct {
	leaves []string
	key    string
}

// NewClade creates a clade from leaf label keys. Duplicates are removed.
func NewClade(keys ...string) Clade {
	leaves := slices.Clone(keys)
	slices.Sort(leaves)
	leaves = slices.Compact(leaves)
	return Clade{leaves: leaves, key: strings.Join(leaves, "\x1f")}
}

// Key returns a string uniquely identifying the set.
func (c Clade) Key() string { return c.key }

// Len returns the number of leaves in the clade.
func (c Clade) Len() int { return len(c.leaves) }

// Leaves returns a sorted copy of the leaf keys.
func (c Clade) Leaves() []string { return slices.Clone(c.leaves) }

// Contains reports whether the clade holds the leaf key k.
func (c Clade) Contains(k string) bool {
	_, ok := slices.BinarySearch(c.leaves, k)
	return ok
}

// Equal reports whether both clades hold the same leaves.
func (c Clade) Equal(o Clade) bool { return c.key == o.key && len(c.leaves) == len(o.leaves) }

// Union returns the clade holding the leaves of both.
func (c Clade) Union(o Clade) Clade {
	out := make([]string, 0, len(c.leaves)+len(o.leaves))
	i, j := 0, 0
	for i < len(c.leaves) && j < len(o.leaves) {
		switch strings.Compare(c.leaves[i], o.leaves[j]) {
		case -1:
			out = append(out, c.leaves[i])
			i++
		case 1:
			out = append(out, o.leaves[j])
			j++
		default:
			out = append(out, c.leaves[i])
			i++
			j++
		}
	}
	out = append(out, c.leaves[i:]...)
	out = append(out, o.leaves[j:]...)
	return Clade{leaves: out, key: strings.Join(out, "\x1f")}
}

// Overlaps reports whether the clades share at least one leaf.
func (c Clade) Overlaps(o Clade) bool {
	i, j := 0, 0
	for i < len(c.leaves) && j < len(o.leaves) {
		switch strings.Compare(c.leaves[i], o.leaves[j]) {
		case -1:
			i++
		case 1:
			j++
		default:
			return true
		}
	}
	return false
}

func compareClades(a, b Clade) int { return strings.Compare(a.key, b.key) }
