package genome

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrReferenceMismatch is returned when two genomes relative to different
	// reference sequences are compared.
	ErrReferenceMismatch = errors.New("reference sequences do not match")

	// ErrLengthMismatch is returned by [FromSequence] when the sequence and the
	// reference have different lengths.
	ErrLengthMismatch = errors.New("sequence and reference lengths differ")

	// ErrPositionOutOfRange is returned when a mutation position falls outside
	// the reference sequence.
	ErrPositionOutOfRange = errors.New("mutation position out of range")

	// ErrDuplicatePosition is returned by [New] when two mutations share a site.
	ErrDuplicatePosition = errors.New("duplicate mutation position")

	// ErrBaseMismatch is returned by [CompactGenome.Sequence] when a recorded
	// reference base disagrees with the reference sequence.
	ErrBaseMismatch = errors.New("recorded reference base does not match reference")

	// ErrNoReference is returned by [CompactGenome.Validate] for a genome
	// without a reference sequence.
	ErrNoReference = errors.New("no reference sequence")

	// ErrInvalidMutation is returned by [ParseMutation] for malformed strings.
	ErrInvalidMutation = errors.New("invalid mutation string")
)

// Mutation is a single substitution relative to the reference sequence.
// Pos is 1-based; Ref is the reference base and Alt the substituted base.
type Mutation struct {
	Pos int
	Ref byte
	Alt byte
}

// String renders the mutation as e.g. "A110G".
func (m Mutation) String() string {
	return string(m.Ref) + strconv.Itoa(m.Pos) + string(m.Alt)
}

// ParseMutation parses a mutation string such as "A110G".
func ParseMutation(s string) (Mutation, error) {
	if len(s) < 3 {
		return Mutation{}, fmt.Errorf("%w: %q", ErrInvalidMutation, s)
	}
	pos, err := strconv.Atoi(s[1 : len(s)-1])
	if err != nil || pos < 1 {
		return Mutation{}, fmt.Errorf("%w: %q", ErrInvalidMutation, s)
	}
	return Mutation{Pos: pos, Ref: s[0], Alt: s[len(s)-1]}, nil
}

func compareMutation(a, b Mutation) int {
	if c := a.Pos - b.Pos; c != 0 {
		return c
	}
	if c := int(a.Ref) - int(b.Ref); c != 0 {
		return c
	}
	return int(a.Alt) - int(b.Alt)
}

// CompactGenome is a sequence stored as its differences from a reference.
//
// The zero value is the empty genome relative to an empty reference. Values are
// immutable: every operation that changes the mutation set returns a new genome.
type CompactGenome struct {
	muts      []Mutation
	reference string
}

// New creates a genome from a set of mutations relative to reference.
// Mutations may be given in any order. Returns ErrDuplicatePosition if two
// mutations share a site, or ErrPositionOutOfRange if a site falls outside a
// non-empty reference.
func New(muts []Mutation, reference string) (CompactGenome, error) {
	sorted := slices.Clone(muts)
	slices.SortFunc(sorted, compareMutation)
	for i, m := range sorted {
		if m.Pos < 1 || (reference != "" && m.Pos > len(reference)) {
			return CompactGenome{}, fmt.Errorf("%w: %s", ErrPositionOutOfRange, m)
		}
		if i > 0 && sorted[i-1].Pos == m.Pos {
			return CompactGenome{}, fmt.Errorf("%w: %d", ErrDuplicatePosition, m.Pos)
		}
	}
	return CompactGenome{muts: sorted, reference: reference}, nil
}

// Empty returns the genome identical to reference.
func Empty(reference string) CompactGenome {
	return CompactGenome{reference: reference}
}

// FromSequence computes the genome of seq relative to reference.
func FromSequence(seq, reference string) (CompactGenome, error) {
	if len(seq) != len(reference) {
		return CompactGenome{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(seq), len(reference))
	}
	var muts []Mutation
	for i := 0; i < len(seq); i++ {
		if seq[i] != reference[i] {
			muts = append(muts, Mutation{Pos: i + 1, Ref: reference[i], Alt: seq[i]})
		}
	}
	return CompactGenome{muts: muts, reference: reference}, nil
}

// Reference returns the reference sequence this genome is relative to.
func (g CompactGenome) Reference() string { return g.reference }

// Mutations returns a copy of the mutations sorted by position.
func (g CompactGenome) Mutations() []Mutation { return slices.Clone(g.muts) }

// Len returns the number of mutated sites.
func (g CompactGenome) Len() int { return len(g.muts) }

// Lookup returns the mutation recorded at pos, if any.
func (g CompactGenome) Lookup(pos int) (Mutation, bool) {
	i, ok := slices.BinarySearchFunc(g.muts, pos, func(m Mutation, p int) int { return m.Pos - p })
	if !ok {
		return Mutation{}, false
	}
	return g.muts[i], true
}

// Key returns a canonical string of the mutation set, e.g. "A3G.C10T".
// The reference is not part of the key; within one DAG it is shared.
func (g CompactGenome) Key() string {
	if len(g.muts) == 0 {
		return ""
	}
	var b strings.Builder
	for i, m := range g.muts {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(m.String())
	}
	return b.String()
}

// String implements fmt.Stringer.
func (g CompactGenome) String() string {
	if len(g.muts) == 0 {
		return "<ref>"
	}
	return g.Key()
}

// Equal reports whether both genomes carry the same mutations relative to the
// same reference.
func (g CompactGenome) Equal(o CompactGenome) bool {
	return g.reference == o.reference && slices.Equal(g.muts, o.muts)
}

// Compare orders genomes by their sorted mutation lists, lexicographically.
// A strict prefix sorts first, so the reference genome sorts before all others.
func (g CompactGenome) Compare(o CompactGenome) int {
	return slices.CompareFunc(g.muts, o.muts, compareMutation)
}

// Mutate applies a mutation string such as "A110G" and returns the new genome.
//
// When reverse is true the old and new bases are swapped, undoing the mutation.
// Applying a change at a site that is already mutated either reverts the site
// (when the new base equals the recorded reference base) or replaces the
// alternate base. A recorded alternate that disagrees with the old base is
// tolerated, matching how mutation annotated DAGs record edge mutations.
func (g CompactGenome) Mutate(mut string, reverse bool) (CompactGenome, error) {
	m, err := ParseMutation(mut)
	if err != nil {
		return CompactGenome{}, err
	}
	oldBase, newBase := m.Ref, m.Alt
	if reverse {
		oldBase, newBase = newBase, oldBase
	}
	if g.reference != "" && m.Pos > len(g.reference) {
		return CompactGenome{}, fmt.Errorf("%w: %s", ErrPositionOutOfRange, mut)
	}

	i, found := slices.BinarySearchFunc(g.muts, m.Pos, func(x Mutation, p int) int { return x.Pos - p })
	muts := slices.Clone(g.muts)
	switch {
	case found && muts[i].Ref == newBase:
		muts = slices.Delete(muts, i, i+1)
	case found:
		muts[i].Alt = newBase
	case oldBase != newBase:
		muts = slices.Insert(muts, i, Mutation{Pos: m.Pos, Ref: oldBase, Alt: newBase})
	}
	return CompactGenome{muts: muts, reference: g.reference}, nil
}

// Apply applies each mutation string in order; see [CompactGenome.Mutate].
func (g CompactGenome) Apply(muts []string, reverse bool) (CompactGenome, error) {
	out := g
	for _, mut := range muts {
		var err error
		if out, err = out.Mutate(mut, reverse); err != nil {
			return CompactGenome{}, err
		}
	}
	return out, nil
}

// Base returns the base at 1-based position pos.
func (g CompactGenome) Base(pos int) byte {
	if m, ok := g.Lookup(pos); ok {
		return m.Alt
	}
	return g.reference[pos-1]
}

// Validate checks the genome against its reference: the reference must be
// set and every mutation must lie within it and record its base.
func (g CompactGenome) Validate() error {
	if g.reference == "" {
		return ErrNoReference
	}
	for _, m := range g.muts {
		if m.Pos < 1 || m.Pos > len(g.reference) {
			return fmt.Errorf("%w: %s", ErrPositionOutOfRange, m)
		}
		if g.reference[m.Pos-1] != m.Ref {
			return fmt.Errorf("%w: %s", ErrBaseMismatch, m)
		}
	}
	return nil
}

// Sequence materializes the full sequence.
func (g CompactGenome) Sequence() (string, error) {
	seq := []byte(g.reference)
	for _, m := range g.muts {
		if m.Pos > len(seq) {
			return "", fmt.Errorf("%w: %s", ErrPositionOutOfRange, m)
		}
		if seq[m.Pos-1] != m.Ref {
			return "", fmt.Errorf("%w: %s", ErrBaseMismatch, m)
		}
		seq[m.Pos-1] = m.Alt
	}
	return string(seq), nil
}

// Hamming returns the number of sites at which a and b differ.
func Hamming(a, b CompactGenome) (int, error) {
	if a.reference != b.reference {
		return 0, ErrReferenceMismatch
	}
	return len(Diff(a, b)), nil
}

// Diff returns the mutations that turn parent into child, sorted by position.
// Each returned Mutation has Ref set to the parent base and Alt to the child base.
func Diff(parent, child CompactGenome) []Mutation {
	var out []Mutation
	i, j := 0, 0
	for i < len(parent.muts) || j < len(child.muts) {
		var pm, cm *Mutation
		switch {
		case j == len(child.muts) || (i < len(parent.muts) && parent.muts[i].Pos < child.muts[j].Pos):
			pm = &parent.muts[i]
			i++
		case i == len(parent.muts) || child.muts[j].Pos < parent.muts[i].Pos:
			cm = &child.muts[j]
			j++
		default:
			pm, cm = &parent.muts[i], &child.muts[j]
			i++
			j++
		}
		var pos int
		var from, to byte
		switch {
		case pm != nil && cm != nil:
			pos, from, to = pm.Pos, pm.Alt, cm.Alt
		case pm != nil:
			pos, from, to = pm.Pos, pm.Alt, pm.Ref
		default:
			pos, from, to = cm.Pos, cm.Ref, cm.Alt
		}
		if from != to {
			out = append(out, Mutation{Pos: pos, Ref: from, Alt: to})
		}
	}
	return out
}
