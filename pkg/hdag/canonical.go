package hdag

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	herrors "github.com/matzehuels/historydag/pkg/errors"
	"github.com/matzehuels/historydag/pkg/genome"
)

// UAIndex is the label index of the UA node in a [Form].
const UAIndex = -1

var (
	// ErrUnsortedForm is returned by [Form.Equal] when a form is not marked
	// sorted.
	ErrUnsortedForm = errors.New("form is not sorted")

	// ErrLabelsOutOfOrder is returned by [FromForm] when a form marked sorted
	// lists its labels out of order.
	ErrLabelsOutOfOrder = errors.New("labels of a sorted form are out of order")
)

// Form is the flat, order-normalized representation of a DAG: a label table,
// nodes that reference labels by index, and edges that reference nodes by
// index. It is the model behind the JSON exchange format.
//
// When Sorted is set, Labels are in [Label.Compare] order, node clades are
// sorted label-index lists in lexicographic order and nodes are in the
// canonical postorder produced by [DAG.Canonicalize]. Two DAGs are equal iff
// their sorted forms are identical.
type Form struct {
	ReferenceID string
	Reference   string
	Sorted      bool
	Labels      []Label
	Nodes       []FormNode
	Edges       []FormEdge
}

// FormNode is a node of a [Form]. Label indexes Form.Labels or is [UAIndex].
// Each clade lists the label indices of its leaves.
type FormNode struct {
	Label  int
	Clades [][]int
}

// FormEdge is an edge of a [Form]. Clade indexes the parent's Clades.
type FormEdge struct {
	Parent int
	Child  int
	Clade  int
}

// Canonicalize returns the sorted form of d. DAGs holding the same nodes and
// edges produce identical forms regardless of construction order.
func (d *DAG) Canonicalize() *Form {
	f := &Form{ReferenceID: d.refID, Reference: d.reference, Sorted: true}

	seen := make(map[string]bool)
	for _, n := range d.nodes {
		if k := n.Label.Key(); !n.IsUA() && !seen[k] {
			seen[k] = true
			f.Labels = append(f.Labels, n.Label)
		}
	}
	slices.SortFunc(f.Labels, Label.Compare)
	labelIdx := make(map[string]int, len(f.Labels))
	for i, l := range f.Labels {
		labelIdx[l.Key()] = i
	}

	// Each node's clades are renumbered to label indices and sorted; perm maps
	// a stored clade position to its canonical position.
	reprs := make([]FormNode, len(d.nodes))
	keys := make([]string, len(d.nodes))
	perms := make([][]int, len(d.nodes))
	for _, n := range d.nodes {
		li := UAIndex
		if !n.IsUA() {
			li = labelIdx[n.Label.Key()]
		}
		clades := make([][]int, len(n.clades))
		for ci, c := range n.clades {
			idx := make([]int, 0, c.Len())
			for _, k := range c.leaves {
				idx = append(idx, labelIdx[k])
			}
			slices.Sort(idx)
			clades[ci] = idx
		}
		order := make([]int, len(clades))
		for i := range order {
			order[i] = i
		}
		slices.SortFunc(order, func(a, b int) int { return slices.Compare(clades[a], clades[b]) })
		perm := make([]int, len(clades))
		sorted := make([][]int, len(clades))
		for pos, ci := range order {
			perm[ci] = pos
			sorted[pos] = clades[ci]
		}
		reprs[n.ID] = FormNode{Label: li, Clades: sorted}
		perms[n.ID] = perm
		keys[n.ID] = formNodeKey(reprs[n.ID])
	}

	pos := make(map[NodeID]int, len(d.nodes))
	var visit func(NodeID)
	visit = func(id NodeID) {
		pos[id] = -1
		for _, t := range canonicalChildren(d.nodes[id], perms[id], keys) {
			if _, ok := pos[t.id]; !ok {
				visit(t.id)
			}
		}
		pos[id] = len(f.Nodes)
		f.Nodes = append(f.Nodes, reprs[id])
	}
	visit(d.root)

	order := make([]NodeID, len(f.Nodes))
	for id, p := range pos {
		order[p] = id
	}
	for _, id := range order {
		for _, t := range canonicalChildren(d.nodes[id], perms[id], keys) {
			f.Edges = append(f.Edges, FormEdge{Parent: pos[id], Child: pos[t.id], Clade: t.clade})
		}
	}
	return f
}

type canonicalChild struct {
	id    NodeID
	clade int
}

// canonicalChildren lists a node's edge targets by canonical clade, then by
// target key.
func canonicalChildren(n *Node, perm []int, keys []string) []canonicalChild {
	out := make([]canonicalChild, 0, n.OutDegree())
	for ci, targets := range n.children {
		for _, t := range targets {
			out = append(out, canonicalChild{id: t, clade: perm[ci]})
		}
	}
	slices.SortFunc(out, func(a, b canonicalChild) int {
		if a.clade != b.clade {
			return a.clade - b.clade
		}
		return strings.Compare(keys[a.id], keys[b.id])
	})
	return out
}

// formNodeKey expects the clades already sorted.
func formNodeKey(n FormNode) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(n.Label))
	b.WriteByte('|')
	for i, c := range n.Clades {
		if i > 0 {
			b.WriteByte(';')
		}
		for j, l := range c {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(l))
		}
	}
	return b.String()
}

func malformed(err error, format string, args ...any) error {
	return herrors.Wrap(herrors.ErrCodeMalformedForm, err, format, args...)
}

// FromForm rebuilds and validates a DAG from a form. A missing reference,
// genomes inconsistent with it, index errors, duplicate labels or nodes, a
// missing UA node, unsorted labels in a form marked
// sorted and structural violations are all reported as
// MALFORMED_EXCHANGE_FORM errors.
func FromForm(f *Form) (*DAG, error) {
	if f == nil {
		return nil, herrors.New(herrors.ErrCodeMalformedForm, "form is nil")
	}
	if f.Reference == "" {
		return nil, malformed(genome.ErrNoReference, "form")
	}
	keys := make([]string, len(f.Labels))
	seen := make(map[string]bool, len(f.Labels))
	for i, l := range f.Labels {
		if l.IsUA() {
			return nil, herrors.New(herrors.ErrCodeMalformedForm, "label %d is the UA sentinel", i)
		}
		if l.Genome.Reference() != f.Reference {
			return nil, malformed(ErrReferenceMismatch, "label %d", i)
		}
		if err := l.Genome.Validate(); err != nil {
			return nil, malformed(err, "label %d", i)
		}
		keys[i] = l.Key()
		if seen[keys[i]] {
			return nil, herrors.New(herrors.ErrCodeMalformedForm, "duplicate label %d (%s)", i, l)
		}
		seen[keys[i]] = true
		if f.Sorted && i > 0 && f.Labels[i-1].Compare(l) > 0 {
			return nil, malformed(ErrLabelsOutOfOrder, "label %d", i)
		}
	}

	d := newDAG(f.Reference)
	d.refID = f.ReferenceID
	ids := make([]NodeID, len(f.Nodes))
	clades := make([][]Clade, len(f.Nodes))
	root := -1
	for i, fn := range f.Nodes {
		var label Label
		switch {
		case fn.Label == UAIndex:
			if root >= 0 {
				return nil, malformed(ErrMultipleRoots, "node %d", i)
			}
			label, root = UALabel(), i
		case fn.Label < 0 || fn.Label >= len(f.Labels):
			return nil, herrors.New(herrors.ErrCodeMalformedForm, "node %d: label index %d out of range", i, fn.Label)
		default:
			label = f.Labels[fn.Label]
		}
		clades[i] = make([]Clade, len(fn.Clades))
		for ci, c := range fn.Clades {
			if len(c) == 0 {
				return nil, malformed(ErrEmptyClade, "node %d clade %d", i, ci)
			}
			leaves := make([]string, len(c))
			for j, li := range c {
				if li < 0 || li >= len(f.Labels) {
					return nil, herrors.New(herrors.ErrCodeMalformedForm, "node %d clade %d: label index %d out of range", i, ci, li)
				}
				leaves[j] = keys[li]
			}
			clades[i][ci] = NewClade(leaves...)
		}
		id, created := d.addNode(label, clades[i])
		if !created {
			return nil, herrors.New(herrors.ErrCodeMalformedForm, "duplicate node %d", i)
		}
		ids[i] = id
	}
	if root < 0 {
		return nil, malformed(ErrNoRoot, "decode")
	}

	for i, e := range f.Edges {
		if e.Parent < 0 || e.Parent >= len(f.Nodes) || e.Child < 0 || e.Child >= len(f.Nodes) {
			return nil, herrors.New(herrors.ErrCodeMalformedForm, "edge %d: node index out of range", i)
		}
		if e.Clade < 0 || e.Clade >= len(clades[e.Parent]) {
			return nil, herrors.New(herrors.ErrCodeMalformedForm, "edge %d: clade index %d out of range", i, e.Clade)
		}
		if !clades[e.Parent][e.Clade].Equal(d.nodes[ids[e.Child]].union) {
			return nil, malformed(ErrCladeMismatch, "edge %d", i)
		}
		if _, err := d.addEdge(ids[e.Parent], ids[e.Child]); err != nil {
			return nil, malformed(err, "edge %d", i)
		}
	}
	d.root = ids[root]
	if err := d.Validate(); err != nil {
		return nil, malformed(err, "decode")
	}
	return d, nil
}

// Sort rewrites an arbitrary form into its canonical sorted form.
func (f *Form) Sort() error {
	unsorted := *f
	unsorted.Sorted = false
	d, err := FromForm(&unsorted)
	if err != nil {
		return err
	}
	*f = *d.Canonicalize()
	return nil
}

// Equal reports whether two sorted forms describe the same DAG: equal label
// lists and equal sets of edges between canonical node representations.
// Forms not marked sorted are refused with MALFORMED_EXCHANGE_FORM; call
// [Form.Sort] first. Different references are INCOMPARABLE_REFERENCE.
func (f *Form) Equal(o *Form) (bool, error) {
	if !f.Sorted || !o.Sorted {
		return false, malformed(ErrUnsortedForm, "equal")
	}
	if f.Reference != o.Reference {
		return false, herrors.Wrap(herrors.ErrCodeIncomparable, ErrReferenceMismatch, "equal")
	}
	if !slices.EqualFunc(f.Labels, o.Labels, Label.Equal) {
		return false, nil
	}
	a, err := f.edgeSet()
	if err != nil {
		return false, err
	}
	b, err := o.edgeSet()
	if err != nil {
		return false, err
	}
	if len(a) != len(b) {
		return false, nil
	}
	for k := range a {
		if !b[k] {
			return false, nil
		}
	}
	return true, nil
}

// edgeSet keys every edge by its endpoint representations. Node keys are
// added on their own so nodes without edges still take part.
func (f *Form) edgeSet() (map[string]bool, error) {
	keys := make([]string, len(f.Nodes))
	for i, n := range f.Nodes {
		keys[i] = formNodeKey(n)
	}
	out := make(map[string]bool, len(f.Edges)+1)
	for i, e := range f.Edges {
		if e.Parent < 0 || e.Parent >= len(keys) || e.Child < 0 || e.Child >= len(keys) {
			return nil, herrors.New(herrors.ErrCodeMalformedForm, "edge %d: node index out of range", i)
		}
		out[keys[e.Parent]+"\x1f"+keys[e.Child]] = true
	}
	for _, k := range keys {
		out[k+"\x1f"] = true
	}
	return out, nil
}

// Equal reports whether two DAGs hold the same nodes and edges, independent
// of construction order. DAGs over different references are
// INCOMPARABLE_REFERENCE.
func Equal(a, b *DAG) (bool, error) {
	if a.reference != b.reference {
		return false, herrors.Wrap(herrors.ErrCodeIncomparable, ErrReferenceMismatch, "equal")
	}
	return a.Canonicalize().Equal(b.Canonicalize())
}
