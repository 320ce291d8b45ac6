package io

import (
	"encoding/json"
	"fmt"
	"io"

	herrors "github.com/matzehuels/historydag/pkg/errors"
	"github.com/matzehuels/historydag/pkg/genome"
	"github.com/matzehuels/historydag/pkg/hdag"
)

// exchange is the wire shape of a flattened history DAG.
type exchange struct {
	RefSeq         [2]string    `json:"refseq"`
	Sorted         bool         `json:"sorted"`
	CompactGenomes [][]siteDiff `json:"compact_genomes"`
	LeafNames      []string     `json:"leaf_names,omitempty"`
	Nodes          []flatNode   `json:"nodes"`
	Edges          [][3]int     `json:"edges"`
}

// siteDiff encodes one mutation as [pos, ["A", "G"]].
type siteDiff struct {
	Pos      int
	Ref, Alt byte
}

func (s siteDiff) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{s.Pos, [2]string{string(s.Ref), string(s.Alt)}})
}

func (s *siteDiff) UnmarshalJSON(b []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("mutation: %w", err)
	}
	var bases [2]string
	if err := json.Unmarshal(raw[0], &s.Pos); err != nil {
		return fmt.Errorf("mutation position: %w", err)
	}
	if err := json.Unmarshal(raw[1], &bases); err != nil {
		return fmt.Errorf("mutation bases: %w", err)
	}
	if len(bases[0]) != 1 || len(bases[1]) != 1 {
		return fmt.Errorf("mutation bases must be single characters, got %q", bases)
	}
	s.Ref, s.Alt = bases[0][0], bases[1][0]
	return nil
}

// flatNode encodes a node as [label_idx, [[label_idx, ...], ...]].
type flatNode struct {
	Label  int
	Clades [][]int
}

func (n flatNode) MarshalJSON() ([]byte, error) {
	clades := n.Clades
	if clades == nil {
		clades = [][]int{}
	}
	return json.Marshal([]any{n.Label, clades})
}

func (n *flatNode) UnmarshalJSON(b []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("node: %w", err)
	}
	if err := json.Unmarshal(raw[0], &n.Label); err != nil {
		return fmt.Errorf("node label: %w", err)
	}
	if err := json.Unmarshal(raw[1], &n.Clades); err != nil {
		return fmt.Errorf("node clades: %w", err)
	}
	return nil
}

func toExchange(f *hdag.Form) exchange {
	out := exchange{
		RefSeq:         [2]string{f.ReferenceID, f.Reference},
		Sorted:         f.Sorted,
		CompactGenomes: make([][]siteDiff, len(f.Labels)),
		Nodes:          make([]flatNode, len(f.Nodes)),
		Edges:          make([][3]int, len(f.Edges)),
	}
	named := false
	names := make([]string, len(f.Labels))
	for i, l := range f.Labels {
		muts := l.Genome.Mutations()
		out.CompactGenomes[i] = make([]siteDiff, len(muts))
		for j, m := range muts {
			out.CompactGenomes[i][j] = siteDiff{Pos: m.Pos, Ref: m.Ref, Alt: m.Alt}
		}
		names[i] = l.Name
		named = named || l.Name != ""
	}
	if named {
		out.LeafNames = names
	}
	for i, n := range f.Nodes {
		out.Nodes[i] = flatNode{Label: n.Label, Clades: n.Clades}
	}
	for i, e := range f.Edges {
		out.Edges[i] = [3]int{e.Parent, e.Child, e.Clade}
	}
	return out
}

func fromExchange(x exchange) (*hdag.Form, error) {
	if len(x.LeafNames) != 0 && len(x.LeafNames) != len(x.CompactGenomes) {
		return nil, herrors.New(herrors.ErrCodeMalformedForm,
			"leaf_names has %d entries, compact_genomes has %d", len(x.LeafNames), len(x.CompactGenomes))
	}
	f := &hdag.Form{
		ReferenceID: x.RefSeq[0],
		Reference:   x.RefSeq[1],
		Sorted:      x.Sorted,
		Labels:      make([]hdag.Label, len(x.CompactGenomes)),
		Nodes:       make([]hdag.FormNode, len(x.Nodes)),
		Edges:       make([]hdag.FormEdge, len(x.Edges)),
	}
	for i, cg := range x.CompactGenomes {
		muts := make([]genome.Mutation, len(cg))
		for j, s := range cg {
			if s.Pos >= 1 && s.Pos <= len(f.Reference) && f.Reference[s.Pos-1] != s.Ref {
				return nil, herrors.Wrap(herrors.ErrCodeMalformedForm, genome.ErrBaseMismatch, "compact genome %d: %d", i, s.Pos)
			}
			muts[j] = genome.Mutation{Pos: s.Pos, Ref: s.Ref, Alt: s.Alt}
		}
		g, err := genome.New(muts, f.Reference)
		if err != nil {
			return nil, herrors.Wrap(herrors.ErrCodeMalformedForm, err, "compact genome %d", i)
		}
		var name string
		if len(x.LeafNames) > 0 {
			name = x.LeafNames[i]
		}
		f.Labels[i] = hdag.NewLabel(g, name)
	}
	for i, n := range x.Nodes {
		f.Nodes[i] = hdag.FormNode{Label: n.Label, Clades: n.Clades}
	}
	for i, e := range x.Edges {
		f.Edges[i] = hdag.FormEdge{Parent: e[0], Child: e[1], Clade: e[2]}
	}
	return f, nil
}

// EncodeForm writes f in the JSON exchange format. The form is written as
// given; its sorted flag is preserved.
func EncodeForm(f *hdag.Form, w io.Writer) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(toExchange(f)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// DecodeForm reads a form in the JSON exchange format without building a
// DAG. Unsorted forms are accepted.
func DecodeForm(r io.Reader) (*hdag.Form, error) {
	var x exchange
	if err := json.NewDecoder(r).Decode(&x); err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeMalformedForm, err, "decode")
	}
	return fromExchange(x)
}
