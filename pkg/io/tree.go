package io

import (
	"encoding/json"
	"fmt"
	"io"

	herrors "github.com/matzehuels/historydag/pkg/errors"
	"github.com/matzehuels/historydag/pkg/tree"
)

// TreeDocument is an annotated tree together with the reference sequence its
// compact genomes are computed against.
type TreeDocument struct {
	ReferenceID string
	Reference   string
	Tree        *tree.Node
}

type treeDocument struct {
	ReferenceID string    `json:"reference_id,omitempty"`
	Reference   string    `json:"reference"`
	Tree        *treeNode `json:"tree"`
}

type treeNode struct {
	Name     string      `json:"name,omitempty"`
	Sequence string      `json:"sequence,omitempty"`
	Children []*treeNode `json:"children,omitempty"`
}

func toTreeNode(n *tree.Node) *treeNode {
	out := &treeNode{Name: n.Name, Sequence: n.Sequence}
	for _, c := range n.Children {
		out.Children = append(out.Children, toTreeNode(c))
	}
	return out
}

func fromTreeNode(n *treeNode) *tree.Node {
	out := &tree.Node{Name: n.Name, Sequence: n.Sequence}
	for _, c := range n.Children {
		if c != nil {
			out.Children = append(out.Children, fromTreeNode(c))
		}
	}
	return out
}

// ReadTreeJSON decodes a tree document:
//
//	{
//	  "reference": "ACGT",
//	  "tree": {"sequence": "ACGT", "children": [{"name": "s1", "sequence": "ACGA"}, ...]}
//	}
//
// If reference is omitted the root sequence is used.
func ReadTreeJSON(r io.Reader) (*TreeDocument, error) {
	var doc treeDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeInvalidFormat, err, "decode tree")
	}
	if doc.Tree == nil {
		return nil, herrors.New(herrors.ErrCodeInvalidFormat, "document has no tree")
	}
	out := &TreeDocument{ReferenceID: doc.ReferenceID, Reference: doc.Reference, Tree: fromTreeNode(doc.Tree)}
	if out.Reference == "" {
		out.Reference = out.Tree.Sequence
	}
	if out.Reference == "" {
		return nil, herrors.New(herrors.ErrCodeInvalidInput, "tree document has no reference and no root sequence")
	}
	return out, nil
}

// ImportTreeJSON reads a tree document from a file.
func ImportTreeJSON(path string) (*TreeDocument, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := ReadTreeJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// WriteTreeJSON encodes a tree document to w.
func WriteTreeJSON(doc *TreeDocument, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	err := enc.Encode(treeDocument{
		ReferenceID: doc.ReferenceID,
		Reference:   doc.Reference,
		Tree:        toTreeNode(doc.Tree),
	})
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
