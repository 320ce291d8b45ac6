package io

import (
	"bytes"
	"strings"
	"testing"

	herrors "github.com/matzehuels/historydag/pkg/errors"
	"github.com/matzehuels/historydag/pkg/tree"
)

func TestReadNewick(t *testing.T) {
	in := "((a:0.1,b:0.2)x:0.05,[comment](c,'d e''f'));\n(a,(b,(c,'d e''f')));"
	trees, err := ReadNewick(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadNewick: %v", err)
	}
	if len(trees) != 2 {
		t.Fatalf("got %d trees, want 2", len(trees))
	}
	first := trees[0]
	if first.Children[0].Name != "x" {
		t.Errorf("internal name = %q, want x", first.Children[0].Name)
	}
	var names []string
	for _, l := range first.Leaves() {
		names = append(names, l.Name)
	}
	if got := strings.Join(names, ","); got != "a,b,c,d e'f" {
		t.Errorf("leaves = %s", got)
	}
	if n := len(trees[1].Leaves()); n != 4 {
		t.Errorf("second tree has %d leaves, want 4", n)
	}
}

func TestReadNewickUnderscores(t *testing.T) {
	trees, err := ReadNewick(strings.NewReader("(s_1,s2);"))
	if err != nil {
		t.Fatal(err)
	}
	if got := trees[0].Children[0].Name; got != "s 1" {
		t.Errorf("name = %q, want %q", got, "s 1")
	}
}

func TestReadNewickErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", "   "},
		{"missing semicolon", "(a,b)"},
		{"unbalanced", "((a,b);"},
		{"unnamed leaf", "(a,);"},
		{"unterminated quote", "('a,b);"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadNewick(strings.NewReader(tt.in))
			if !herrors.Is(err, herrors.ErrCodeInvalidFormat) {
				t.Errorf("err = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestReadNewickReservedName(t *testing.T) {
	_, err := ReadNewick(strings.NewReader("(a,'b:1');"))
	if !herrors.Is(err, herrors.ErrCodeInvalidName) {
		t.Errorf("err = %v, want INVALID_NAME", err)
	}
}

func TestWriteNewickRoundTrip(t *testing.T) {
	in := &tree.Node{Children: []*tree.Node{
		{Children: []*tree.Node{{Name: "a"}, {Name: "b c"}}},
		{Name: "it's"},
	}}
	var buf bytes.Buffer
	if err := WriteNewick(in, &buf); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "((a,'b c'),'it''s');\n"; got != want {
		t.Errorf("WriteNewick = %q, want %q", got, want)
	}
	back, err := ReadNewick(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if back[0].Canonical() != in.Canonical() {
		t.Errorf("round trip changed tree: %s vs %s", back[0].Canonical(), in.Canonical())
	}
}

func TestReadFASTA(t *testing.T) {
	in := "; comment\n>s1 sample one\nACGT\nacgt\n\n>s2\nNNRY\n"
	recs, err := ReadFASTA(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadFASTA: %v", err)
	}
	want := []Record{{Name: "s1", Sequence: "ACGTACGT"}, {Name: "s2", Sequence: "NNRY"}}
	if len(recs) != len(want) {
		t.Fatalf("got %d records, want %d", len(recs), len(want))
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, recs[i], want[i])
		}
	}
	if Sequences(recs)["s2"] != "NNRY" {
		t.Error("Sequences lookup failed")
	}

	var buf bytes.Buffer
	if err := WriteFASTA(recs, &buf); err != nil {
		t.Fatal(err)
	}
	again, err := ReadFASTA(&buf)
	if err != nil || len(again) != 2 || again[0] != want[0] {
		t.Errorf("FASTA round trip: %+v, %v", again, err)
	}
}

func TestReadFASTAErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code herrors.Code
	}{
		{"sequence first", "ACGT\n>s1\nA\n", herrors.ErrCodeInvalidFormat},
		{"empty header", ">\nACGT\n", herrors.ErrCodeInvalidFormat},
		{"duplicate", ">s1\nA\n>s1\nC\n", herrors.ErrCodeInvalidFormat},
		{"bad base", ">s1\nAXGT\n", herrors.ErrCodeInvalidSequence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFASTA(strings.NewReader(tt.in))
			if !herrors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestTreeJSON(t *testing.T) {
	in := `{"reference_id":"r","tree":{"sequence":"AC","children":[{"name":"x","sequence":"AG"},{"name":"y","sequence":"TC"}]}}`
	doc, err := ReadTreeJSON(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Reference != "AC" {
		t.Errorf("reference = %q, want root sequence AC", doc.Reference)
	}
	var buf bytes.Buffer
	if err := WriteTreeJSON(doc, &buf); err != nil {
		t.Fatal(err)
	}
	back, err := ReadTreeJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if back.Tree.Canonical() != doc.Tree.Canonical() || back.ReferenceID != "r" {
		t.Error("tree document round trip changed content")
	}

	if _, err := ReadTreeJSON(strings.NewReader(`{"reference":"AC"}`)); !herrors.Is(err, herrors.ErrCodeInvalidFormat) {
		t.Errorf("missing tree: err = %v", err)
	}
}
