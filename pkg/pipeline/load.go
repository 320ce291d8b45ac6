package pipeline

import (
	"fmt"
	"path/filepath"

	herrors "github.com/matzehuels/historydag/pkg/errors"
	dagio "github.com/matzehuels/historydag/pkg/io"
	"github.com/matzehuels/historydag/pkg/tree"
)

// ReferenceRecord is the FASTA record name used as the reference when none
// is given explicitly.
const ReferenceRecord = "reference"

// LoadNewick reads every tree in a Newick file and annotates its leaves from
// a FASTA file. An empty reference falls back to the FASTA record named
// [ReferenceRecord].
func LoadNewick(newickPath, fastaPath, reference string) ([]Input, error) {
	trees, err := dagio.ImportNewick(newickPath)
	if err != nil {
		return nil, err
	}
	seqs, err := dagio.ImportFASTA(fastaPath)
	if err != nil {
		return nil, err
	}
	if reference == "" {
		ref, ok := seqs[ReferenceRecord]
		if !ok {
			return nil, herrors.New(herrors.ErrCodeInvalidInput,
				"%s: no reference given and no %q record", fastaPath, ReferenceRecord)
		}
		reference = ref
	}
	return annotateAll(filepath.Base(newickPath), trees, seqs, reference)
}

// LoadNewickSequences is [LoadNewick] with sequences already in memory.
func LoadNewickSequences(name string, trees []*tree.Node, seqs map[string]string, reference string) ([]Input, error) {
	if reference == "" {
		return nil, herrors.New(herrors.ErrCodeInvalidInput, "%s: no reference", name)
	}
	return annotateAll(name, trees, seqs, reference)
}

func annotateAll(name string, trees []*tree.Node, seqs map[string]string, reference string) ([]Input, error) {
	inputs := make([]Input, 0, len(trees))
	for i, t := range trees {
		in := Input{Name: fmt.Sprintf("%s#%d", name, i+1), Tree: t, Reference: reference}
		if err := tree.Annotate(t, seqs); err != nil {
			return nil, inputError(in, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// LoadTreeJSON reads one annotated tree document per path.
func LoadTreeJSON(paths ...string) ([]Input, error) {
	inputs := make([]Input, 0, len(paths))
	for _, p := range paths {
		doc, err := dagio.ImportTreeJSON(p)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, Input{Name: filepath.Base(p), Tree: doc.Tree, Reference: doc.Reference})
	}
	return inputs, nil
}
