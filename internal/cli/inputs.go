package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	herrors "github.com/matzehuels/historydag/pkg/errors"
	"github.com/matzehuels/historydag/pkg/hdag"
	dagio "github.com/matzehuels/historydag/pkg/io"
	"github.com/matzehuels/historydag/pkg/pipeline"
)

// treeFlags selects the input trees of a build.
type treeFlags struct {
	newick      string
	fasta       string
	reference   string
	referenceID string
	trees       []string
}

func (f *treeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.newick, "newick", "", "Newick file with one or more trees")
	cmd.Flags().StringVar(&f.fasta, "fasta", "", "FASTA file with leaf sequences (required with --newick)")
	cmd.Flags().StringVar(&f.reference, "reference", "", "reference sequence (default: the FASTA record named \"reference\")")
	cmd.Flags().StringVar(&f.referenceID, "reference-id", "", "identifier recorded with the reference")
	cmd.Flags().StringArrayVar(&f.trees, "tree", nil, "annotated tree JSON file (repeatable)")
	cmd.MarkFlagsRequiredTogether("newick", "fasta")
}

// load reads every selected tree.
func (f *treeFlags) load() ([]pipeline.Input, error) {
	var inputs []pipeline.Input
	if f.newick != "" {
		in, err := pipeline.LoadNewick(f.newick, f.fasta, f.reference)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in...)
	}
	if len(f.trees) > 0 {
		in, err := pipeline.LoadTreeJSON(f.trees...)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in...)
	}
	if len(inputs) == 0 {
		return nil, herrors.New(herrors.ErrCodeInvalidInput, "no input trees: use --newick/--fasta or --tree")
	}
	return inputs, nil
}

// readDAG loads a DAG from an exchange-format file, or stdin for "-".
func readDAG(cmd *cobra.Command, path string) (*hdag.DAG, error) {
	if path == "-" {
		return dagio.ReadJSON(cmd.InOrStdin())
	}
	return dagio.ImportJSON(path)
}

// readForm loads a possibly unsorted form from a file, or stdin for "-".
func readForm(cmd *cobra.Command, path string) (*hdag.Form, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, herrors.Wrap(herrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		defer f.Close()
		r = f
	}
	return dagio.DecodeForm(r)
}

// writeDAG writes d to output, or to the command's stdout when output is
// empty or "-".
func writeDAG(cmd *cobra.Command, d *hdag.DAG, output string) error {
	if output == "" || output == "-" {
		return dagio.WriteJSON(d, cmd.OutOrStdout())
	}
	if err := dagio.ExportJSON(d, output); err != nil {
		return err
	}
	printFile(cmd.ErrOrStderr(), output)
	return nil
}
