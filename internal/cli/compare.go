package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/historydag/pkg/hdag"
)

// errDiffer makes `hdag equal` exit non-zero for scripts.
var errDiffer = errors.New("DAGs differ")

// equalCommand compares two DAGs by canonical form.
func (c *CLI) equalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "equal <a.json> <b.json>",
		Short: "Check whether two DAGs are identical",
		Long: `Equal compares two DAGs by their canonical forms: same reference, same
labels and same edges between equivalent nodes. Exits non-zero if they differ.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readDAG(cmd, args[0])
			if err != nil {
				return err
			}
			b, err := readDAG(cmd, args[1])
			if err != nil {
				return err
			}
			eq, err := hdag.Equal(a, b)
			if err != nil {
				return err
			}
			if !eq {
				return errDiffer
			}
			printSuccess(cmd.OutOrStdout(), "DAGs are equal")
			return nil
		},
	}
}

// canonCommand rewrites a DAG file in sorted canonical form.
func (c *CLI) canonCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "canon <dag.json>",
		Short: "Rewrite a DAG in canonical sorted form",
		Long: `Canon reads a DAG in exchange form, including forms not marked sorted, and
writes its canonical form. Canonical files of equal DAGs are byte-identical.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readForm(cmd, args[0])
			if err != nil {
				return err
			}
			if !f.Sorted {
				c.Logger.Debug("input form is unsorted", "path", args[0])
			}
			d, err := hdag.FromForm(f)
			if err != nil {
				return err
			}
			return writeDAG(cmd, d, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
