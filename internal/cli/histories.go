package cli

import (
	"github.com/spf13/cobra"

	herrors "github.com/matzehuels/historydag/pkg/errors"
	"github.com/matzehuels/historydag/pkg/hdag"
	dagio "github.com/matzehuels/historydag/pkg/io"
	"github.com/matzehuels/historydag/pkg/tree"
)

// historiesCommand enumerates the trees a DAG represents.
func (c *CLI) historiesCommand() *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "histories <dag.json>",
		Short: "Print the histories in a DAG",
		Long: `Histories enumerates the trees represented by a DAG.

The newick format prints one topology per line with leaf names; the json
format prints one annotated tree document per history, including internal
sequences. Histories that differ only in internal sequences print the same
Newick line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "newick" && format != "json" {
				return herrors.New(herrors.ErrCodeInvalidInput, "invalid format %q (must be 'newick' or 'json')", format)
			}
			d, err := readDAG(cmd, args[0])
			if err != nil {
				return err
			}
			if total := d.CountHistories(); limit == 0 && total.BitLen() > 20 {
				c.Logger.Warn("enumerating a large DAG", "histories", total.String())
			}

			w := cmd.OutOrStdout()
			n := 0
			for t := range d.Histories() {
				if limit > 0 && n == limit {
					break
				}
				c.Logger.Debug("history", "index", n+1, "parsimony", tree.ParsimonyScore(t))
				if format == "json" {
					err = dagio.WriteTreeJSON(&dagio.TreeDocument{
						ReferenceID: d.ReferenceID(),
						Reference:   d.Reference(),
						Tree:        t,
					}, w)
				} else {
					err = dagio.WriteNewick(t, w)
				}
				if err != nil {
					return err
				}
				n++
			}
			c.Logger.Debug("wrote histories", "count", n)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "maximum histories to print (0 for all)")
	cmd.Flags().StringVarP(&format, "format", "f", "newick", "output format: newick, json")
	return cmd
}

// trimCommand keeps only the most (or least) parsimonious histories.
func (c *CLI) trimCommand() *cobra.Command {
	var (
		output   string
		maximize bool
	)

	cmd := &cobra.Command{
		Use:   "trim <dag.json>",
		Short: "Keep only maximum-parsimony histories",
		Long: `Trim removes every edge not on a history with optimal parsimony score, so
the result contains exactly the optimal histories of the input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDAG(cmd, args[0])
			if err != nil {
				return err
			}
			trimmed, err := d.TrimOptimal(hdag.AmbiguousLeafHammingScore, maximize)
			if err != nil {
				return err
			}

			score, count := trimmed.MinScore(hdag.AmbiguousLeafHammingScore)
			stderr := cmd.ErrOrStderr()
			printSuccess(stderr, "Kept %s of %s histories (parsimony %d)",
				count.String(), d.CountHistories().String(), score)
			printStats(stderr, trimmed.NodeCount(), trimmed.EdgeCount(), false)
			return writeDAG(cmd, trimmed, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&maximize, "max", false, "keep the least parsimonious histories instead")
	return cmd
}
