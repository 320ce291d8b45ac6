package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/historydag/pkg/hdag"
	"github.com/matzehuels/historydag/pkg/pipeline"
)

// mergeCommand creates the merge command for combining DAG files.
func (c *CLI) mergeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "merge <dag.json>...",
		Short: "Merge history DAGs into one",
		Long: `Merge folds history DAGs into one that contains every history of every
input, plus any history formed by recombining compatible subtrees.

All inputs must share the reference sequence and leaf set.`,
		Example: `  hdag merge run1.json run2.json run3.json -o merged.json`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMerge(cmd, args, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) runMerge(cmd *cobra.Command, paths []string, output string) error {
	ctx := cmd.Context()
	prog := newProgress(c.Logger)

	dags := make([]*hdag.DAG, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := readDAG(cmd, p)
			if err != nil {
				return err
			}
			c.Logger.Debug("loaded DAG", "path", p, "nodes", d.NodeCount())
			dags[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	merged, err := runner.MergeAll(ctx, dags)
	if err != nil {
		return err
	}
	prog.done("merge complete", "inputs", len(dags))

	stderr := cmd.ErrOrStderr()
	printSuccess(stderr, "Merged %d DAGs", len(dags))
	printStats(stderr, merged.NodeCount(), merged.EdgeCount(), false)
	return writeDAG(cmd, merged, output)
}
