package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/historydag/pkg/pipeline"
)

// buildOpts holds the flags of the build command.
type buildOpts struct {
	output   string
	collapse bool
	workers  int
	noCache  bool
	refresh  bool
}

// buildCommand creates the build command: trees in, merged DAG out.
func (c *CLI) buildCommand() *cobra.Command {
	var trees treeFlags
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a history DAG from annotated trees",
		Long: `Build converts every input tree into a history DAG and merges them.

Trees come from a Newick file whose leaves are named in a FASTA file, or from
annotated tree JSON documents. Internal sequences missing from the input are
reconstructed by Fitch parsimony. Results are cached by input content.`,
		Example: `  hdag build --newick trees.nwk --fasta leaves.fasta -o dag.json
  hdag build --tree t1.json --tree t2.json --collapse`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("collapse") {
				opts.collapse = c.Config.Build.Collapse
			}
			if !cmd.Flags().Changed("workers") {
				opts.workers = c.Config.Build.Workers
			}
			return c.runBuild(cmd, &trees, opts)
		},
	}

	trees.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.collapse, "collapse", false, "remove zero-length internal edges before building")
	cmd.Flags().IntVarP(&opts.workers, "workers", "j", 0, "parallel tree conversions (default one per CPU)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "rebuild and overwrite cached results")

	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, trees *treeFlags, opts buildOpts) error {
	ctx := cmd.Context()
	inputs, err := trees.load()
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded trees", "count", len(inputs))

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	result, err := c.withSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Building %d trees...", len(inputs)), func(ctx context.Context) (*pipeline.Result, error) {
		return runner.Execute(ctx, inputs, pipeline.Options{
			ReferenceID: trees.referenceID,
			Collapse:    opts.collapse,
			Workers:     opts.workers,
			Refresh:     opts.refresh,
			TTL:         c.Config.Cache.TTL,
		})
	})
	if err != nil {
		return err
	}
	prog.done("build complete", "trees", len(inputs))

	stderr := cmd.ErrOrStderr()
	printSuccess(stderr, "Built history DAG from %d trees", len(inputs))
	printStats(stderr, result.Stats.Nodes, result.Stats.Edges, result.CacheHit)
	if err := writeDAG(cmd, result.DAG, opts.output); err != nil {
		return err
	}
	if opts.output != "" {
		printNextStep(stderr, "Summarize", appName+" summary "+opts.output)
	}
	return nil
}

// withSpinner runs fn behind a spinner unless debug logging is on, where the
// spinner would interleave with log lines.
func (c *CLI) withSpinner(ctx context.Context, w io.Writer, msg string, fn func(context.Context) (*pipeline.Result, error)) (*pipeline.Result, error) {
	if c.verbose {
		return fn(ctx)
	}
	s := newSpinner(ctx, w, msg)
	s.Start()
	result, err := fn(ctx)
	if err != nil && !s.Cancelled() {
		s.StopWithError("build failed")
		return nil, err
	}
	s.Stop()
	return result, err
}
