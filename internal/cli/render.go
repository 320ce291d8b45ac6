package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/historydag/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output        string // output file; format inferred from extension
	format        string // dot, svg, pdf, png
	detailed      bool   // node IDs and clade counts in labels
	edgeMutations bool   // label edges with their mutations
}

// renderCommand draws a DAG with Graphviz.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <dag.json>",
		Short: "Draw a DAG as DOT, SVG, PDF or PNG",
		Long: `Render draws every node of a DAG as a box: leaves show their name and
genome, internal nodes their genome. Without -o the DOT source is printed.

PDF and PNG output requires rsvg-convert (librsvg).`,
		Example: `  hdag render merged.json -o merged.svg --edge-mutations
  hdag render merged.json | dot -Tpng > merged.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout, DOT)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, pdf, png (default from -o extension)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node IDs and clade counts")
	cmd.Flags().BoolVar(&opts.edgeMutations, "edge-mutations", false, "label edges with their mutations")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, path string, opts renderOpts) error {
	format := render.FormatDOT
	switch {
	case opts.format != "":
		f, err := render.ParseFormat(opts.format)
		if err != nil {
			return err
		}
		format = f
	case opts.output != "":
		f, err := render.ParseFormat(filepath.Ext(opts.output))
		if err != nil {
			return err
		}
		format = f
	}

	d, err := readDAG(cmd, path)
	if err != nil {
		return err
	}
	if d.NodeCount() > 2000 {
		c.Logger.Warn("large DAG, layout may be slow", "nodes", d.NodeCount())
	}

	dot := render.ToDOT(d, render.Options{Detailed: opts.detailed, EdgeMutations: opts.edgeMutations})
	prog := newProgress(c.Logger)
	data, err := render.Render(cmd.Context(), dot, format)
	if err != nil {
		return err
	}
	prog.done("rendered", "format", string(format), "bytes", len(data))

	if opts.output == "" || opts.output == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return err
	}
	printFile(cmd.ErrOrStderr(), opts.output)
	return nil
}
