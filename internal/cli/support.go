package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/historydag/pkg/hdag"
)

// nodeSupport is one row of the support table.
type nodeSupport struct {
	node *hdag.Node
	p    float64
}

// supportCommand prints the fraction of histories containing each ancestral node.
func (c *CLI) supportCommand() *cobra.Command {
	var (
		adjusted bool
		minP     float64
	)

	cmd := &cobra.Command{
		Use:   "support <dag.json>",
		Short: "Print the support of each ancestral node",
		Long: `Support prints, for every internal node, the probability that a history
drawn from the DAG contains it. By default histories are equally likely;
--adjusted weighs them by the frequency of the mutations on their edges.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDAG(cmd, args[0])
			if err != nil {
				return err
			}

			probs := make(map[hdag.NodeID]float64, d.NodeCount())
			if adjusted {
				probs = d.AdjustedNodeProbabilities()
			} else {
				for id, r := range d.NodeProbabilities() {
					probs[id], _ = r.Float64()
				}
			}

			var rows []nodeSupport
			for _, n := range d.Nodes() {
				if n.IsLeaf() || n.IsUA() || probs[n.ID] < minP {
					continue
				}
				rows = append(rows, nodeSupport{node: n, p: probs[n.ID]})
			}
			slices.SortFunc(rows, func(a, b nodeSupport) int {
				if o := cmp.Compare(b.p, a.p); o != 0 {
					return o
				}
				return cmp.Compare(a.node.ID, b.node.ID)
			})
			c.Logger.Debug("computed node support", "nodes", len(rows), "adjusted", adjusted)
			fmt.Fprintln(cmd.OutOrStdout(), supportTable(rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&adjusted, "adjusted", false, "weigh histories by mutation frequency")
	cmd.Flags().Float64Var(&minP, "min", 0, "hide nodes with lower support")
	return cmd
}

func supportTable(rows []nodeSupport) string {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{
			strconv.Itoa(int(r.node.ID)),
			r.node.Label.String(),
			strconv.Itoa(r.node.CladeUnion().Len()),
			strconv.FormatFloat(r.p, 'f', 4, 64),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Node", "Mutations", "Leaves", "Support").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			if col == 3 {
				return styleCell.Foreground(colorCyan).Align(lipgloss.Right)
			}
			return styleCell
		}).
		Render()
}
