package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/historydag/pkg/hdag"
)

// countCommand prints the number of histories in a DAG.
func (c *CLI) countCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count <dag.json>",
		Short: "Count the histories in a DAG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDAG(cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.CountHistories().String())
			return nil
		},
	}
}

// summaryJSON is the --json output of the summary command. Big counts are
// decimal strings.
type summaryJSON struct {
	Nodes     int               `json:"nodes"`
	Edges     int               `json:"edges"`
	Leaves    int               `json:"leaves"`
	Histories string            `json:"histories"`
	MinScore  int               `json:"min_score"`
	MaxScore  int               `json:"max_score"`
	Histogram map[string]string `json:"histogram"`
}

// summaryCommand prints size, history count and the parsimony distribution.
func (c *CLI) summaryCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary <dag.json>",
		Short: "Summarize a DAG and its parsimony score distribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDAG(cmd, args[0])
			if err != nil {
				return err
			}
			s := d.Summarize(hdag.AmbiguousLeafHammingScore)
			if !asJSON {
				printSummary(cmd.OutOrStdout(), s)
				return nil
			}
			out := summaryJSON{
				Nodes:     s.Nodes,
				Edges:     s.Edges,
				Leaves:    s.Leaves,
				Histories: s.Histories.String(),
				MinScore:  s.MinScore,
				MaxScore:  s.MaxScore,
				Histogram: make(map[string]string, len(s.Histogram)),
			}
			for score, n := range s.Histogram {
				out.Histogram[strconv.Itoa(score)] = n.String()
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
