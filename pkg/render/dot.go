package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/historydag/pkg/genome"
	"github.com/matzehuels/historydag/pkg/hdag"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds node IDs and clade counts to node labels.
	Detailed bool
	// EdgeMutations labels each edge with the mutations between its
	// endpoints, e.g. "A3G,C10T".
	EdgeMutations bool
}

// ToDOT converts a history DAG to Graphviz DOT source. Nodes and edges are
// emitted in ID order, so the output is stable for a given DAG.
func ToDOT(d *hdag.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	for _, n := range d.Nodes() {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeName(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges() {
		from, _ := d.Node(e.From)
		to, _ := d.Node(e.To)
		var attrs []string
		if opts.EdgeMutations && !from.IsUA() {
			if muts := mutationLabel(from.Label.Genome, to.Label.Genome); muts != "" {
				attrs = append(attrs, fmt.Sprintf("label=%q", muts))
			}
		}
		if from.IsUA() {
			attrs = append(attrs, "style=dashed")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %s -> %s;\n", nodeName(e.From), nodeName(e.To))
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", nodeName(e.From), nodeName(e.To), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(id hdag.NodeID) string { return fmt.Sprintf("n%d", id) }

func fmtLabel(n *hdag.Node, detailed bool) string {
	label := n.Label.String()
	if n.IsLeaf() && n.Label.Genome.Len() > 0 {
		label += "\n" + n.Label.Genome.String()
	}
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\nid: %d\nclades: %d", label, n.ID, len(n.Clades()))
}

func fmtAttrs(n *hdag.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.IsUA():
		attrs = append(attrs, "style=\"rounded,dashed\"", "fontcolor=grey40")
	case n.IsLeaf():
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

func mutationLabel(parent, child genome.CompactGenome) string {
	diff := genome.Diff(parent, child)
	parts := make([]string, len(diff))
	for i, m := range diff {
		parts[i] = m.String()
	}
	return strings.Join(parts, ",")
}
