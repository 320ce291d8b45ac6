// Package render draws history DAGs as node-link diagrams.
//
// [ToDOT] produces Graphviz DOT source with one box per DAG node: leaves
// show their name, internal nodes their compact genome, and the UA node is
// drawn dashed. [RenderSVG] lays the DOT out in-process with
// [github.com/goccy/go-graphviz]; [ToPDF] and [ToPNG] convert the SVG with
// the external rsvg-convert tool.
//
//	dot := render.ToDOT(d, render.Options{EdgeMutations: true})
//	svg, err := render.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(svg, 2.0)
package render
