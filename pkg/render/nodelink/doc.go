// Package nodelink renders plan graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools.
//
// # Styling
//
// Nodes are boxes styled by the kind of the plan entry they stand for:
// kept installed packages are grey, provided and virtual entries dashed,
// suggestions dotted, and the error kinds (blocks and masked packages) are
// drawn in red and orange. Edges recording why an entry was caused, rather
// than a dependency, are dashed and labelled with the reason.
//
// With [Options.RankRows], nodes that transform.Normalize placed in the
// same row share a rank, which keeps the layering of the plan visible.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
