// Package render provides visualization rendering for plan graphs.
//
// # Overview
//
// Plans are lists, but the reasons behind their order form a graph (see
// [dag]). The [nodelink] subpackage draws that graph as a traditional
// node-link diagram using Graphviz:
//
//	g, _ := plan.Graph()
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [dag]: github.com/matzehuels/deplist/pkg/dag
// [nodelink]: github.com/matzehuels/deplist/pkg/render/nodelink
package render
