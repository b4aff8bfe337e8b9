package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/deplist/pkg/dag"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes row numbers and metadata in node labels.
	// When false, only the node ID is shown.
	Detailed bool
	// RankRows places nodes of the same row on the same rank. Rows are
	// assigned by transform.Normalize.
	RankRows bool
}

// kindStyles maps an entry kind to extra node attributes.
var kindStyles = map[string][]string{
	"already_installed": {`fillcolor="#e8e8e8"`},
	"provided":          {`style="rounded,filled,dashed"`},
	"virtual":           {`style="rounded,filled,dashed"`},
	"suggested":         {`style="rounded,filled,dotted"`, `fontcolor="#555555"`},
	"block":             {`fillcolor="#f4cccc"`, `color="#cc0000"`},
	"masked":            {`fillcolor="#fce5cd"`, `color="#e69138"`},
}

// graphHeader sets the defaults shared by every node.
const graphHeader = `digraph G {
  rankdir=TB;
  bgcolor="transparent";
  node [shape=box, style="rounded,filled", fillcolor=white, fontsize=14, margin="0.2,0.1"];
  ranksep=0.5;
  nodesep=0.3;
`

// ToDOT converts a plan graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Nodes are styled by their "kind" metadata. Edges whose reason is not a
// dependency are dashed and labelled with the reason.
func ToDOT(g *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString(graphHeader)

	buf.WriteString("\n")
	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts.Detailed), ", "))
	}

	if opts.RankRows {
		buf.WriteString("\n")
		for _, row := range g.RowIDs() {
			writeRank(&buf, dag.NodeIDs(g.NodesInRow(row)))
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		writeEdge(&buf, e)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *dag.Node, detailed bool) []string {
	label := n.ID
	if detailed {
		lines := []string{n.ID, "row: " + strconv.Itoa(n.Row)}
		for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
			lines = append(lines, fmt.Sprintf("%s: %v", k, n.Meta[k]))
		}
		label = strings.Join(lines, "\n")
	}
	attrs := []string{"label=" + strconv.Quote(label)}
	if kind, ok := n.Meta["kind"].(string); ok {
		attrs = append(attrs, kindStyles[kind]...)
	}
	return attrs
}

func writeRank(buf *bytes.Buffer, ids []string) {
	buf.WriteString("  { rank=same;")
	for _, id := range ids {
		buf.WriteString(" " + strconv.Quote(id) + ";")
	}
	buf.WriteString(" }\n")
}

func writeEdge(buf *bytes.Buffer, e dag.Edge) {
	reason, _ := e.Meta["reason"].(string)
	if reason == "" || reason == "dependency" {
		fmt.Fprintf(buf, "  %q -> %q;\n", e.From, e.To)
		return
	}
	fmt.Fprintf(buf, "  %q -> %q [style=dashed, label=%q];\n", e.From, e.To, reason)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
