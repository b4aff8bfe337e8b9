package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/deplist/pkg/dag"
	"github.com/matzehuels/deplist/pkg/errors"
)

// graphDoc is the wire form of a plan graph. Node order and edge order
// follow the graph's insertion order.
type graphDoc struct {
	Meta  dag.Metadata `json:"meta,omitempty"`
	Nodes []graphNode  `json:"nodes"`
	Edges []graphEdge  `json:"edges"`
}

type graphNode struct {
	ID   string       `json:"id"`
	Row  int          `json:"row,omitempty"`
	Meta dag.Metadata `json:"meta,omitempty"`
}

type graphEdge struct {
	From string       `json:"from"`
	To   string       `json:"to"`
	Meta dag.Metadata `json:"meta,omitempty"`
}

// WriteJSON encodes g as indented JSON. The output can be read back with
// [ReadJSON].
func WriteJSON(g *dag.DAG, w io.Writer) error {
	doc := graphDoc{Meta: g.Meta(), Nodes: []graphNode{}, Edges: []graphEdge{}}
	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, graphNode{ID: n.ID, Row: n.Row, Meta: n.Meta})
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, graphEdge(e))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a graph written by [WriteJSON]. It does not close r.
//
// Structural errors carry INVALID_INPUT, name the offending node or edge,
// and wrap the dag package's sentinel errors.
func ReadJSON(r io.Reader) (*dag.DAG, error) {
	var doc graphDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := dag.New(doc.Meta)
	for _, n := range doc.Nodes {
		if err := g.AddNode(dag.Node{ID: n.ID, Row: n.Row, Meta: n.Meta}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q", n.ID)
		}
	}
	for _, e := range doc.Edges {
		if err := g.AddEdge(dag.Edge(e)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "edge %s -> %s", e.From, e.To)
		}
	}
	return g, nil
}
