package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestAddNode(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{ID: ""}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) error = %v, want %v", err, ErrInvalidNodeID)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a) error = %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(a) twice error = %v, want %v", err, ErrDuplicateNodeID)
	}
	n, _ := g.Node("a")
	if n.Meta == nil {
		t.Error("Meta = nil, want empty map")
	}
}

func TestAddEdge(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})

	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"valid", Edge{From: "a", To: "b"}, nil},
		{"unknown source", Edge{From: "x", To: "b"}, ErrUnknownSourceNode},
		{"unknown target", Edge{From: "a", To: "x"}, ErrUnknownTargetNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.edge); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge() error = %v, want %v", err, tt.want)
			}
		})
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
}

func TestRemoveEdge(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})

	g.RemoveEdge("a", "b")
	g.RemoveEdge("b", "a")

	if g.EdgeCount() != 0 || g.OutDegree("a") != 0 || g.InDegree("b") != 0 {
		t.Errorf("edge a->b still present: edges=%d out=%d in=%d", g.EdgeCount(), g.OutDegree("a"), g.InDegree("b"))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		nodes []Node
		edges []Edge
		want  error
	}{
		{
			name:  "unlayered chain",
			nodes: []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
			edges: []Edge{{From: "a", To: "b"}, {From: "b", To: "c"}},
		},
		{
			name:  "layered with long edge",
			nodes: []Node{{ID: "a"}, {ID: "b", Row: 1}, {ID: "c", Row: 2}},
			edges: []Edge{{From: "a", To: "b"}, {From: "a", To: "c"}},
		},
		{
			name:  "edge pointing up",
			nodes: []Node{{ID: "a", Row: 1}, {ID: "b"}},
			edges: []Edge{{From: "a", To: "b"}},
			want:  ErrRowOrder,
		},
		{
			name:  "cycle",
			nodes: []Node{{ID: "a"}, {ID: "b"}},
			edges: []Edge{{From: "a", To: "b"}, {From: "b", To: "a"}},
			want:  ErrGraphHasCycle,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(nil)
			for _, n := range tt.nodes {
				_ = g.AddNode(n)
			}
			for _, e := range tt.edges {
				_ = g.AddEdge(e)
			}
			if err := g.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSetRows(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddNode(Node{ID: "c"})

	g.SetRows(map[string]int{"b": 1, "c": 3})

	if got := g.RowIDs(); !slices.Equal(got, []int{0, 1, 3}) {
		t.Errorf("RowIDs() = %v, want [0 1 3]", got)
	}
	if g.MaxRow() != 3 {
		t.Errorf("MaxRow() = %d, want 3", g.MaxRow())
	}
	if got := NodeIDs(g.NodesInRow(1)); !slices.Equal(got, []string{"b"}) {
		t.Errorf("NodesInRow(1) = %v, want [b]", got)
	}
}

func TestSourcesAndSinks(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"c", "b", "a"} {
		_ = g.AddNode(Node{ID: id})
	}
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "c"})

	if got := NodeIDs(g.Sources()); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Sources() = %v, want [a]", got)
	}
	if got := NodeIDs(g.Sinks()); !slices.Equal(got, []string{"c", "b"}) {
		t.Errorf("Sinks() = %v, want [c b]", got)
	}
}
