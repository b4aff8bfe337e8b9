package transform

import "github.com/matzehuels/deplist/pkg/dag"

type visitState uint8

const (
	unvisited visitState = iota
	onPath
	finished
)

// BreakCycles removes back edges until the graph is acyclic and returns
// the number of edges removed.
//
// The depth-first search starts from sources in insertion order, so for a
// plan graph the edges kept are those reached first from the targets.
// Nodes reachable only through a cycle are visited afterwards.
func BreakCycles(g *dag.DAG) int {
	state := make(map[string]visitState, g.NodeCount())
	var back []dag.Edge

	var visit func(id string)
	visit = func(id string) {
		state[id] = onPath
		for _, child := range g.Children(id) {
			switch state[child] {
			case unvisited:
				visit(child)
			case onPath:
				back = append(back, dag.Edge{From: id, To: child})
			}
		}
		state[id] = finished
	}

	for _, n := range append(g.Sources(), g.Nodes()...) {
		if state[n.ID] == unvisited {
			visit(n.ID)
		}
	}

	for _, e := range back {
		g.RemoveEdge(e.From, e.To)
	}
	return len(back)
}
