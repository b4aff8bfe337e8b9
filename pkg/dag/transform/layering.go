package transform

import "github.com/matzehuels/deplist/pkg/dag"

// AssignLayers places every node one row below its deepest parent, so
// sources sit at row 0 and every edge points downward.
//
// A parent still being resolved when it is reached again lies on a cycle
// and counts as row 0. Run [BreakCycles] first for a valid layering.
func AssignLayers(g *dag.DAG) {
	rows := make(map[string]int, g.NodeCount())
	pending := make(map[string]bool)

	var depth func(id string) int
	depth = func(id string) int {
		if row, ok := rows[id]; ok {
			return row
		}
		if pending[id] {
			return 0
		}
		pending[id] = true
		row := 0
		for _, p := range g.Parents(id) {
			row = max(row, depth(p)+1)
		}
		delete(pending, id)
		rows[id] = row
		return row
	}

	for _, n := range g.Nodes() {
		depth(n.ID)
	}
	g.SetRows(rows)
}
