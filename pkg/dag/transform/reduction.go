package transform

import "github.com/matzehuels/deplist/pkg/dag"

// TransitiveReduction removes every edge u→v for which another path from u
// to v exists, and returns the number of edges removed. The graph must be
// acyclic.
//
// Reachability is computed per node with a depth-first search, so the cost
// is O(V·E). Plans are small enough for this to be immaterial.
func TransitiveReduction(g *dag.DAG) int {
	reach := make(map[string]map[string]bool, g.NodeCount())
	var visit func(id string) map[string]bool
	visit = func(id string) map[string]bool {
		if r, ok := reach[id]; ok {
			return r
		}
		r := map[string]bool{}
		reach[id] = r
		for _, child := range g.Children(id) {
			r[child] = true
			for k := range visit(child) {
				r[k] = true
			}
		}
		return r
	}

	removed := 0
	for _, e := range g.Edges() {
		for _, mid := range g.Children(e.From) {
			if mid != e.To && visit(mid)[e.To] {
				g.RemoveEdge(e.From, e.To)
				removed++
				break
			}
		}
	}
	return removed
}
