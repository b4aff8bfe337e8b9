package transform

import "github.com/matzehuels/deplist/pkg/dag"

// Result reports what [Normalize] changed.
type Result struct {
	CyclesRemoved          int
	TransitiveEdgesRemoved int
	MaxRow                 int
}

// Options selects the steps [Normalize] applies. The zero value applies
// them all.
type Options struct {
	SkipTransitiveReduction bool
}

// Normalize prepares a plan graph for rendering: it breaks cycles, removes
// transitive edges unless told not to, and assigns layers.
func Normalize(g *dag.DAG, opts Options) Result {
	var res Result
	res.CyclesRemoved = BreakCycles(g)
	if !opts.SkipTransitiveReduction {
		res.TransitiveEdgesRemoved = TransitiveReduction(g)
	}
	AssignLayers(g)
	res.MaxRow = g.MaxRow()
	return res
}
