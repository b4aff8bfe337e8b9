// Package transform prepares plan graphs for rendering.
//
// Plans resolved with circular dependencies discarded may contain cycles,
// and dependency tags record every dependent, so a plan graph is usually
// both cyclic and full of redundant edges. [Normalize] applies, in order:
//
//   - [BreakCycles], removing back edges found from the sources
//   - [TransitiveReduction], removing edges implied by longer paths
//   - [AssignLayers], placing every node one row below its deepest parent
//
// The steps can also be applied individually:
//
//	transform.BreakCycles(g)
//	transform.AssignLayers(g)
package transform
