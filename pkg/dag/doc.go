// Package dag provides the directed graph used to inspect and render
// resolved installation plans.
//
// # Overview
//
// A plan is an ordered list, but the reasons behind that order form a
// graph: each entry was pulled in by a target, by another entry's
// dependency, or by an entry it is associated with (a provided virtual, a
// suggestion, a blocker). This package holds that graph.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]. Edges run from a dependent to what it depends on:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "cat/app-1:0::repo"})
//	g.AddNode(dag.Node{ID: "cat/lib-2:0::repo"})
//	g.AddEdge(dag.Edge{From: "cat/app-1:0::repo", To: "cat/lib-2:0::repo"})
//
// Nodes keep their insertion order, which for plan graphs is the install
// order reversed into the list's own order. [DAG.TopologicalOrder] and
// [DAG.Validate] report cycles, which a plan resolved with circular
// dependencies discarded may contain.
//
// # Rows
//
// Rows are layers for rendering. The transform package assigns them from
// graph depth; [DAG.Validate] checks that every edge points downward once
// rows are assigned.
//
// # Metadata
//
// Both nodes and the graph support arbitrary [Metadata]. Plan graphs store
// the entry kind, its position in the list and its destination.
//
// # Concurrency
//
// DAG is not safe for concurrent use.
package dag
