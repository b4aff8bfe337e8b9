// Package io reads and writes resolved plans and their graphs.
//
// # Plans
//
// A [deplist.Plan] is written as JSON or YAML. [WritePlan] and [ReadPlan]
// work on streams with an explicit [Format]; [ExportPlan] and [ImportPlan]
// work on files and pick the format from the extension:
//
//	err := io.ExportPlan(plan, "plan.yaml")
//	p, err := io.ImportPlan("plan.json")
//
// Both encodings carry the same fields, so a plan exported as YAML and
// re-imported compares equal to the original apart from time zone
// normalization.
//
// # Graph JSON Format
//
// The graph of a plan is written with [WriteJSON] as two arrays:
//
//	{
//	  "nodes": [
//	    {"id": "cat/app-1:0::main", "meta": {"kind": "package", "position": 1}},
//	    {"id": "cat/lib-2:0::main", "meta": {"kind": "package", "position": 0}}
//	  ],
//	  "edges": [
//	    {"from": "cat/app-1:0::main", "to": "cat/lib-2:0::main", "meta": {"reason": "dependency"}}
//	  ]
//	}
//
// Node rows are written only when set. [ReadJSON] accepts the same format
// and rejects duplicate node IDs and edges to unknown nodes. Cycles are
// accepted, since plans resolved with circular dependencies discarded
// contain them.
//
// # Concurrency
//
// All functions are safe to call concurrently with other readers of the
// same plan or graph.
package io
