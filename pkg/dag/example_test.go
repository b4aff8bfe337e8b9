package dag_test

import (
	"fmt"

	"github.com/matzehuels/deplist/pkg/dag"
)

func ExampleDAG_basic() {
	// A plan graph: app depends on lib, which depends on core.
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "core"})
	_ = g.AddNode(dag.Node{ID: "lib"})
	_ = g.AddNode(dag.Node{ID: "app"})
	_ = g.AddEdge(dag.Edge{From: "app", To: "lib"})
	_ = g.AddEdge(dag.Edge{From: "lib", To: "core"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Order:", dag.NodeIDs(g.Nodes()))
	// Output:
	// Nodes: 3
	// Edges: 2
	// Order: [core lib app]
}

func ExampleDAG_TopologicalOrder() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "core"})
	_ = g.AddNode(dag.Node{ID: "lib"})
	_ = g.AddNode(dag.Node{ID: "app"})
	_ = g.AddEdge(dag.Edge{From: "app", To: "lib"})
	_ = g.AddEdge(dag.Edge{From: "lib", To: "core"})

	order, err := g.TopologicalOrder()
	fmt.Println(order, err)

	_ = g.AddEdge(dag.Edge{From: "core", To: "app"})
	_, err = g.TopologicalOrder()
	fmt.Println(err)
	// Output:
	// [app lib core] <nil>
	// graph contains a cycle
}

func ExampleDAG_traversal() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "app"})
	_ = g.AddNode(dag.Node{ID: "auth"})
	_ = g.AddNode(dag.Node{ID: "cache"})
	_ = g.AddNode(dag.Node{ID: "db"})
	_ = g.AddEdge(dag.Edge{From: "app", To: "auth"})
	_ = g.AddEdge(dag.Edge{From: "app", To: "cache"})
	_ = g.AddEdge(dag.Edge{From: "cache", To: "db"})

	fmt.Println("Children of app:", g.Children("app"))
	fmt.Println("Parents of auth:", g.Parents("auth"))
	fmt.Println("Reachable from app:", g.Reachable("app"))
	// Output:
	// Children of app: [auth cache]
	// Parents of auth: [app]
	// Reachable from app: [auth cache db]
}

func ExampleDAG_metadata() {
	g := dag.New(dag.Metadata{"plan": "example"})
	_ = g.AddNode(dag.Node{
		ID:   "cat/one-1:0::repo",
		Meta: dag.Metadata{"kind": "package", "destination": "installed"},
	})

	node, _ := g.Node("cat/one-1:0::repo")
	fmt.Println("Entry:", node.ID)
	fmt.Println("Kind:", node.Meta["kind"])
	// Output:
	// Entry: cat/one-1:0::repo
	// Kind: package
}
