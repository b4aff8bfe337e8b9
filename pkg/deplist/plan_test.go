package deplist

import (
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/deplist/pkg/dag"
	"github.com/matzehuels/deplist/pkg/repository"
)

func TestPlan(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	db := newTestDB(t, []repository.PackageDef{
		pkg("cat/one-1", "cat/two cat/three"),
		pkg("cat/two-1", "cat/three"),
		{ID: "cat/three-1", Provide: []string{"virtual/three"}},
	}, nil)
	d, err := New(db, db, Options{DependencyTags: true}, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	if err := addTarget(t, d, "cat/one"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	p := d.Plan("cat/one")
	if p.ID == "" {
		t.Error("ID is empty")
	}
	if !p.CreatedAt.Equal(now) || p.CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt = %v, want %v in UTC", p.CreatedAt, now)
	}
	if p.Options["dependency_tags"] != "true" {
		t.Errorf("Options[dependency_tags] = %q, want true", p.Options["dependency_tags"])
	}
	if p.HasErrors {
		t.Error("HasErrors = true, want false")
	}
	if got := p.Count(KindPackage); got != 3 {
		t.Errorf("Count(package) = %d, want 3", got)
	}
	if got := p.Count(KindProvided); got != 1 {
		t.Errorf("Count(provided) = %d, want 1", got)
	}

	provided := p.Entries[1]
	if provided.Package != "virtual/three-1:0::virtuals" || provided.Associated != "cat/three-1:0::repo" {
		t.Errorf("Entries[1] = %+v, want virtual/three provided by cat/three", provided)
	}
	if p.Entries[0].Destination != repository.InstalledRepository {
		t.Errorf("Destination = %q, want %q", p.Entries[0].Destination, repository.InstalledRepository)
	}
	if provided.Destination != "" {
		t.Errorf("provided Destination = %q, want empty", provided.Destination)
	}

	g, err := p.Graph()
	if err != nil {
		t.Fatalf("Graph() error = %v", err)
	}
	if g.NodeCount() != 4 {
		t.Errorf("NodeCount() = %d, want 4", g.NodeCount())
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder() error = %v", err)
	}
	want := []string{"cat/one-1:0::repo", "cat/two-1:0::repo", "cat/three-1:0::repo", "virtual/three-1:0::virtuals"}
	if !slices.Equal(order, want) {
		t.Errorf("TopologicalOrder() = %v, want %v", order, want)
	}
	children := g.Children("cat/one-1:0::repo")
	if !slices.Contains(children, "cat/three-1:0::repo") || !slices.Contains(children, "cat/two-1:0::repo") {
		t.Errorf("Children(one) = %v", children)
	}
}

func TestPlan_GraphMasked(t *testing.T) {
	db := newTestDB(t, []repository.PackageDef{
		pkg("cat/one-1", "cat/two"), {ID: "cat/two-1", License: []string{"EULA"}, Depend: "cat/three"},
		pkg("cat/three-1", ""),
	}, nil)
	db.AcceptLicenses("GPL-2")
	d := newTestList(t, db, Options{DependencyTags: true, OverrideMasks: Overrides(OverrideLicenses)})
	if err := addTarget(t, d, "cat/one"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	p := d.Plan()
	if !p.HasErrors {
		t.Error("HasErrors = false, want true")
	}
	g, err := p.Graph()
	if err != nil {
		t.Fatalf("Graph() error = %v", err)
	}

	tests := []struct {
		id   string
		kind string
	}{
		{"cat/two-1:0::repo (masked)", "masked"},
		{"cat/two-1:0::repo", "package"},
	}
	for _, tt := range tests {
		n, ok := g.Node(tt.id)
		if !ok {
			t.Fatalf("missing node %q, have %v", tt.id, dag.NodeIDs(g.Nodes()))
		}
		if n.Meta["kind"] != tt.kind {
			t.Errorf("%s kind = %v, want %s", tt.id, n.Meta["kind"], tt.kind)
		}
	}

	if !slices.Contains(g.Children("cat/two-1:0::repo"), "cat/three-1:0::repo") {
		t.Errorf("children of the package entry = %v, want cat/three-1:0::repo", g.Children("cat/two-1:0::repo"))
	}
	if got := g.OutDegree("cat/two-1:0::repo (masked)"); got != 0 {
		t.Errorf("OutDegree(masked) = %d, want 0", got)
	}
	if got := g.OutDegree("cat/one-1:0::repo"); got != 2 {
		t.Errorf("OutDegree(one) = %d, want 2", got)
	}
}

func TestPlan_GraphCycle(t *testing.T) {
	db := newTestDB(t, []repository.PackageDef{pkg("cat/one-1", "cat/two"), pkg("cat/two-1", "cat/one")}, nil)
	d := newTestList(t, db, Options{DependencyTags: true, Circular: CircularDiscardSilently})
	if err := addTarget(t, d, "cat/one"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	g, err := d.Plan().Graph()
	if err != nil {
		t.Fatalf("Graph() error = %v", err)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	if err := g.Validate(); err == nil {
		t.Error("Validate() error = nil, want cycle")
	}
}
