package repository

import (
	"context"
	"testing"

	"github.com/matzehuels/deplist/pkg/spec"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cat/pkg-1.0", "cat/pkg-1.0"},
		{"cat/pkg-1.0::gentoo", "cat/pkg-1.0::gentoo"},
		{"cat/foo-bar-2_rc1-r3", "cat/foo-bar-2_rc1-r3"},
	}
	for _, tt := range tests {
		id, err := ParseID(tt.in)
		if err != nil {
			t.Fatalf("ParseID(%q) error: %v", tt.in, err)
		}
		if got := id.String(); got != tt.want {
			t.Errorf("ParseID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "cat/pkg", "cat/pkg-1.0::", "cat/pkg-1.0::a/b"} {
		if _, err := ParseID(bad); err == nil {
			t.Errorf("ParseID(%q) expected error", bad)
		}
	}
}

func TestDatabaseFindOrdering(t *testing.T) {
	db := NewDatabase()
	db.MustAdd(PackageDef{ID: "cat/a-2"}, false)
	db.MustAdd(PackageDef{ID: "cat/a-1"}, false)
	db.MustAdd(PackageDef{ID: "cat/a-1.5", Slot: "1"}, false)
	db.MustAdd(PackageDef{ID: "cat/a-1"}, true)

	ctx := context.Background()
	name := spec.MustParseQualifiedName("cat/a")

	tests := []struct {
		q    Query
		want []string
	}{
		{Query{Name: name}, []string{"cat/a-1:0::installed", "cat/a-1:0::main", "cat/a-1.5:1::main", "cat/a-2:0::main"}},
		{Query{Name: name, Scope: ScopeInstalled}, []string{"cat/a-1:0::installed"}},
		{Query{Name: name, Scope: ScopeInstallable, Slot: "0"}, []string{"cat/a-1:0::main", "cat/a-2:0::main"}},
		{Query{Name: name, Repository: "other"}, nil},
		{Query{Name: spec.MustParseQualifiedName("cat/none")}, nil},
	}
	for _, tt := range tests {
		got, err := db.Find(ctx, tt.q)
		if err != nil {
			t.Fatalf("Find(%s) error: %v", tt.q, err)
		}
		if len(got) != len(tt.want) {
			t.Errorf("Find(%s) = %v, want %v", tt.q, got, tt.want)
			continue
		}
		for i := range got {
			if got[i].String() != tt.want[i] {
				t.Errorf("Find(%s)[%d] = %s, want %s", tt.q, i, got[i], tt.want[i])
			}
		}
	}
}

func TestDatabaseDuplicate(t *testing.T) {
	db := NewDatabase()
	db.MustAdd(PackageDef{ID: "cat/a-1"}, false)
	p, err := PackageDef{ID: "cat/a-1"}.Build(false)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Add(p); err == nil {
		t.Error("Add of an equal version expected error")
	}
}

func TestDatabaseMasks(t *testing.T) {
	db := NewDatabase()
	db.AcceptKeywords("amd64")
	db.AcceptLicenses("GPL-2", "MIT")
	db.SupportEAPIs("", "7", "8")

	stable := db.MustAdd(PackageDef{ID: "cat/stable-1", Keywords: []string{"amd64"}, License: []string{"MIT"}}, false)
	unstable := db.MustAdd(PackageDef{ID: "cat/testing-1", Keywords: []string{"~amd64"}}, false)
	none := db.MustAdd(PackageDef{ID: "cat/none-1", Keywords: []string{"~arm"}}, false)
	license := db.MustAdd(PackageDef{ID: "cat/license-1", Keywords: []string{"amd64"}, License: []string{"EULA"}}, false)
	eapi := db.MustAdd(PackageDef{ID: "cat/eapi-1", Keywords: []string{"amd64"}, EAPI: "99"}, false)
	repo := db.MustAdd(PackageDef{ID: "cat/repo-2", Keywords: []string{"amd64"}}, false)
	virtual := db.MustAdd(PackageDef{ID: "virtual/repo-2", Keywords: []string{"amd64"}, VirtualFor: "cat/repo-2::main"}, false)
	installed := db.MustAdd(PackageDef{ID: "cat/testing-0.9", Keywords: []string{"~amd64"}}, true)
	db.Mask(MaskRepository, spec.MustParseConstraint(">=cat/repo-2"), "broken")

	tests := []struct {
		pkg  *Package
		want []MaskKind
	}{
		{stable, nil},
		{unstable, []MaskKind{MaskTildeKeyword}},
		{none, []MaskKind{MaskUnkeyworded}},
		{license, []MaskKind{MaskLicense}},
		{eapi, []MaskKind{MaskUnsupportedEAPI}},
		{repo, []MaskKind{MaskRepository}},
		{virtual, []MaskKind{MaskAssociation}},
		{installed, nil},
	}
	for _, tt := range tests {
		got, err := db.Masks(context.Background(), tt.pkg)
		if err != nil {
			t.Fatalf("Masks(%s) error: %v", tt.pkg, err)
		}
		if len(got) != len(tt.want) {
			t.Errorf("Masks(%s) = %v, want %v", tt.pkg, got, tt.want)
			continue
		}
		for i := range got {
			if got[i].Kind != tt.want[i] {
				t.Errorf("Masks(%s)[%d] = %v, want %v", tt.pkg, i, got[i].Kind, tt.want[i])
			}
		}
	}
}

func TestDatabaseSets(t *testing.T) {
	db := NewDatabase()
	if err := db.AddSet("world", spec.MustParse("cat/a", spec.ParseOptions{}), "everything"); err != nil {
		t.Fatal(err)
	}
	a, ok := db.ResolveSet("world")
	if !ok {
		t.Fatal("ResolveSet(world) not found")
	}
	b, ok := db.ResolveSet("everything")
	if !ok || b.ID != a.ID {
		t.Errorf("alias resolved to %v, want ID %q", b, a.ID)
	}
	if _, ok := db.ResolveSet("system"); ok {
		t.Error("ResolveSet(system) found, want missing")
	}
	if err := db.AddSet("bad name", nil); err == nil {
		t.Error("AddSet with invalid name expected error")
	}
}

func TestMatch(t *testing.T) {
	p, err := PackageDef{ID: "cat/a-1.2::gentoo", Slot: "2", Use: []string{"ssl"}}.Build(false)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		constraint string
		want       bool
		wantNoUse  bool
	}{
		{"cat/a", true, true},
		{">=cat/a-1", true, true},
		{"<cat/a-1", false, false},
		{"cat/a:2", true, true},
		{"cat/a:3", false, false},
		{"cat/a::gentoo", true, true},
		{"cat/a::other", false, false},
		{"cat/a[ssl]", true, true},
		{"cat/a[-ssl]", false, true},
		{"cat/a[X]", false, true},
		{"cat/b", false, false},
	}
	for _, tt := range tests {
		c := spec.MustParseConstraint(tt.constraint)
		if got := Match(c, p); got != tt.want {
			t.Errorf("Match(%s) = %v, want %v", tt.constraint, got, tt.want)
		}
		if got := MatchIgnoringUse(c, p); got != tt.wantNoUse {
			t.Errorf("MatchIgnoringUse(%s) = %v, want %v", tt.constraint, got, tt.wantNoUse)
		}
	}
}

func TestDestinations(t *testing.T) {
	db := NewDatabase()
	if got := db.Destinations(); len(got) != 1 || got[0].Name() != InstalledRepository {
		t.Errorf("default Destinations() = %v, want [%s]", got, InstalledRepository)
	}
	db.AddDestination(Root("/"))
	if got := db.Destinations(); len(got) != 1 || got[0].Name() != "/" {
		t.Errorf("Destinations() = %v, want [/]", got)
	}

	v, _ := PackageDef{ID: "virtual/x-1", VirtualFor: "cat/x-1"}.Build(false)
	if Root("/").Accepts(v) {
		t.Error("Root accepted a virtual package")
	}
}
