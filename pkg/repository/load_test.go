package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/deplist/pkg/errors"
	"github.com/matzehuels/deplist/pkg/spec"
)

const sampleRepo = `
destinations = ["/"]

[settings]
accept_keywords = ["amd64"]

[[package]]
id = "dev-libs/glib-2.40.0::gentoo"
slot = "2"
keywords = ["amd64"]
use = ["ssl"]
iuse = ["ssl", "doc"]
depend = ">=dev-libs/libffi-3 ssl? ( dev-libs/openssl ) doc? ( app-doc/gtk-doc )"
rdepend = "dev-libs/libffi"

[[package]]
id = "dev-libs/libffi-3.0.13"
keywords = ["~amd64"]

[[installed]]
id = "dev-libs/libffi-3.0.11"
installed_at = 2024-01-02T03:04:05Z

[[mask]]
kind = "user"
atom = "dev-libs/openssl"
reason = "testing"

[sets]
world = "dev-libs/glib @system"
system = "dev-libs/libffi"

[set_aliases]
everything = "world"
`

func TestParseTOML(t *testing.T) {
	db, err := ParseTOML([]byte(sampleRepo))
	if err != nil {
		t.Fatalf("ParseTOML error: %v", err)
	}
	ctx := context.Background()

	glib, err := db.Find(ctx, Query{Name: spec.MustParseQualifiedName("dev-libs/glib")})
	if err != nil || len(glib) != 1 {
		t.Fatalf("Find(glib) = %v, %v", glib, err)
	}
	g := glib[0]
	if g.Slot() != "2" || g.ID.Repository != "gentoo" {
		t.Errorf("glib = %s, want slot 2 in gentoo", g)
	}
	build, ok := g.Dependencies(spec.PhaseBuild).(*spec.AllOf)
	if !ok || len(build.Children) != 3 {
		t.Fatalf("build deps = %v", g.Dependencies(spec.PhaseBuild))
	}
	if c := build.Children[1].(*spec.Conditional); !c.Met {
		t.Errorf("ssl? not met for glib with ssl enabled")
	}
	if c := build.Children[2].(*spec.Conditional); c.Met {
		t.Errorf("doc? met for glib without doc")
	}

	libffi, _ := db.Find(ctx, Query{Name: spec.MustParseQualifiedName("dev-libs/libffi"), Scope: ScopeInstalled})
	if len(libffi) != 1 {
		t.Fatalf("installed libffi = %v", libffi)
	}
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if !libffi[0].Metadata.InstalledAt.Equal(want) {
		t.Errorf("InstalledAt = %v, want %v", libffi[0].Metadata.InstalledAt, want)
	}

	def, ok := db.ResolveSet("everything")
	if !ok || def.ID != "world" {
		t.Errorf("ResolveSet(everything) = %v, want world", def)
	}
	if got := db.Destinations(); len(got) != 1 || got[0].Name() != "/" {
		t.Errorf("Destinations() = %v", got)
	}
}

func TestParseTOMLErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[[package]\n"},
		{"bad id", "[[package]]\nid = \"nope\"\n"},
		{"bad depend", "[[package]]\nid = \"cat/a-1\"\ndepend = \"( cat/b\"\n"},
		{"bad mask kind", "[[mask]]\nkind = \"whim\"\natom = \"cat/a\"\n"},
		{"bad set", "[sets]\nworld = \"|| cat/a\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTOML([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repo.toml")
	if err := os.WriteFile(path, []byte(sampleRepo), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTOML(path); err != nil {
		t.Fatalf("LoadTOML error: %v", err)
	}

	_, err := LoadTOML(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadTOML(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}
