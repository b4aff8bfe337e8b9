package spec

import (
	"testing"

	"github.com/matzehuels/deplist/pkg/errors"
	"github.com/matzehuels/deplist/pkg/version"
)

func TestParseConstraint(t *testing.T) {
	tests := []struct {
		in       string
		name     string
		versions int
		mode     VersionMode
		slot     string
		repo     string
		use      int
	}{
		{"cat/pkg", "cat/pkg", 0, VersionsAnd, "", "", 0},
		{">=cat/pkg-1.2", "cat/pkg", 1, VersionsAnd, "", "", 0},
		{">=cat/pkg-1.2:2::gentoo[ssl,-X]", "cat/pkg", 1, VersionsAnd, "2", "gentoo", 2},
		{"=cat/pkg-1.2*", "cat/pkg", 1, VersionsAnd, "", "", 0},
		{"cat/pkg[>=1&<2]", "cat/pkg", 2, VersionsAnd, "", "", 0},
		{"cat/pkg[=1|=3]", "cat/pkg", 2, VersionsOr, "", "", 0},
		{"cat/pkg:0", "cat/pkg", 0, VersionsAnd, "0", "", 0},
		{"~cat/foo-bar-2.0-r1", "cat/foo-bar", 1, VersionsAnd, "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseConstraint(tt.in)
			if err != nil {
				t.Fatalf("ParseConstraint(%q) error: %v", tt.in, err)
			}
			if got := c.Name.String(); got != tt.name {
				t.Errorf("Name = %q, want %q", got, tt.name)
			}
			if len(c.Versions) != tt.versions {
				t.Errorf("len(Versions) = %d, want %d", len(c.Versions), tt.versions)
			}
			if c.VersionMode != tt.mode {
				t.Errorf("VersionMode = %v, want %v", c.VersionMode, tt.mode)
			}
			if c.Slot != tt.slot {
				t.Errorf("Slot = %q, want %q", c.Slot, tt.slot)
			}
			if c.Repository != tt.repo {
				t.Errorf("Repository = %q, want %q", c.Repository, tt.repo)
			}
			if len(c.Use) != tt.use {
				t.Errorf("len(Use) = %d, want %d", len(c.Use), tt.use)
			}
		})
	}
}

func TestParseConstraintErrors(t *testing.T) {
	tests := []string{
		"",
		"pkg",
		"cat/pkg:",
		">=cat/pkg",
		"cat/pkg[",
		"cat/pkg[]",
		"cat/pkg[>=1&<2|=3]",
		"cat/pkg::bad/repo",
		"cat/pkg-1.0",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseConstraint(in); err == nil {
				t.Errorf("ParseConstraint(%q) expected error", in)
			}
		})
	}
}

func TestParseConstraintErrorCode(t *testing.T) {
	_, err := ParseConstraint(">=cat/pkg")
	if !errors.Is(err, errors.ErrCodeInvalidSpec) {
		t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidSpec)
	}
}

func TestConstraintString(t *testing.T) {
	tests := []string{
		"cat/pkg",
		">=cat/pkg-1.2",
		">=cat/pkg-1.2:2::gentoo[ssl,-X]",
		"=cat/pkg-1.2*",
		"cat/pkg[>=1&<2]",
		"cat/pkg[=1|=3]",
		"cat/pkg:slot[doc]",
	}
	for _, in := range tests {
		if got := MustParseConstraint(in).String(); got != in {
			t.Errorf("String() = %q, want %q", got, in)
		}
	}
}

func TestMatchesVersion(t *testing.T) {
	tests := []struct {
		constraint string
		version    string
		want       bool
	}{
		{"cat/pkg", "1.0", true},
		{">=cat/pkg-1.2", "1.2", true},
		{">=cat/pkg-1.2", "1.1", false},
		{"<cat/pkg-2", "1.9", true},
		{"=cat/pkg-1.2*", "1.2.5", true},
		{"=cat/pkg-1.2*", "1.20", false},
		{"~cat/pkg-1.0", "1.0-r3", true},
		{"cat/pkg[>=1&<2]", "1.5", true},
		{"cat/pkg[>=1&<2]", "2.0", false},
		{"cat/pkg[=1|=3]", "3", true},
		{"cat/pkg[=1|=3]", "2", false},
	}
	for _, tt := range tests {
		c := MustParseConstraint(tt.constraint)
		if got := c.MatchesVersion(version.MustParse(tt.version)); got != tt.want {
			t.Errorf("%s matches %s = %v, want %v", tt.constraint, tt.version, got, tt.want)
		}
	}
}

func TestConstraintCopies(t *testing.T) {
	c := MustParseConstraint(">=cat/pkg-1:2[ssl]")

	if !c.HasRestrictions() {
		t.Error("HasRestrictions() = false, want true")
	}
	if n := c.NameOnly(); n.HasRestrictions() || n.Name != c.Name {
		t.Errorf("NameOnly() = %s, want cat/pkg", n)
	}
	if w := c.WithoutUse(); len(w.Use) != 0 || len(c.Use) != 1 {
		t.Errorf("WithoutUse() changed the original or kept flags: %s / %s", c, w)
	}
	if s := c.WithSlot("3"); s.Slot != "3" || c.Slot != "2" {
		t.Errorf("WithSlot() = %s, original %s", s, c)
	}
}

func TestQualifiedNameIsSCM(t *testing.T) {
	tests := map[string]bool{
		"dev-vcs/git":       false,
		"app-misc/foo-svn":  true,
		"app-misc/bar-live": true,
		"app-misc/live":     false,
	}
	for name, want := range tests {
		n := MustParseQualifiedName(name)
		if got := n.IsSCM(); got != want {
			t.Errorf("%s IsSCM() = %v, want %v", name, got, want)
		}
	}
}
