package repository

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/deplist/pkg/errors"
	"github.com/matzehuels/deplist/pkg/spec"
	"github.com/matzehuels/deplist/pkg/version"
)

// ID identifies a concrete package version in a repository.
type ID struct {
	Name       spec.QualifiedName
	Version    version.Version
	Repository string
}

// ParseID parses "cat/pkg-1.0" or "cat/pkg-1.0::repo".
func ParseID(s string) (ID, error) {
	text, repo, hasRepo := strings.Cut(s, "::")
	if hasRepo {
		if err := errors.ValidateRepositoryName(repo); err != nil {
			return ID{}, err
		}
	}
	name, v, err := spec.ParseNameVersion(text)
	if err != nil {
		return ID{}, errors.Wrap(errors.ErrCodeInvalidPackage, err, "invalid package id %q", s)
	}
	return ID{Name: name, Version: v, Repository: repo}, nil
}

// Equal reports whether id and other name the same package version in the
// same repository.
func (id ID) Equal(other ID) bool {
	return id.Name == other.Name && id.Repository == other.Repository && id.Version.Equal(other.Version)
}

// String returns "cat/pkg-1.0::repo".
func (id ID) String() string {
	s := id.Name.String() + "-" + id.Version.String()
	if id.Repository != "" {
		s += "::" + id.Repository
	}
	return s
}

// Metadata is the information the resolver consults about a package. It is
// treated as immutable once the package is added to a universe.
type Metadata struct {
	Slot     string
	EAPI     string
	License  []string
	Keywords []string
	IUse     []string // flags the package understands
	Use      []string // enabled flags
	Locked   []string // flags forced or masked by profile

	BuildDepend     spec.Node
	RunDepend       spec.Node
	PostDepend      spec.Node
	SuggestedDepend spec.Node

	// Provide lists the virtual names this package satisfies.
	Provide []spec.QualifiedName
	// VirtualFor is set on virtual packages to the package they stand for.
	VirtualFor *ID

	// InstalledAt is the install time of installed packages.
	InstalledAt time.Time
}

// Package is a package version as seen by the resolver.
type Package struct {
	ID        ID
	Metadata  *Metadata
	Installed bool
}

// String returns "cat/pkg-1.0:slot::repo".
func (p *Package) String() string {
	s := p.ID.Name.String() + "-" + p.ID.Version.String()
	if slot := p.Slot(); slot != "" {
		s += ":" + slot
	}
	if p.ID.Repository != "" {
		s += "::" + p.ID.Repository
	}
	return s
}

// Slot returns the package's slot.
func (p *Package) Slot() string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata.Slot
}

// UseEnabled reports whether flag is enabled for the package.
func (p *Package) UseEnabled(flag string) bool {
	return p.Metadata != nil && slices.Contains(p.Metadata.Use, flag)
}

// UseLocked reports whether flag's state is fixed by profile.
func (p *Package) UseLocked(flag string) bool {
	return p.Metadata != nil && slices.Contains(p.Metadata.Locked, flag)
}

// IsVirtual reports whether the package stands in for another package.
func (p *Package) IsVirtual() bool {
	return p.Metadata != nil && p.Metadata.VirtualFor != nil
}

// IsSCM reports whether the package tracks a live upstream source.
func (p *Package) IsSCM() bool {
	return p.ID.Version.IsSCM() || p.ID.Name.IsSCM()
}

// Dependencies returns the dependency tree for phase, or nil.
func (p *Package) Dependencies(phase spec.Phase) spec.Node {
	if p.Metadata == nil {
		return nil
	}
	switch phase {
	case spec.PhaseBuild:
		return p.Metadata.BuildDepend
	case spec.PhaseRun:
		return p.Metadata.RunDepend
	case spec.PhasePost:
		return p.Metadata.PostDepend
	case spec.PhaseSuggested:
		return p.Metadata.SuggestedDepend
	}
	panic(fmt.Sprintf("repository: unknown phase %d", phase))
}

// Scope restricts a query to installed or installable packages.
type Scope int

const (
	ScopeAny Scope = iota
	ScopeInstalled
	ScopeInstallable
)

func (s Scope) String() string {
	switch s {
	case ScopeInstalled:
		return "installed"
	case ScopeInstallable:
		return "installable"
	}
	return "any"
}

// Query selects packages by name and optionally slot and repository.
// Version and flag filtering is left to the caller.
type Query struct {
	Name       spec.QualifiedName
	Slot       string
	Repository string
	Scope      Scope
}

func (q Query) String() string {
	s := q.Name.String()
	if q.Slot != "" {
		s += ":" + q.Slot
	}
	if q.Repository != "" {
		s += "::" + q.Repository
	}
	return s + " (" + q.Scope.String() + ")"
}

// Matches reports whether p satisfies q.
func (q Query) Matches(p *Package) bool {
	if p.ID.Name != q.Name {
		return false
	}
	if q.Slot != "" && p.Slot() != q.Slot {
		return false
	}
	if q.Repository != "" && p.ID.Repository != q.Repository {
		return false
	}
	switch q.Scope {
	case ScopeInstalled:
		return p.Installed
	case ScopeInstallable:
		return !p.Installed
	}
	return true
}
