package repository

import (
	"context"
)

// MaskKind classifies why a package may not be selected.
type MaskKind int

const (
	MaskUser MaskKind = iota
	MaskTildeKeyword
	MaskUnkeyworded
	MaskRepository
	MaskProfile
	MaskLicense
	MaskUnsupportedEAPI
	MaskAssociation
)

var maskKindNames = map[MaskKind]string{
	MaskUser:            "user",
	MaskTildeKeyword:    "tilde_keyword",
	MaskUnkeyworded:     "unkeyworded",
	MaskRepository:      "repository",
	MaskProfile:         "profile",
	MaskLicense:         "license",
	MaskUnsupportedEAPI: "unsupported_eapi",
	MaskAssociation:     "association",
}

func (k MaskKind) String() string {
	if s, ok := maskKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseMaskKind maps a mask kind name to its value.
func ParseMaskKind(s string) (MaskKind, bool) {
	for k, name := range maskKindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Mask is one reason a package is excluded from normal selection.
type Mask struct {
	Kind   MaskKind
	Reason string
}

func (m Mask) String() string {
	if m.Reason == "" {
		return m.Kind.String()
	}
	return m.Kind.String() + " (" + m.Reason + ")"
}

// Universe is the queryable set of installed and installable packages.
// Implementations must be safe for concurrent use.
type Universe interface {
	// Find returns the packages matching q, ordered by ascending version.
	Find(ctx context.Context, q Query) ([]*Package, error)
	// Masks returns the reasons p is masked. An empty result means p is
	// visible.
	Masks(ctx context.Context, p *Package) ([]Mask, error)
}

// Destination is a root packages can be installed to.
type Destination interface {
	Name() string
	Accepts(p *Package) bool
}

// Root is a [Destination] that accepts every package that is not virtual.
type Root string

// Name returns the root's name.
func (r Root) Name() string { return string(r) }

// Accepts reports whether p can be installed to the root.
func (r Root) Accepts(p *Package) bool { return !p.IsVirtual() }
