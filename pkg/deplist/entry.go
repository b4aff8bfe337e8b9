package deplist

import (
	"strings"

	"github.com/matzehuels/deplist/pkg/repository"
)

// Kind is the disposition of an entry in the list.
type Kind int

const (
	// KindPackage is a package to install.
	KindPackage Kind = iota
	// KindAlreadyInstalled is an installed package kept as it is.
	KindAlreadyInstalled
	// KindVirtual is a virtual package to install.
	KindVirtual
	// KindProvided is a virtual name provided by another entry.
	KindProvided
	// KindSuggested is a package suggested by another entry.
	KindSuggested
	// KindBlock is an installed package blocked by another entry.
	KindBlock
	// KindMasked is a masked package selected by overriding its masks.
	KindMasked
	// KindSubpackage is a package installed as part of another one.
	KindSubpackage
)

var kindNames = []string{
	"package", "already_installed", "virtual", "provided",
	"suggested", "block", "masked", "subpackage",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind maps a kind name to its value.
func ParseKind(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// IsError reports whether entries of this kind make the list unusable as
// a plan.
func (k Kind) IsError() bool { return k == KindBlock || k == KindMasked }

// installs reports whether entries of this kind occupy a slot.
func (k Kind) installs() bool {
	switch k {
	case KindPackage, KindVirtual, KindAlreadyInstalled, KindSubpackage:
		return true
	}
	return false
}

// State is how far an entry's dependencies have been processed.
type State int

const (
	// StateNoDeps means the entry is being built. Reaching it again is a
	// circular dependency.
	StateNoDeps State = iota
	// StateHasPreDeps means pre-dependencies are in the list.
	StateHasPreDeps
	// StateHasAllDeps means all dependencies are in the list.
	StateHasAllDeps
)

func (s State) String() string {
	switch s {
	case StateNoDeps:
		return "no_deps"
	case StateHasPreDeps:
		return "has_pre_deps"
	case StateHasAllDeps:
		return "has_all_deps"
	}
	return "unknown"
}

// TagKind says why an entry is in the list.
type TagKind int

const (
	// TagTarget marks an entry requested directly.
	TagTarget TagKind = iota
	// TagDependency marks an entry required by the named entry.
	TagDependency
	// TagSet marks an entry reached through the named set.
	TagSet
	// TagAdvisory marks an entry added on behalf of the named advisory.
	TagAdvisory
)

var tagKindNames = []string{"target", "dependency", "set", "advisory"}

func (k TagKind) String() string {
	if int(k) < len(tagKindNames) {
		return tagKindNames[k]
	}
	return "unknown"
}

// ParseTagKind maps a tag kind name to its value.
func ParseTagKind(s string) (TagKind, bool) {
	for i, n := range tagKindNames {
		if n == s {
			return TagKind(i), true
		}
	}
	return 0, false
}

// Tag records the provenance of an entry.
type Tag struct {
	Kind TagKind
	// Name is the target constraint, the depending entry, the set or the
	// advisory.
	Name string

	generation int
}

func (t Tag) String() string {
	if t.Name == "" {
		return t.Kind.String()
	}
	return t.Kind.String() + ":" + t.Name
}

// Entry is one element of the resolved list.
type Entry struct {
	Package *repository.Package
	Kind    Kind
	State   State
	Tags    []Tag
	// Destination names the root the package is installed to. It is empty
	// for entries that are not installed.
	Destination string
	// Associated is the entry that caused this one, for provided, suggested,
	// block and masked entries.
	Associated *Entry

	generation int
}

// ID returns the entry's package identity.
func (e *Entry) ID() repository.ID { return e.Package.ID }

// Slot returns the entry's slot.
func (e *Entry) Slot() string { return e.Package.Slot() }

// String returns "cat/pkg-1.0:slot::repo".
func (e *Entry) String() string { return e.Package.String() }

// HasTag reports whether the entry carries a tag of kind with name.
func (e *Entry) HasTag(kind TagKind, name string) bool {
	for _, t := range e.Tags {
		if t.Kind == kind && t.Name == name {
			return true
		}
	}
	return false
}

// addTag adds a tag unless an equal one is present.
func (e *Entry) addTag(t Tag) {
	if !e.HasTag(t.Kind, t.Name) {
		e.Tags = append(e.Tags, t)
	}
}

// Describe renders the entry with its kind and tags, as used in logs.
func (e *Entry) Describe() string {
	var b strings.Builder
	b.WriteString(e.String())
	b.WriteString(" (")
	b.WriteString(e.Kind.String())
	if e.Destination != "" {
		b.WriteString(" -> ")
		b.WriteString(e.Destination)
	}
	b.WriteString(")")
	if len(e.Tags) > 0 {
		tags := make([]string, len(e.Tags))
		for i, t := range e.Tags {
			tags[i] = t.String()
		}
		b.WriteString(" [")
		b.WriteString(strings.Join(tags, ", "))
		b.WriteString("]")
	}
	return b.String()
}
