package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/deplist/pkg/errors"
	"github.com/matzehuels/deplist/pkg/spec"
)

// DefaultRepository is the repository name given to installable packages
// added without one.
const DefaultRepository = "main"

// InstalledRepository is the repository name given to installed packages
// added without one.
const InstalledRepository = "installed"

// Database is an in-memory [Universe] and [spec.SetRegistry].
//
// A Database is safe for concurrent reads; writes are expected to happen
// while loading, before resolution starts.
type Database struct {
	mu       sync.RWMutex
	packages map[spec.QualifiedName][]*Package
	sets     map[string]*spec.SetDefinition
	masks    []constraintMask

	acceptKeywords []string
	acceptLicenses []string
	eapis          []string
	destinations   []Destination
}

type constraintMask struct {
	kind       MaskKind
	constraint *spec.PackageConstraint
	reason     string
}

// NewDatabase creates an empty database that accepts every keyword, license
// and EAPI.
func NewDatabase() *Database {
	return &Database{
		packages: make(map[spec.QualifiedName][]*Package),
		sets:     make(map[string]*spec.SetDefinition),
	}
}

// Add adds a package, keeping packages of the same name ordered by version.
// Packages without a repository get [DefaultRepository] or
// [InstalledRepository].
func (d *Database) Add(p *Package) error {
	if p == nil || p.ID.Name.IsZero() || p.ID.Version.IsZero() {
		return errors.New(errors.ErrCodeInvalidPackage, "package needs a name and version")
	}
	if p.Metadata == nil {
		p.Metadata = &Metadata{}
	}
	if p.ID.Repository == "" {
		p.ID.Repository = DefaultRepository
		if p.Installed {
			p.ID.Repository = InstalledRepository
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	list := d.packages[p.ID.Name]
	for _, q := range list {
		if q.Installed == p.Installed && q.ID.Repository == p.ID.Repository && q.ID.Version.Equal(p.ID.Version) {
			return errors.New(errors.ErrCodeInvalidPackage, "duplicate package %s", p.ID)
		}
	}
	i, _ := slices.BinarySearchFunc(list, p, func(a, b *Package) int {
		if c := a.ID.Version.Compare(b.ID.Version); c != 0 {
			return c
		}
		return strings.Compare(a.ID.Repository, b.ID.Repository)
	})
	d.packages[p.ID.Name] = slices.Insert(list, i, p)
	return nil
}

// AddSet registers a named set under name and any aliases. Aliases share the
// set's identity.
func (d *Database) AddSet(name string, tree spec.Node, aliases ...string) error {
	for _, n := range append([]string{name}, aliases...) {
		if err := errors.ValidateSetName(n); err != nil {
			return err
		}
	}
	def := &spec.SetDefinition{ID: name, Tree: tree}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.sets[name] = def
	for _, a := range aliases {
		d.sets[a] = def
	}
	return nil
}

// ResolveSet implements [spec.SetRegistry].
func (d *Database) ResolveSet(name string) (*spec.SetDefinition, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	def, ok := d.sets[name]
	return def, ok
}

// Mask masks every package matching c with the given kind.
func (d *Database) Mask(kind MaskKind, c *spec.PackageConstraint, reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.masks = append(d.masks, constraintMask{kind: kind, constraint: c, reason: reason})
}

// AcceptKeywords restricts visible packages to those carrying one of the
// keywords. "~arch" accepts testing keywords for arch, "**" accepts
// everything. With no accepted keywords every package is visible.
func (d *Database) AcceptKeywords(keywords ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acceptKeywords = keywords
}

// AcceptLicenses restricts visible packages to those whose licenses are all
// accepted. "*" accepts every license.
func (d *Database) AcceptLicenses(licenses ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acceptLicenses = licenses
}

// SupportEAPIs restricts visible packages to the given EAPIs.
func (d *Database) SupportEAPIs(eapis ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.eapis = eapis
}

// AddDestination registers a destination.
func (d *Database) AddDestination(dest Destination) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destinations = append(d.destinations, dest)
}

// Destinations returns the registered destinations, or a single
// [InstalledRepository] root when none were registered.
func (d *Database) Destinations() []Destination {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.destinations) == 0 {
		return []Destination{Root(InstalledRepository)}
	}
	return slices.Clone(d.destinations)
}

// Names returns every package name in the database, sorted.
func (d *Database) Names() []spec.QualifiedName {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]spec.QualifiedName, 0, len(d.packages))
	for n := range d.packages {
		names = append(names, n)
	}
	slices.SortFunc(names, func(a, b spec.QualifiedName) int {
		return strings.Compare(a.String(), b.String())
	})
	return names
}

// Find implements [Universe].
func (d *Database) Find(ctx context.Context, q Query) ([]*Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []*Package
	for _, p := range d.packages[q.Name] {
		if q.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Masks implements [Universe]. Installed packages are never masked.
func (d *Database) Masks(ctx context.Context, p *Package) ([]Mask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Installed {
		return nil, nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.masksLocked(p, 0), nil
}

// masksLocked computes masks for p. depth bounds association lookups through
// chains of virtuals.
func (d *Database) masksLocked(p *Package, depth int) []Mask {
	var out []Mask
	for _, m := range d.masks {
		if MatchIgnoringUse(m.constraint, p) {
			out = append(out, Mask{Kind: m.kind, Reason: m.reason})
		}
	}
	if m, ok := d.keywordMask(p); ok {
		out = append(out, m)
	}
	if m, ok := d.licenseMask(p); ok {
		out = append(out, m)
	}
	if len(d.eapis) > 0 && !slices.Contains(d.eapis, p.Metadata.EAPI) {
		out = append(out, Mask{Kind: MaskUnsupportedEAPI, Reason: "EAPI " + p.Metadata.EAPI})
	}
	if target := p.Metadata.VirtualFor; target != nil && depth < 8 {
		for _, q := range d.packages[target.Name] {
			if q.Installed || !q.ID.Version.Equal(target.Version) {
				continue
			}
			if len(d.masksLocked(q, depth+1)) > 0 {
				out = append(out, Mask{Kind: MaskAssociation, Reason: "via " + q.ID.String()})
				break
			}
		}
	}
	return out
}

func (d *Database) keywordMask(p *Package) (Mask, bool) {
	if len(d.acceptKeywords) == 0 || slices.Contains(d.acceptKeywords, "**") {
		return Mask{}, false
	}
	unstable := false
	for _, kw := range p.Metadata.Keywords {
		if slices.Contains(d.acceptKeywords, kw) {
			return Mask{}, false
		}
		if arch, ok := strings.CutPrefix(kw, "~"); ok && slices.Contains(d.acceptKeywords, arch) {
			unstable = true
		}
	}
	if unstable {
		return Mask{Kind: MaskTildeKeyword, Reason: strings.Join(p.Metadata.Keywords, " ")}, true
	}
	return Mask{Kind: MaskUnkeyworded}, true
}

func (d *Database) licenseMask(p *Package) (Mask, bool) {
	if len(d.acceptLicenses) == 0 || slices.Contains(d.acceptLicenses, "*") {
		return Mask{}, false
	}
	for _, l := range p.Metadata.License {
		if !slices.Contains(d.acceptLicenses, l) {
			return Mask{Kind: MaskLicense, Reason: l}, true
		}
	}
	return Mask{}, false
}
