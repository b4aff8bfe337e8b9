package repository

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/deplist/pkg/errors"
	"github.com/matzehuels/deplist/pkg/spec"
)

// File is the TOML layout read by [LoadTOML].
type File struct {
	Settings     Settings          `toml:"settings"`
	Destinations []string          `toml:"destinations"`
	Packages     []PackageDef      `toml:"package"`
	Installed    []PackageDef      `toml:"installed"`
	Sets         map[string]string `toml:"sets"`
	SetAliases   map[string]string `toml:"set_aliases"`
	Masks        []MaskDef         `toml:"mask"`
}

// Settings controls mask computation.
type Settings struct {
	AcceptKeywords []string `toml:"accept_keywords"`
	AcceptLicenses []string `toml:"accept_licenses"`
	EAPIs          []string `toml:"eapis"`
}

// MaskDef masks every package matching Atom.
type MaskDef struct {
	Kind   string `toml:"kind"`
	Atom   string `toml:"atom"`
	Reason string `toml:"reason"`
}

// PackageDef describes one package in textual form. Dependency fields are
// parsed with the package's own enabled flags.
type PackageDef struct {
	ID          string    `toml:"id"`
	Slot        string    `toml:"slot"`
	EAPI        string    `toml:"eapi"`
	License     []string  `toml:"license"`
	Keywords    []string  `toml:"keywords"`
	IUse        []string  `toml:"iuse"`
	Use         []string  `toml:"use"`
	Locked      []string  `toml:"locked"`
	Depend      string    `toml:"depend"`
	RDepend     string    `toml:"rdepend"`
	PDepend     string    `toml:"pdepend"`
	SDepend     string    `toml:"sdepend"`
	Provide     []string  `toml:"provide"`
	VirtualFor  string    `toml:"virtual_for"`
	InstalledAt time.Time `toml:"installed_at"`
}

// Build turns the definition into a package.
func (def PackageDef) Build(installed bool) (*Package, error) {
	id, err := ParseID(def.ID)
	if err != nil {
		return nil, err
	}
	slot := def.Slot
	if slot == "" {
		slot = "0"
	}
	m := &Metadata{
		Slot:        slot,
		EAPI:        def.EAPI,
		License:     def.License,
		Keywords:    def.Keywords,
		IUse:        def.IUse,
		Use:         def.Use,
		Locked:      def.Locked,
		InstalledAt: def.InstalledAt,
	}
	p := &Package{ID: id, Metadata: m, Installed: installed}

	opts := spec.ParseOptions{Enabled: p.UseEnabled, Locked: p.UseLocked}
	for _, f := range []struct {
		text string
		dst  *spec.Node
	}{
		{def.Depend, &m.BuildDepend},
		{def.RDepend, &m.RunDepend},
		{def.PDepend, &m.PostDepend},
		{def.SDepend, &m.SuggestedDepend},
	} {
		if f.text == "" {
			continue
		}
		tree, err := spec.Parse(f.text, opts)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPackage, err, "package %s", def.ID)
		}
		*f.dst = tree
	}

	for _, name := range def.Provide {
		n, err := spec.ParseQualifiedName(name)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPackage, err, "package %s: provide", def.ID)
		}
		m.Provide = append(m.Provide, n)
	}
	if def.VirtualFor != "" {
		target, err := ParseID(def.VirtualFor)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPackage, err, "package %s: virtual_for", def.ID)
		}
		m.VirtualFor = &target
	}
	return p, nil
}

// LoadTOML reads a database from a TOML file.
func LoadTOML(path string) (*Database, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "repository file %s", path)
		}
		return nil, err
	}
	return ParseTOML(data)
}

// ParseTOML builds a database from TOML text.
func ParseTOML(data []byte) (*Database, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRepository, err, "parse repository")
	}
	return f.Database()
}

// Database builds a database from the file contents.
func (f *File) Database() (*Database, error) {
	db := NewDatabase()
	db.AcceptKeywords(f.Settings.AcceptKeywords...)
	db.AcceptLicenses(f.Settings.AcceptLicenses...)
	db.SupportEAPIs(f.Settings.EAPIs...)
	for _, name := range f.Destinations {
		db.AddDestination(Root(name))
	}

	for _, group := range []struct {
		defs      []PackageDef
		installed bool
	}{
		{f.Packages, false},
		{f.Installed, true},
	} {
		for _, def := range group.defs {
			p, err := def.Build(group.installed)
			if err != nil {
				return nil, err
			}
			if err := db.Add(p); err != nil {
				return nil, err
			}
		}
	}

	for _, m := range f.Masks {
		kind, ok := ParseMaskKind(m.Kind)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidRepository, "unknown mask kind %q", m.Kind)
		}
		c, err := spec.ParseConstraint(m.Atom)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRepository, err, "mask")
		}
		db.Mask(kind, c, m.Reason)
	}

	aliases := make(map[string][]string)
	for alias, target := range f.SetAliases {
		aliases[target] = append(aliases[target], alias)
	}
	for name, text := range f.Sets {
		tree, err := spec.Parse(text, spec.ParseOptions{})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRepository, err, "set %s", name)
		}
		if err := db.AddSet(name, tree, aliases[name]...); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// MustAdd builds def and adds it, panicking on error. It is intended for
// tests and examples.
func (d *Database) MustAdd(def PackageDef, installed bool) *Package {
	p, err := def.Build(installed)
	if err != nil {
		panic(err)
	}
	if err := d.Add(p); err != nil {
		panic(err)
	}
	return p
}
