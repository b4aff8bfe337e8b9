package spec

import (
	"slices"
	"strings"

	"github.com/matzehuels/deplist/pkg/errors"
	"github.com/matzehuels/deplist/pkg/version"
)

// VersionMode says how multiple version requirements combine.
type VersionMode int

const (
	// VersionsAnd requires every requirement to match.
	VersionsAnd VersionMode = iota
	// VersionsOr requires at least one requirement to match.
	VersionsOr
)

// UseRequirement requires a flag to be enabled (or disabled) on the
// candidate.
type UseRequirement struct {
	Flag    string
	Enabled bool
}

func (u UseRequirement) String() string {
	if u.Enabled {
		return u.Flag
	}
	return "-" + u.Flag
}

// PackageConstraint is a predicate over package name, versions, slot,
// repository and flag state. Constraints are read-only once built.
type PackageConstraint struct {
	Name        QualifiedName
	Versions    []version.Requirement
	VersionMode VersionMode
	Slot        string
	Repository  string
	Use         []UseRequirement
}

// ParseConstraint parses constraint text such as
//
//	cat/pkg
//	>=cat/pkg-1.2:2::gentoo[ssl,-X]
//	=cat/pkg-1.2*
//	cat/pkg[>=1&<2]
//	cat/pkg[=1|=3]
func ParseConstraint(s string) (*PackageConstraint, error) {
	c := &PackageConstraint{}
	text := s

	op, rest, hasOp := version.ParseOperator(text)
	text = rest

	head, brackets, _ := strings.Cut(text, "[")
	if brackets != "" {
		brackets = "[" + brackets
	}

	if h, repo, ok := strings.Cut(head, "::"); ok {
		if err := errors.ValidateRepositoryName(repo); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "invalid constraint %q", s)
		}
		c.Repository = repo
		head = h
	}
	if h, slot, ok := strings.Cut(head, ":"); ok {
		if slot == "" {
			return nil, errors.New(errors.ErrCodeInvalidSpec, "invalid constraint %q: empty slot", s)
		}
		c.Slot = slot
		head = h
	}

	if hasOp {
		name, ver, err := splitNameVersion(head)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "invalid constraint %q", s)
		}
		req, err := version.ParseRequirement(op.String() + ver)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "invalid constraint %q", s)
		}
		c.Name = name
		c.Versions = []version.Requirement{req}
	} else {
		name, err := ParseQualifiedName(head)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "invalid constraint %q", s)
		}
		c.Name = name
	}

	for brackets != "" {
		if !strings.HasPrefix(brackets, "[") {
			return nil, errors.New(errors.ErrCodeInvalidSpec, "invalid constraint %q: trailing %q", s, brackets)
		}
		end := strings.IndexByte(brackets, ']')
		if end < 0 {
			return nil, errors.New(errors.ErrCodeInvalidSpec, "invalid constraint %q: unterminated [", s)
		}
		if err := c.parseBracket(brackets[1:end]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "invalid constraint %q", s)
		}
		brackets = brackets[end+1:]
	}

	return c, nil
}

// MustParseConstraint is like [ParseConstraint] but panics on error.
func MustParseConstraint(s string) *PackageConstraint {
	c, err := ParseConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *PackageConstraint) parseBracket(body string) error {
	if body == "" {
		return errors.New(errors.ErrCodeInvalidSpec, "empty []")
	}
	if _, _, isVersion := version.ParseOperator(body); isVersion {
		if len(c.Versions) > 0 {
			return errors.New(errors.ErrCodeInvalidSpec, "version requirements given twice")
		}
		sep := "&"
		if strings.Contains(body, "|") {
			if strings.Contains(body, "&") {
				return errors.New(errors.ErrCodeInvalidSpec, "cannot mix & and | in %q", body)
			}
			sep = "|"
			c.VersionMode = VersionsOr
		}
		for _, part := range strings.Split(body, sep) {
			req, err := version.ParseRequirement(part)
			if err != nil {
				return err
			}
			c.Versions = append(c.Versions, req)
		}
		return nil
	}
	for _, flag := range strings.Split(body, ",") {
		u := UseRequirement{Flag: flag, Enabled: true}
		if strings.HasPrefix(flag, "-") {
			u = UseRequirement{Flag: flag[1:], Enabled: false}
		}
		if u.Flag == "" {
			return errors.New(errors.ErrCodeInvalidSpec, "empty flag in [%s]", body)
		}
		c.Use = append(c.Use, u)
	}
	return nil
}

// splitNameVersion splits "cat/pkg-1.2-r1" at the first hyphen whose
// remainder parses as a version.
func splitNameVersion(s string) (QualifiedName, string, error) {
	v := strings.TrimSuffix(s, "*")
	for i := 0; i < len(v); i++ {
		if v[i] != '-' {
			continue
		}
		if _, err := version.Parse(v[i+1:]); err != nil {
			continue
		}
		name, err := ParseQualifiedName(s[:i])
		if err != nil {
			return QualifiedName{}, "", err
		}
		return name, s[i+1:], nil
	}
	return QualifiedName{}, "", errors.New(errors.ErrCodeInvalidSpec, "operator given but no version in %q", s)
}

// ParseNameVersion splits versioned package text such as "cat/pkg-1.2-r1"
// into its name and version.
func ParseNameVersion(s string) (QualifiedName, version.Version, error) {
	name, ver, err := splitNameVersion(s)
	if err != nil {
		return QualifiedName{}, version.Version{}, err
	}
	v, err := version.Parse(ver)
	if err != nil {
		return QualifiedName{}, version.Version{}, errors.Wrap(errors.ErrCodeInvalidSpec, err, "invalid package %q", s)
	}
	return name, v, nil
}

// String renders the constraint in the form accepted by [ParseConstraint].
func (c *PackageConstraint) String() string {
	var b strings.Builder
	single := len(c.Versions) == 1
	if single {
		r := c.Versions[0]
		b.WriteString(r.Op.String())
		b.WriteString(c.Name.String())
		b.WriteString("-")
		b.WriteString(r.Version.String())
		if r.Op == version.OpEqualStar {
			b.WriteString("*")
		}
	} else {
		b.WriteString(c.Name.String())
	}
	if c.Slot != "" {
		b.WriteString(":" + c.Slot)
	}
	if c.Repository != "" {
		b.WriteString("::" + c.Repository)
	}
	if len(c.Versions) > 1 {
		sep := "&"
		if c.VersionMode == VersionsOr {
			sep = "|"
		}
		parts := make([]string, len(c.Versions))
		for i, r := range c.Versions {
			parts[i] = r.String()
		}
		b.WriteString("[" + strings.Join(parts, sep) + "]")
	}
	if len(c.Use) > 0 {
		parts := make([]string, len(c.Use))
		for i, u := range c.Use {
			parts[i] = u.String()
		}
		b.WriteString("[" + strings.Join(parts, ",") + "]")
	}
	return b.String()
}

// MatchesVersion reports whether v satisfies the version requirements,
// combined according to VersionMode. No requirements match everything.
func (c *PackageConstraint) MatchesVersion(v version.Version) bool {
	if len(c.Versions) == 0 {
		return true
	}
	if c.VersionMode == VersionsOr {
		return slices.ContainsFunc(c.Versions, func(r version.Requirement) bool { return r.Matches(v) })
	}
	for _, r := range c.Versions {
		if !r.Matches(v) {
			return false
		}
	}
	return true
}

// HasRestrictions reports whether the constraint restricts more than the
// package name.
func (c *PackageConstraint) HasRestrictions() bool {
	return len(c.Versions) > 0 || c.Slot != "" || c.Repository != "" || len(c.Use) > 0
}

// NameOnly returns a constraint matching every version of the package.
func (c *PackageConstraint) NameOnly() *PackageConstraint {
	return &PackageConstraint{Name: c.Name}
}

// WithoutUse returns a copy of c without flag requirements.
func (c *PackageConstraint) WithoutUse() *PackageConstraint {
	out := *c
	out.Use = nil
	return &out
}

// WithSlot returns a copy of c restricted to slot.
func (c *PackageConstraint) WithSlot(slot string) *PackageConstraint {
	out := *c
	out.Slot = slot
	return &out
}
