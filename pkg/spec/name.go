package spec

import (
	"strings"

	"github.com/matzehuels/deplist/pkg/errors"
)

// QualifiedName is a "category/package" name.
type QualifiedName struct {
	Category string
	Package  string
}

// ParseQualifiedName parses and validates "category/package".
func ParseQualifiedName(s string) (QualifiedName, error) {
	if err := errors.ValidatePackageName(s); err != nil {
		return QualifiedName{}, err
	}
	cat, pkg, _ := strings.Cut(s, "/")
	return QualifiedName{Category: cat, Package: pkg}, nil
}

// MustParseQualifiedName is like [ParseQualifiedName] but panics on error.
func MustParseQualifiedName(s string) QualifiedName {
	n, err := ParseQualifiedName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// String returns "category/package".
func (n QualifiedName) String() string { return n.Category + "/" + n.Package }

// IsZero reports whether n is unset.
func (n QualifiedName) IsZero() bool { return n.Category == "" && n.Package == "" }

// IsSCM reports whether the package name marks a live source checkout
// ("-cvs", "-svn", "-live" or "-darcs" suffix).
func (n QualifiedName) IsSCM() bool {
	for _, s := range []string{"-cvs", "-svn", "-live", "-darcs"} {
		if strings.HasSuffix(n.Package, s) && len(n.Package) > len(s) {
			return true
		}
	}
	return false
}
