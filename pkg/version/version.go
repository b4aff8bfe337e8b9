// Package version implements package version parsing, ordering and the
// comparison operators used in package constraints.
//
// The accepted grammar is the one used by source-based distributions:
//
//	1.2.3
//	1.2b            letter suffix
//	1.2_alpha3      _alpha, _beta, _pre, _rc, _p suffixes (repeatable)
//	1.2-r1          revision
//	1.2-scm, scm    tracking an upstream branch rather than a release
//
// Versions are compared component by component: the leading number as an
// integer, following numbers as integers unless either has a leading zero
// (then as strings with trailing zeros removed), then the letter, then the
// suffix list, then the revision. An scm version sorts after every release
// with the same numeric prefix.
package version

import (
	"strings"

	"github.com/matzehuels/deplist/pkg/errors"
)

// suffixKind orders the underscore suffixes. suffixNone sits between rc and p
// so that "1.0_rc1" < "1.0" < "1.0_p1".
type suffixKind int

const (
	suffixAlpha suffixKind = iota
	suffixBeta
	suffixPre
	suffixRC
	suffixNone
	suffixP
	suffixSCM
)

var suffixNames = map[string]suffixKind{
	"alpha": suffixAlpha,
	"beta":  suffixBeta,
	"pre":   suffixPre,
	"rc":    suffixRC,
	"p":     suffixP,
}

type suffix struct {
	kind suffixKind
	num  string
}

// Version is a parsed package version. The zero value is not a valid
// version; use [Parse] or [MustParse].
type Version struct {
	raw      string
	numbers  []string
	letter   byte
	suffixes []suffix
	revision string
	scm      bool
}

// Parse parses a version string.
func Parse(s string) (Version, error) {
	v := Version{raw: s}
	if s == "" {
		return Version{}, errors.New(errors.ErrCodeInvalidVersion, "empty version")
	}
	if s == "scm" {
		v.scm = true
		return v, nil
	}

	rest := s
	if i := strings.LastIndex(rest, "-r"); i >= 0 && isDigits(rest[i+2:]) {
		v.revision = trimZeros(rest[i+2:])
		rest = rest[:i]
	}
	if strings.HasSuffix(rest, "-scm") {
		v.scm = true
		rest = strings.TrimSuffix(rest, "-scm")
	}

	body, suffixPart, _ := strings.Cut(rest, "_")
	if body == "" {
		return Version{}, errors.New(errors.ErrCodeInvalidVersion, "invalid version %q: missing number", s)
	}
	if last := body[len(body)-1]; last >= 'a' && last <= 'z' {
		v.letter = last
		body = body[:len(body)-1]
	}
	for _, n := range strings.Split(body, ".") {
		if !isDigits(n) {
			return Version{}, errors.New(errors.ErrCodeInvalidVersion, "invalid version %q: bad component %q", s, n)
		}
		v.numbers = append(v.numbers, n)
	}

	if suffixPart != "" {
		for _, part := range strings.Split(suffixPart, "_") {
			name := strings.TrimRight(part, "0123456789")
			kind, ok := suffixNames[name]
			if !ok {
				return Version{}, errors.New(errors.ErrCodeInvalidVersion, "invalid version %q: unknown suffix %q", s, part)
			}
			v.suffixes = append(v.suffixes, suffix{kind: kind, num: trimZeros(part[len(name):])})
		}
	}
	return v, nil
}

// MustParse is like [Parse] but panics on error. It is intended for tests and
// package-level variables.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version as it was written.
func (v Version) String() string { return v.raw }

// IsZero reports whether v is the zero value.
func (v Version) IsZero() bool { return v.raw == "" }

// IsSCM reports whether v tracks an upstream branch ("scm" or "-scm").
func (v Version) IsSCM() bool { return v.scm }

// Revision returns the revision number as a string, "0" when absent.
func (v Version) Revision() string {
	if v.revision == "" {
		return "0"
	}
	return v.revision
}

// WithoutRevision returns v with any "-rN" part removed.
func (v Version) WithoutRevision() Version {
	if v.revision == "" {
		return v
	}
	out := v
	out.revision = ""
	out.raw = v.raw[:strings.LastIndex(v.raw, "-r")]
	return out
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to
// or after w.
func (v Version) Compare(w Version) int {
	if c := compareNumbers(v.numbers, w.numbers); c != 0 {
		if v.pureSCM() || w.pureSCM() {
			return compareBool(v.pureSCM(), w.pureSCM())
		}
		return c
	}
	if v.letter != w.letter {
		if v.letter < w.letter {
			return -1
		}
		return 1
	}
	if c := compareSuffixes(v.effectiveSuffixes(), w.effectiveSuffixes()); c != 0 {
		return c
	}
	return compareInts(v.revision, w.revision)
}

// Equal reports whether v and w compare equal.
func (v Version) Equal(w Version) bool { return v.Compare(w) == 0 }

// Less reports whether v sorts before w.
func (v Version) Less(w Version) bool { return v.Compare(w) < 0 }

func (v Version) pureSCM() bool { return v.scm && len(v.numbers) == 0 }

// effectiveSuffixes folds the scm marker into the suffix list so that
// "1.0-scm" sorts after "1.0_p5".
func (v Version) effectiveSuffixes() []suffix {
	if !v.scm || len(v.numbers) == 0 {
		return v.suffixes
	}
	return append(append([]suffix(nil), v.suffixes...), suffix{kind: suffixSCM})
}

func compareNumbers(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		var c int
		if i > 0 && (strings.HasPrefix(a[i], "0") || strings.HasPrefix(b[i], "0")) {
			c = strings.Compare(strings.TrimRight(a[i], "0"), strings.TrimRight(b[i], "0"))
		} else {
			c = compareInts(a[i], b[i])
		}
		if c != 0 {
			return c
		}
	}
	return compareLen(len(a), len(b))
}

func compareSuffixes(a, b []suffix) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].kind != b[i].kind {
			if a[i].kind < b[i].kind {
				return -1
			}
			return 1
		}
		if c := compareInts(a[i].num, b[i].num); c != 0 {
			return c
		}
	}
	switch {
	case len(a) > len(b):
		if a[len(b)].kind >= suffixP {
			return 1
		}
		return -1
	case len(b) > len(a):
		if b[len(a)].kind >= suffixP {
			return -1
		}
		return 1
	}
	return 0
}

// compareInts compares two digit strings numerically without converting, so
// arbitrarily long components do not overflow.
func compareInts(a, b string) int {
	a, b = trimZeros(a), trimZeros(b)
	if len(a) != len(b) {
		return compareLen(len(a), len(b))
	}
	return strings.Compare(a, b)
}

func compareLen(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	}
	return -1
}

func trimZeros(s string) string {
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0"
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
