package version

import (
	"strings"

	"github.com/matzehuels/deplist/pkg/errors"
)

// Operator is a version comparison operator.
type Operator int

const (
	OpEqual          Operator = iota // =
	OpLess                           // <
	OpLessEqual                      // <=
	OpGreater                        // >
	OpGreaterEqual                   // >=
	OpTilde                          // ~ (equal ignoring revision)
	OpEqualStar                      // =...* (prefix match)
	OpTildeGreater                   // ~> (at least, within the same leading components)
)

var operatorStrings = map[Operator]string{
	OpEqual:        "=",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpTilde:        "~",
	OpEqualStar:    "=",
	OpTildeGreater: "~>",
}

// String returns the operator as it appears in front of a constraint.
// OpEqualStar renders as "="; the trailing "*" belongs to the version.
func (o Operator) String() string { return operatorStrings[o] }

// ParseOperator reads a leading operator from s, returning it together with
// the remaining text. ok is false when s does not start with an operator.
func ParseOperator(s string) (op Operator, rest string, ok bool) {
	for _, p := range []struct {
		prefix string
		op     Operator
	}{
		{"~>", OpTildeGreater},
		{"<=", OpLessEqual},
		{">=", OpGreaterEqual},
		{"<", OpLess},
		{">", OpGreater},
		{"~", OpTilde},
		{"=", OpEqual},
	} {
		if strings.HasPrefix(s, p.prefix) {
			return p.op, s[len(p.prefix):], true
		}
	}
	return 0, s, false
}

// Requirement is a single operator/version pair, e.g. ">=1.2".
type Requirement struct {
	Op      Operator
	Version Version
}

// ParseRequirement parses "op version" text such as ">=1.2" or "=1.2*".
func ParseRequirement(s string) (Requirement, error) {
	op, rest, ok := ParseOperator(s)
	if !ok {
		return Requirement{}, errors.New(errors.ErrCodeInvalidVersion, "missing operator in %q", s)
	}
	if op == OpEqual && strings.HasSuffix(rest, "*") {
		op = OpEqualStar
		rest = strings.TrimSuffix(rest, "*")
	}
	v, err := Parse(rest)
	if err != nil {
		return Requirement{}, err
	}
	return Requirement{Op: op, Version: v}, nil
}

// String returns the requirement in constraint form.
func (r Requirement) String() string {
	if r.Op == OpEqualStar {
		return "=" + r.Version.String() + "*"
	}
	return r.Op.String() + r.Version.String()
}

// Matches reports whether v satisfies the requirement.
func (r Requirement) Matches(v Version) bool {
	switch r.Op {
	case OpEqual:
		return v.Compare(r.Version) == 0
	case OpLess:
		return v.Compare(r.Version) < 0
	case OpLessEqual:
		return v.Compare(r.Version) <= 0
	case OpGreater:
		return v.Compare(r.Version) > 0
	case OpGreaterEqual:
		return v.Compare(r.Version) >= 0
	case OpTilde:
		return v.WithoutRevision().Compare(r.Version.WithoutRevision()) == 0
	case OpEqualStar:
		return hasVersionPrefix(v.raw, r.Version.raw)
	case OpTildeGreater:
		return v.Compare(r.Version) >= 0 && compareNumbers(v.numbers[:min(len(v.numbers), upperLen(r.Version))], r.Version.numbers[:upperLen(r.Version)]) == 0
	}
	return false
}

// upperLen is the number of leading components that must stay fixed for ~>.
func upperLen(v Version) int {
	if len(v.numbers) <= 1 {
		return len(v.numbers)
	}
	return len(v.numbers) - 1
}

// hasVersionPrefix reports whether v starts with prefix on a component
// boundary, so "1.2*" matches "1.2", "1.2.3" and "1.2_rc1" but not "1.20".
func hasVersionPrefix(v, prefix string) bool {
	if !strings.HasPrefix(v, prefix) {
		return false
	}
	if len(v) == len(prefix) {
		return true
	}
	last := prefix[len(prefix)-1]
	next := v[len(prefix)]
	return !(isDigit(last) && isDigit(next))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
