package spec

import (
	"strings"
)

// Node is a node in a parsed dependency expression. The set of node types is
// closed: *AllOf, *AnyOf, *Conditional, *NamedSet, *Block, *Label and
// *PackageConstraint. Code that switches over nodes must handle each of them
// and treat anything else as a programming error.
type Node interface {
	String() string
	node()
}

// AllOf requires every child.
type AllOf struct {
	Children []Node
}

// AnyOf requires at least one child. Children keep their written order,
// which is the preference order when choosing between them.
type AnyOf struct {
	Children []Node
}

// Conditional applies its children only when a flag of the owning package
// had the required state. Met is computed when the tree is built.
type Conditional struct {
	Flag     string
	Inverse  bool
	Met      bool
	Locked   bool // flag state is forced or masked by profile
	Children []Node
}

// NamedSet refers to a set resolved through a [SetRegistry].
type NamedSet struct {
	Name string
}

// Block forbids coexistence with packages matching Blocked.
type Block struct {
	Blocked *PackageConstraint
	Strong  bool
}

// Label retags the following siblings within the enclosing all-of.
type Label struct {
	Phases []Phase
	Fetch  string
}

func (*AllOf) node()             {}
func (*AnyOf) node()             {}
func (*Conditional) node()       {}
func (*NamedSet) node()          {}
func (*Block) node()             {}
func (*Label) node()             {}
func (*PackageConstraint) node() {}

// Phase is the dependency phase a label selects.
type Phase int

const (
	PhaseBuild Phase = iota
	PhaseRun
	PhasePost
	PhaseSuggested
)

var phaseNames = []string{"build", "run", "post", "suggested"}

// String returns the phase name.
func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// ParsePhase maps a label name to a phase.
func ParsePhase(s string) (Phase, bool) {
	for i, n := range phaseNames {
		if n == s {
			return Phase(i), true
		}
	}
	return 0, false
}

var fetchLabels = map[string]bool{
	"fetch": true, "mirrors": true, "local-mirrors": true, "manual": true, "unrestricted": true,
}

// All builds an *AllOf from nodes.
func All(nodes ...Node) *AllOf { return &AllOf{Children: nodes} }

// Any builds an *AnyOf from nodes.
func Any(nodes ...Node) *AnyOf { return &AnyOf{Children: nodes} }

func (a *AllOf) String() string { return joinNodes(a.Children) }

func (a *AnyOf) String() string { return "|| ( " + withSpace(joinNodes(a.Children)) + ")" }

func (c *Conditional) String() string {
	prefix := ""
	if c.Inverse {
		prefix = "!"
	}
	return prefix + c.Flag + "? ( " + withSpace(joinNodes(c.Children)) + ")"
}

func (s *NamedSet) String() string { return "@" + s.Name }

func (b *Block) String() string {
	if b.Strong {
		return "!!" + b.Blocked.String()
	}
	return "!" + b.Blocked.String()
}

func (l *Label) String() string {
	if l.Fetch != "" {
		return l.Fetch + ":"
	}
	names := make([]string, len(l.Phases))
	for i, p := range l.Phases {
		names[i] = p.String()
	}
	return strings.Join(names, "+") + ":"
}

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, " ")
}

func withSpace(s string) string {
	if s == "" {
		return ""
	}
	return s + " "
}
