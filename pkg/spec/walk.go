package spec

import (
	"fmt"
	"slices"

	"github.com/matzehuels/deplist/pkg/errors"
)

// SetDefinition is a named set as returned by a [SetRegistry].
type SetDefinition struct {
	// ID is the canonical identity of the set. Aliases resolving to the same
	// set share an ID.
	ID   string
	Tree Node
}

// SetRegistry resolves named sets.
type SetRegistry interface {
	ResolveSet(name string) (*SetDefinition, bool)
}

// Context describes where in the tree a visited node was found.
type Context struct {
	// Phases are the phases selected by the innermost label in scope, or nil
	// when no label applies.
	Phases []Phase
	// Fetch is the innermost fetch label in scope.
	Fetch string
	// Set is the ID of the innermost named set being expanded.
	Set string
}

// Visitor receives the nodes a [Walker] surfaces. Structural nodes (all-of,
// conditionals, named sets) are expanded by the walker itself.
type Visitor interface {
	VisitPackage(c *PackageConstraint, ctx Context) error
	VisitBlock(b *Block, ctx Context) error
	VisitAnyOf(a *AnyOf, ctx Context) error
	VisitLabel(l *Label, ctx Context) error
}

// Walker traverses dependency trees depth first.
//
// The zero value walks trees without named sets. A Walker keeps track of the
// sets it is currently expanding; nested walks through the same Walker share
// that guard, so a set reached again while it is still being expanded is
// reported instead of recursed into. Walkers returned by [Walker.Nested]
// share it too.
type Walker struct {
	// Sets resolves named set references. Nil reports every set as unknown.
	Sets SetRegistry
	// Warn receives recoverable conditions (unknown and recursive sets).
	// Nil drops them.
	Warn func(err error)
	// TakeAll visits conditional children whose flag is not locked, even
	// when the condition is not met.
	TakeAll bool

	recursing *setStack
}

// setStack holds the IDs of the sets being expanded, outermost first.
type setStack struct{ ids []string }

func (w *Walker) guard() *setStack {
	if w.recursing == nil {
		w.recursing = &setStack{}
	}
	return w.recursing
}

// Nested returns a walker with the same settings as w that shares its set
// guard. Walks of another package's dependencies started while w is
// expanding a set use it, so that set is not expanded again.
func (w *Walker) Nested() *Walker {
	stack := w.guard()
	nw := *w
	nw.recursing = stack
	return &nw
}

// Walk visits n and its descendants.
func (w *Walker) Walk(n Node, v Visitor) error {
	return w.WalkIn(n, v, Context{})
}

// WalkIn visits n with an existing context, for visitors that descend into
// the children of an any-of themselves.
func (w *Walker) WalkIn(n Node, v Visitor, ctx Context) error {
	switch n := n.(type) {
	case *AllOf:
		return w.walkSeq(n.Children, v, ctx)
	case *AnyOf:
		return v.VisitAnyOf(n, ctx)
	case *Conditional:
		if !w.Active(n) {
			return nil
		}
		return w.walkSeq(n.Children, v, ctx)
	case *NamedSet:
		return w.walkSet(n, v, ctx)
	case *Block:
		return v.VisitBlock(n, ctx)
	case *Label:
		return v.VisitLabel(n, ctx)
	case *PackageConstraint:
		return v.VisitPackage(n, ctx)
	default:
		panic(fmt.Sprintf("spec: unhandled node type %T", n))
	}
}

// Active reports whether the walker descends into c.
func (w *Walker) Active(c *Conditional) bool {
	return c.Met || (w.TakeAll && !c.Locked)
}

// walkSeq visits siblings in order. Labels update the context for the
// siblings that follow them, and stop applying at the end of the sequence.
func (w *Walker) walkSeq(children []Node, v Visitor, ctx Context) error {
	for _, c := range children {
		if l, ok := c.(*Label); ok {
			if l.Fetch != "" {
				ctx.Fetch = l.Fetch
			} else {
				ctx.Phases = l.Phases
			}
		}
		if err := w.WalkIn(c, v, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkSet(n *NamedSet, v Visitor, ctx Context) error {
	var def *SetDefinition
	ok := false
	if w.Sets != nil {
		def, ok = w.Sets.ResolveSet(n.Name)
	}
	if !ok {
		w.warn(errors.New(errors.ErrCodeUnknownSet, "unknown set '%s'", n.Name))
		return nil
	}
	stack := w.guard()
	if slices.Contains(stack.ids, def.ID) {
		w.warn(errors.New(errors.ErrCodeRecursiveSet, "recursively defined set '%s'", n.Name))
		return nil
	}

	stack.ids = append(stack.ids, def.ID)
	defer func() { stack.ids = stack.ids[:len(stack.ids)-1] }()

	ctx.Set = def.ID
	return w.WalkIn(def.Tree, v, ctx)
}

func (w *Walker) warn(err error) {
	if w.Warn != nil {
		w.Warn(err)
	}
}
