package deplist

import (
	"context"
	"fmt"
	"slices"

	"github.com/matzehuels/deplist/pkg/repository"
	"github.com/matzehuels/deplist/pkg/spec"
)

// AlreadyResolved reports whether n is satisfied by installed packages and
// the entries already in the list.
//
// Inactive conditionals and empty any-of groups are satisfied. A block is
// satisfied when its constraint is not.
func (d *DepList) AlreadyResolved(ctx context.Context, n spec.Node) (bool, error) {
	w := &spec.Walker{Sets: d.sets, TakeAll: d.opts.Use == UseTakeAll}
	return d.alreadyResolved(ctx, n, w)
}

// alreadyResolved evaluates n with w guarding named set expansion.
func (d *DepList) alreadyResolved(ctx context.Context, n spec.Node, w *spec.Walker) (bool, error) {
	switch n := n.(type) {
	case *spec.AllOf:
		return d.allResolved(ctx, n.Children, w)
	case *spec.AnyOf:
		children := viableChildren(n.Children, w)
		if len(children) == 0 {
			return true, nil
		}
		for _, c := range rewriteRanges(children) {
			ok, err := d.alreadyResolved(ctx, c, w)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case *spec.Conditional:
		if !w.Active(n) {
			return true, nil
		}
		return d.allResolved(ctx, n.Children, w)
	case *spec.NamedSet:
		return d.setResolved(ctx, n, w)
	case *spec.Block:
		ok, err := d.packageResolved(ctx, n.Blocked)
		return !ok, err
	case *spec.Label:
		return true, nil
	case *spec.PackageConstraint:
		return d.packageResolved(ctx, n)
	default:
		panic(fmt.Sprintf("deplist: unhandled node type %T", n))
	}
}

func (d *DepList) allResolved(ctx context.Context, children []spec.Node, w *spec.Walker) (bool, error) {
	for _, c := range children {
		ok, err := d.alreadyResolved(ctx, c, w)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// setResolved evaluates a named set through the walker so that recursive
// sets are reported once and count as satisfied.
func (d *DepList) setResolved(ctx context.Context, n *spec.NamedSet, w *spec.Walker) (bool, error) {
	q := &resolvedQuery{d: d, ctx: ctx, w: w, ok: true}
	if err := w.WalkIn(n, q, spec.Context{}); err != nil {
		return false, err
	}
	return q.ok, nil
}

// packageResolved reports whether c is satisfied by an installed package
// that nothing in the list replaces, or by an entry in the list.
func (d *DepList) packageResolved(ctx context.Context, c *spec.PackageConstraint) (bool, error) {
	installed, err := d.query(ctx, c, repository.ScopeInstalled)
	if err != nil {
		return false, err
	}
	for _, p := range installed {
		replaced := slices.ContainsFunc(d.state.named(c.Name), func(e *Entry) bool {
			switch e.Kind {
			case KindPackage, KindVirtual, KindSubpackage:
				return e.Slot() == p.Slot()
			}
			return false
		})
		if !replaced {
			return true, nil
		}
	}
	e := d.state.find(c, KindVirtual, KindPackage, KindProvided, KindAlreadyInstalled, KindSubpackage)
	return e != nil, nil
}

// resolvedQuery adapts alreadyResolved to the walker for named set
// expansion.
type resolvedQuery struct {
	d   *DepList
	ctx context.Context
	w   *spec.Walker
	ok  bool
}

func (q *resolvedQuery) visit(n spec.Node) error {
	if !q.ok {
		return nil
	}
	ok, err := q.d.alreadyResolved(q.ctx, n, q.w)
	q.ok = ok
	return err
}

func (q *resolvedQuery) VisitPackage(c *spec.PackageConstraint, _ spec.Context) error { return q.visit(c) }
func (q *resolvedQuery) VisitBlock(b *spec.Block, _ spec.Context) error               { return q.visit(b) }
func (q *resolvedQuery) VisitAnyOf(a *spec.AnyOf, _ spec.Context) error               { return q.visit(a) }
func (q *resolvedQuery) VisitLabel(*spec.Label, spec.Context) error                   { return nil }

// viableChildren drops conditional children the walker would not enter.
func viableChildren(children []spec.Node, w *spec.Walker) []spec.Node {
	out := make([]spec.Node, 0, len(children))
	for _, c := range children {
		if cond, ok := c.(*spec.Conditional); ok && !w.Active(cond) {
			continue
		}
		out = append(out, c)
	}
	return out
}
