package deplist

import (
	"context"
	"slices"
	"time"

	"github.com/matzehuels/deplist/pkg/errors"
	"github.com/matzehuels/deplist/pkg/repository"
	"github.com/matzehuels/deplist/pkg/spec"
)

// VisitPackage resolves a package constraint to an entry.
func (v *addVisitor) VisitPackage(c *spec.PackageConstraint, wc spec.Context) error {
	d := v.d
	ctx := v.ctx

	installed, err := d.query(ctx, c, repository.ScopeInstalled)
	if err != nil {
		return err
	}

	if e := d.state.find(c, KindVirtual, KindPackage, KindProvided, KindAlreadyInstalled, KindSubpackage); e != nil {
		for _, t := range d.tagsFor(wc, c) {
			d.state.tag(e, t)
		}
		if e.State != StateNoDeps || len(installed) > 0 {
			return nil
		}
		switch d.circular {
		case CircularDiscard:
			d.warn(ctx, errors.ErrCodeCircularDependency, "Dropping circular dependency on '%s'", e)
			return nil
		case CircularDiscardSilently:
			return nil
		}
		return &CircularDependencyError{Constraint: c.String(), Entry: e.String(), Path: d.buildingPath()}
	}

	installable, err := d.query(ctx, c, repository.ScopeInstallable)
	if err != nil {
		return err
	}
	best, masked, err := d.bestVisible(ctx, installable, d.overrideMasks)
	if err != nil {
		return err
	}
	if best != nil && masked {
		d.addErrorPackage(best, KindMasked)
	}

	if best == nil {
		if len(installed) == 0 || !d.mayFallBack(ctx, installed) {
			return d.noCandidate(ctx, c)
		}
		last := installed[len(installed)-1]
		d.warn(ctx, errors.ErrCodeAllMasked,
			"No visible packages matching '%s', falling back to installed package '%s'", c, last)
		d.hooks.OnCandidate(ctx, c.String(), last.String(), true)
		return v.addAlreadyInstalled(last, wc, c)
	}

	sameSlot := slices.DeleteFunc(slices.Clone(installed), func(p *repository.Package) bool {
		return p.Slot() != best.Slot()
	})
	switch {
	case len(sameSlot) > 0:
		if last := sameSlot[len(sameSlot)-1]; d.preferInstalled(ctx, last, best) {
			d.logger.Debug("keeping installed package", "constraint", c, "installed", last, "candidate", best)
			d.hooks.OnCandidate(ctx, c.String(), last.String(), true)
			return v.addAlreadyInstalled(last, wc, c)
		}
	case len(installed) > 0 && d.opts.NewSlots == NewSlotsAsNeeded:
		if last := installed[len(installed)-1]; d.preferInstalled(ctx, last, best) {
			d.logger.Debug("keeping installed package in other slot", "constraint", c, "installed", last, "candidate", best)
			d.hooks.OnCandidate(ctx, c.String(), last.String(), true)
			return v.addAlreadyInstalled(last, wc, c)
		}
	}

	if err := d.checkDowngrade(ctx, best); err != nil {
		return err
	}

	d.logger.Debug("selected candidate", "constraint", c, "candidate", best)
	d.hooks.OnCandidate(ctx, c.String(), best.String(), false)
	return v.addPackage(best, wc, c)
}

// query returns the packages in scope fully matching c, by ascending
// version.
func (d *DepList) query(ctx context.Context, c *spec.PackageConstraint, scope repository.Scope) ([]*repository.Package, error) {
	return d.queryMatching(ctx, c, scope, repository.Match)
}

func (d *DepList) queryMatching(ctx context.Context, c *spec.PackageConstraint, scope repository.Scope,
	match func(*spec.PackageConstraint, *repository.Package) bool) ([]*repository.Package, error) {
	found, err := d.universe.Find(ctx, repository.Query{
		Name:       c.Name,
		Slot:       c.Slot,
		Repository: c.Repository,
		Scope:      scope,
	})
	if err != nil {
		return nil, err
	}
	var out []*repository.Package
	for _, p := range found {
		if match(c, p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// bestVisible returns the highest candidate without masks. When there is
// none and overrides are allowed, the override set is widened one kind at a
// time and the highest candidate whose masks are all overridden is returned
// with masked set.
func (d *DepList) bestVisible(ctx context.Context, candidates []*repository.Package,
	overrides OverrideMasks) (best *repository.Package, masked bool, err error) {
	masks := make([][]repository.Mask, len(candidates))
	for i := len(candidates) - 1; i >= 0; i-- {
		m, err := d.universe.Masks(ctx, candidates[i])
		if err != nil {
			return nil, false, err
		}
		if len(m) == 0 {
			return candidates[i], false, nil
		}
		masks[i] = m
	}
	if overrides.Empty() {
		return nil, false, nil
	}

	allowed := map[repository.MaskKind]bool{repository.MaskAssociation: true}
	for _, o := range overrides.List() {
		allowed[o.MaskKind()] = true
		for i := len(candidates) - 1; i >= 0; i-- {
			if !slices.ContainsFunc(masks[i], func(m repository.Mask) bool { return !allowed[m.Kind] }) {
				d.logger.Debug("overriding masks", "package", candidates[i], "masks", masks[i])
				return candidates[i], true, nil
			}
		}
	}
	return nil, false, nil
}

// noCandidate builds the error for a constraint nothing can satisfy.
func (d *DepList) noCandidate(ctx context.Context, c *spec.PackageConstraint) error {
	if len(c.Use) == 0 {
		return &AllMaskedError{Query: c.String()}
	}
	ignoringUse, err := d.queryMatching(ctx, c, repository.ScopeInstallable, repository.MatchIgnoringUse)
	if err != nil {
		return err
	}
	p, _, err := d.bestVisible(ctx, ignoringUse, 0)
	if err != nil {
		return err
	}
	if p != nil {
		return &UseRequirementsNotMetError{Query: c.String()}
	}
	return &AllMaskedError{Query: c.String()}
}

// mayFallBack reports whether an installed package may be used when nothing
// installable is visible.
func (d *DepList) mayFallBack(ctx context.Context, installed []*repository.Package) bool {
	switch d.opts.FallBack {
	case FallBackNever:
		return false
	case FallBackAsNeeded:
		return true
	}
	if d.current == nil {
		return false
	}
	if len(installed) == 0 {
		return true
	}
	return !d.isTopLevelTarget(ctx, installed[len(installed)-1])
}

// preferInstalled reports whether the installed package is kept instead of
// installing the candidate.
func (d *DepList) preferInstalled(ctx context.Context, installed, candidate *repository.Package) bool {
	if d.opts.TargetType == TargetPackage {
		if d.current == nil || d.isTopLevelTarget(ctx, candidate) {
			return false
		}
	}
	if d.opts.Reinstall == ReinstallAlways {
		return false
	}
	if d.opts.Upgrade == UpgradeAsNeeded {
		return true
	}

	same := installed.ID.Version.Equal(candidate.ID.Version)
	if same && installed.IsSCM() {
		age := d.now().Sub(installed.Metadata.InstalledAt)
		switch d.opts.ReinstallSCM {
		case ReinstallSCMAlways:
			return false
		case ReinstallSCMDaily:
			if age > 24*time.Hour {
				return false
			}
		case ReinstallSCMWeekly:
			if age > 7*24*time.Hour {
				return false
			}
		}
	}
	if !same {
		return false
	}

	if d.opts.Reinstall == ReinstallIfUseChanged {
		for _, flag := range installed.Metadata.IUse {
			if !slices.Contains(candidate.Metadata.IUse, flag) {
				continue
			}
			if installed.UseEnabled(flag) != candidate.UseEnabled(flag) {
				return false
			}
		}
	}
	return true
}

// checkDowngrade applies the downgrade policy to candidate.
func (d *DepList) checkDowngrade(ctx context.Context, candidate *repository.Package) error {
	if d.opts.Downgrade == DowngradeAsNeeded {
		return nil
	}
	found, err := d.universe.Find(ctx, repository.Query{
		Name:  candidate.ID.Name,
		Slot:  candidate.Slot(),
		Scope: repository.ScopeInstalled,
	})
	if err != nil || len(found) == 0 {
		return err
	}
	last := found[len(found)-1]
	if !candidate.ID.Version.Less(last.ID.Version) {
		return nil
	}
	if d.opts.Downgrade == DowngradeError {
		return &DowngradeNotAllowedError{To: candidate.String(), From: last.String()}
	}
	d.warn(ctx, errors.ErrCodeDowngradeNotAllowed, "Downgrade to '%s' from '%s'", candidate, last)
	return nil
}

// isTopLevelTarget reports whether p matches a constraint of the target
// being added.
func (d *DepList) isTopLevelTarget(ctx context.Context, p *repository.Package) bool {
	if d.topLevel == nil {
		return false
	}
	m := &targetMatcher{pkg: p}
	w := &spec.Walker{Sets: d.sets, TakeAll: d.opts.Use == UseTakeAll}
	m.walker = w
	_ = w.Walk(d.topLevel, m)
	return m.found
}

// targetMatcher looks for any constraint matching pkg, descending into
// every any-of child.
type targetMatcher struct {
	pkg    *repository.Package
	walker *spec.Walker
	found  bool
}

func (m *targetMatcher) VisitPackage(c *spec.PackageConstraint, _ spec.Context) error {
	if repository.Match(c, m.pkg) {
		m.found = true
	}
	return nil
}

func (m *targetMatcher) VisitBlock(*spec.Block, spec.Context) error { return nil }

func (m *targetMatcher) VisitAnyOf(a *spec.AnyOf, wc spec.Context) error {
	for _, c := range a.Children {
		if err := m.walker.WalkIn(c, m, wc); err != nil {
			return err
		}
	}
	return nil
}

func (m *targetMatcher) VisitLabel(*spec.Label, spec.Context) error { return nil }
