package deplist

import (
	"context"
	"slices"

	"github.com/matzehuels/deplist/pkg/errors"
	"github.com/matzehuels/deplist/pkg/repository"
	"github.com/matzehuels/deplist/pkg/spec"
)

// virtualsRepository is the repository of provided entries.
const virtualsRepository = "virtuals"

// addVisitor adds the nodes it visits to the list.
type addVisitor struct {
	d   *DepList
	ctx context.Context
	w   *spec.Walker
}

func (d *DepList) newAddVisitor(ctx context.Context) *addVisitor {
	return &addVisitor{
		d:   d,
		ctx: ctx,
		w: &spec.Walker{
			Sets:    d.sets,
			Warn:    func(err error) { d.warnErr(ctx, err) },
			TakeAll: d.opts.Use == UseTakeAll,
		},
	}
}

// addNode adds n in its own transaction.
func (v *addVisitor) addNode(n spec.Node, wc spec.Context) error {
	if err := v.ctx.Err(); err != nil {
		return err
	}
	start := v.d.state.begin()
	if err := v.w.WalkIn(n, v, wc); err != nil {
		v.d.state.rollback(start)
		return err
	}
	return nil
}

// tryNode adds n with blockers fatal and no mask overrides.
func (v *addVisitor) tryNode(n spec.Node, wc spec.Context) error {
	d := v.d
	savedThrow, savedOverride := d.throwOnBlocker, d.overrideMasks
	defer func() { d.throwOnBlocker, d.overrideMasks = savedThrow, savedOverride }()
	d.throwOnBlocker = d.opts.Blocks != BlocksDiscardCompletely
	d.overrideMasks = 0
	return v.addNode(n, wc)
}

// VisitAnyOf adds one child of a. Children already satisfied by the list
// win, then children naming an installed package, then the first child that
// resolves. When none resolves, the first child's error is returned.
func (v *addVisitor) VisitAnyOf(a *spec.AnyOf, wc spec.Context) error {
	d := v.d
	viable := viableChildren(a.Children, v.w)
	if len(viable) == 0 {
		return nil
	}
	children := rewriteRanges(viable)

	for _, c := range children {
		ok, err := d.AlreadyResolved(v.ctx, c)
		if err != nil {
			return err
		}
		if ok {
			return v.addNode(c, wc)
		}
	}

	for _, c := range children {
		pc, ok := c.(*spec.PackageConstraint)
		if !ok {
			continue
		}
		installed, err := d.universe.Find(v.ctx, repository.Query{Name: pc.Name, Scope: repository.ScopeInstalled})
		if err != nil {
			return err
		}
		if len(installed) == 0 {
			continue
		}
		if done, err := v.attempt(c, wc); done || err != nil {
			return err
		}
	}

	for _, c := range children {
		if done, err := v.attempt(c, wc); done || err != nil {
			return err
		}
	}

	d.logger.Debug("no any-of child resolves, using first", "group", a)
	return v.addNode(children[0], wc)
}

// attempt tries one any-of child. It reports done when the child was added,
// and returns errors that are not resolution failures.
func (v *addVisitor) attempt(c spec.Node, wc spec.Context) (bool, error) {
	err := v.tryNode(c, wc)
	switch {
	case err == nil:
		return true, nil
	case isResolutionError(err):
		v.d.logger.Debug("any-of child failed", "child", c, "err", err)
		return false, nil
	}
	return false, err
}

// VisitBlock checks a blocker against installed and pending packages.
func (v *addVisitor) VisitBlock(b *spec.Block, wc spec.Context) error {
	d := v.d
	if d.opts.Blocks == BlocksDiscardCompletely {
		return nil
	}
	blocked := b.Blocked

	installed, err := d.universe.Find(v.ctx, repository.Query{Name: blocked.Name, Scope: repository.ScopeInstalled})
	if err != nil {
		return err
	}

	var pending []*Entry
	for _, e := range d.state.named(blocked.Name) {
		switch e.Kind {
		case KindPackage, KindVirtual, KindProvided, KindSubpackage:
		default:
			continue
		}
		if e == d.current || (d.current != nil && e == d.current.Associated) {
			continue
		}
		pending = append(pending, e)
	}

	for _, p := range installed {
		if !repository.Match(blocked, p) {
			continue
		}
		if replacedBy(p, pending) {
			continue
		}
		if d.selfBlock(blocked, p) {
			continue
		}
		switch {
		case d.throwOnBlocker || d.opts.Blocks == BlocksError:
			return &BlockError{Blocked: b.String(), By: p.String()}
		case d.opts.Blocks == BlocksDiscard:
			d.warn(v.ctx, errors.ErrCodeBlockConflict, "Discarding block '%s' on '%s'", b, p)
		default:
			d.addErrorPackage(p, KindBlock)
		}
	}

	for _, e := range pending {
		if !repository.Match(blocked, e.Package) || d.selfBlock(blocked, e.Package) {
			continue
		}
		return &BlockError{Blocked: b.String(), By: e.String()}
	}
	return nil
}

// replacedBy reports whether a pending entry in the same slot replaces the
// installed package. A virtual entry replaces only an installed package, or
// installed virtual, standing for the same name.
func replacedBy(installed *repository.Package, pending []*Entry) bool {
	for _, e := range pending {
		if e.Slot() != installed.Slot() {
			continue
		}
		if e.Package.IsVirtual() {
			stands := installed.ID.Name
			if installed.IsVirtual() {
				stands = installed.Metadata.VirtualFor.Name
			}
			if e.Package.Metadata.VirtualFor.Name != stands {
				continue
			}
		}
		return true
	}
	return false
}

// selfBlock reports whether a bare block on p was written by the package
// being added against itself.
func (d *DepList) selfBlock(blocked *spec.PackageConstraint, p *repository.Package) bool {
	if blocked.HasRestrictions() || d.current == nil {
		return false
	}
	cur := d.current.Package
	if p.ID.Name == cur.ID.Name {
		return true
	}
	if cur.IsVirtual() && cur.Metadata.VirtualFor.Name == p.ID.Name {
		return true
	}
	return p.IsVirtual() && p.Metadata.VirtualFor.Name == cur.ID.Name
}

// VisitLabel records labels. Phase labels are applied by the walker context.
func (v *addVisitor) VisitLabel(l *spec.Label, _ spec.Context) error {
	if l.Fetch != "" {
		v.d.logger.Debug("ignoring fetch label", "label", l)
	}
	return nil
}

// =============================================================================
// Entries
// =============================================================================

// addPackage inserts p and resolves its dependencies around it.
func (v *addVisitor) addPackage(p *repository.Package, wc spec.Context, c spec.Node) error {
	d := v.d

	var dest string
	if !p.IsVirtual() {
		found := d.findDestination(p)
		if found == nil {
			return &NoDestinationError{Package: p.String()}
		}
		dest = found.Name()
	}
	if occ := d.state.occupant(p); occ != nil {
		return &SlotConflictError{Package: p.String(), Existing: occ.String()}
	}

	kind := KindPackage
	if p.IsVirtual() {
		kind = KindVirtual
	}
	e := &Entry{
		Package:     p,
		Kind:        kind,
		State:       StateNoDeps,
		Tags:        d.tagsFor(wc, c),
		Destination: dest,
	}
	d.state.insert(e, d.insertBefore)

	savedCurrent, savedInsert, savedBuilding := d.current, d.insertBefore, d.building
	defer func() { d.current, d.insertBefore, d.building = savedCurrent, savedInsert, savedBuilding }()
	d.current = e
	d.building = append(slices.Clip(d.building), e)

	next := d.state.after(e)
	for _, name := range p.Metadata.Provide {
		if len(d.state.named(name)) > 0 {
			continue
		}
		provided := &repository.Package{
			ID: repository.ID{Name: name, Version: p.ID.Version, Repository: virtualsRepository},
			Metadata: &repository.Metadata{
				Slot:       p.Slot(),
				VirtualFor: &p.ID,
			},
		}
		d.state.insert(&Entry{
			Package:    provided,
			Kind:       KindProvided,
			State:      StateHasAllDeps,
			Associated: e,
		}, next)
	}

	if d.opts.Suggested == SuggestedShow {
		if err := v.showSuggestions(p, e); err != nil {
			return err
		}
	}

	passes := v.uninstalledPasses(p)
	d.insertBefore = e
	if err := v.addPreDeps(passes); err != nil {
		return err
	}
	e.State = StateHasPreDeps

	d.insertBefore = d.state.after(d.lastAssociated(e))
	if err := v.addPostDeps(passes); err != nil {
		return err
	}
	e.State = StateHasAllDeps
	return nil
}

// lastAssociated returns the last of the entries directly following e that
// e caused, or e itself.
func (d *DepList) lastAssociated(e *Entry) *Entry {
	last := e
	for next := d.state.after(last); next != nil && next.Associated == e; next = d.state.after(last) {
		last = next
	}
	return last
}

// addAlreadyInstalled inserts an installed package that is kept, and
// resolves its dependencies with the installed_* options.
func (v *addVisitor) addAlreadyInstalled(p *repository.Package, wc spec.Context, c spec.Node) error {
	d := v.d
	if occ := d.state.occupant(p); occ != nil {
		return &SlotConflictError{Package: p.String(), Existing: occ.String()}
	}
	e := &Entry{
		Package: p,
		Kind:    KindAlreadyInstalled,
		State:   StateHasPreDeps,
		Tags:    d.tagsFor(wc, c),
	}
	d.state.insert(e, d.insertBefore)

	savedCurrent, savedInsert := d.current, d.insertBefore
	defer func() { d.current, d.insertBefore = savedCurrent, savedInsert }()
	d.current = e

	passes := v.installedPasses(p)
	d.insertBefore = e
	if err := v.addPreDeps(passes); err != nil {
		return err
	}
	d.insertBefore = d.state.after(e)
	if err := v.addPostDeps(passes); err != nil {
		return err
	}
	e.State = StateHasAllDeps
	return nil
}

// addErrorPackage records a blocked or masked package at the start of the
// list.
func (d *DepList) addErrorPackage(p *repository.Package, kind Kind) {
	for _, e := range d.state.named(p.ID.Name) {
		if e.Kind == kind && e.Package.ID.Equal(p.ID) && e.Package.Installed == p.Installed {
			if d.current != nil {
				d.state.tag(e, Tag{Kind: TagDependency, Name: d.current.String()})
			}
			return
		}
	}
	e := &Entry{
		Package:    p,
		Kind:       kind,
		State:      StateHasAllDeps,
		Associated: d.current,
	}
	if d.current != nil {
		e.Tags = []Tag{{Kind: TagDependency, Name: d.current.String()}}
	}
	d.state.prepend(e)
}

// =============================================================================
// Suggestions
// =============================================================================

func (v *addVisitor) showSuggestions(p *repository.Package, e *Entry) error {
	tree := p.Dependencies(spec.PhaseSuggested)
	if tree == nil {
		return nil
	}
	d := v.d
	savedInsert := d.insertBefore
	defer func() { d.insertBefore = savedInsert }()
	d.insertBefore = d.state.after(e)

	s := &suggestVisitor{addVisitor: v.nested()}
	return s.w.Walk(tree, s)
}

// suggestVisitor adds the lowest visible match of every suggested constraint
// as a suggested entry.
type suggestVisitor struct {
	*addVisitor
}

func (s *suggestVisitor) VisitPackage(c *spec.PackageConstraint, _ spec.Context) error {
	d := s.d
	found, err := d.query(s.ctx, c, repository.ScopeInstallable)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		d.warn(s.ctx, errors.ErrCodeNotFound, "Nothing found for '%s'", c)
		return nil
	}
	for _, p := range found {
		masks, err := d.universe.Masks(s.ctx, p)
		if err != nil {
			return err
		}
		if len(masks) == 0 {
			d.addSuggested(p)
			return nil
		}
	}
	d.warn(s.ctx, errors.ErrCodeAllMasked, "Nothing visible found for '%s'", c)
	return nil
}

func (s *suggestVisitor) VisitBlock(*spec.Block, spec.Context) error { return nil }

func (s *suggestVisitor) VisitAnyOf(a *spec.AnyOf, wc spec.Context) error {
	for _, c := range a.Children {
		if err := s.w.WalkIn(c, s, wc); err != nil {
			return err
		}
	}
	return nil
}

func (s *suggestVisitor) VisitLabel(*spec.Label, spec.Context) error { return nil }

func (d *DepList) addSuggested(p *repository.Package) {
	for _, e := range d.state.named(p.ID.Name) {
		switch e.Kind {
		case KindSuggested, KindAlreadyInstalled, KindPackage, KindProvided, KindSubpackage:
			if e.Package.ID.Equal(p.ID) {
				return
			}
		}
	}
	var dest string
	if found := d.findDestination(p); found != nil {
		dest = found.Name()
	}
	e := &Entry{
		Package:     p,
		Kind:        KindSuggested,
		State:       StateHasAllDeps,
		Destination: dest,
		Associated:  d.current,
	}
	if d.current != nil {
		e.Tags = []Tag{{Kind: TagDependency, Name: d.current.String()}}
	}
	d.state.insert(e, d.insertBefore)
}
