package deplist

import (
	"github.com/matzehuels/deplist/pkg/errors"
	"github.com/matzehuels/deplist/pkg/repository"
	"github.com/matzehuels/deplist/pkg/spec"
)

// depPasses describes how the dependencies of one package are added.
type depPasses struct {
	pkg     *repository.Package
	phases  []spec.Phase
	byPhase map[spec.Phase]Deps
}

func (v *addVisitor) uninstalledPasses(p *repository.Package) depPasses {
	o := v.d.opts
	passes := depPasses{
		pkg:    p,
		phases: []spec.Phase{spec.PhaseBuild, spec.PhaseRun, spec.PhasePost},
		byPhase: map[spec.Phase]Deps{
			spec.PhaseBuild:     o.UninstalledDepsPre,
			spec.PhaseRun:       o.UninstalledDepsRuntime,
			spec.PhasePost:      o.UninstalledDepsPost,
			spec.PhaseSuggested: DepsDiscard,
		},
	}
	if o.Suggested == SuggestedInstall {
		passes.phases = append(passes.phases, spec.PhaseSuggested)
		passes.byPhase[spec.PhaseSuggested] = o.UninstalledDepsSuggested
	}
	return passes
}

func (v *addVisitor) installedPasses(p *repository.Package) depPasses {
	o := v.d.opts
	return depPasses{
		pkg:    p,
		phases: []spec.Phase{spec.PhaseBuild, spec.PhaseRun, spec.PhasePost},
		byPhase: map[spec.Phase]Deps{
			spec.PhaseBuild:     o.InstalledDepsPre,
			spec.PhaseRun:       o.InstalledDepsRuntime,
			spec.PhasePost:      o.InstalledDepsPost,
			spec.PhaseSuggested: DepsDiscard,
		},
	}
}

// nested returns a visitor for the dependency trees of another package.
// It shares the set guard of v, so a set still being expanded further up
// is reported as recursive instead of expanded again.
func (v *addVisitor) nested() *addVisitor {
	return &addVisitor{d: v.d, ctx: v.ctx, w: v.w.Nested()}
}

func (v *addVisitor) addPreDeps(passes depPasses) error {
	return v.runPasses(passes, false)
}

func (v *addVisitor) addPostDeps(passes depPasses) error {
	return v.runPasses(passes, true)
}

func (v *addVisitor) runPasses(passes depPasses, post bool) error {
	for _, ph := range passes.phases {
		tree := passes.pkg.Dependencies(ph)
		if tree == nil {
			continue
		}
		dv := &depsVisitor{addVisitor: v.nested(), passes: passes, phase: ph, post: post}
		if err := dv.w.Walk(tree, dv); err != nil {
			return err
		}
	}
	return nil
}

// depsVisitor adds the leaves of a dependency tree that belong in its pass,
// each in its own transaction.
type depsVisitor struct {
	*addVisitor
	passes depPasses
	phase  spec.Phase
	post   bool
}

func (dv *depsVisitor) VisitPackage(c *spec.PackageConstraint, wc spec.Context) error {
	return dv.leaf(c, wc)
}

func (dv *depsVisitor) VisitBlock(b *spec.Block, wc spec.Context) error { return dv.leaf(b, wc) }

func (dv *depsVisitor) VisitAnyOf(a *spec.AnyOf, wc spec.Context) error { return dv.leaf(a, wc) }

func (dv *depsVisitor) VisitLabel(*spec.Label, spec.Context) error { return nil }

// option returns the disposition of a leaf. Under a phase label the
// earliest placement any labelled phase asks for wins.
func (dv *depsVisitor) option(wc spec.Context) Deps {
	if len(wc.Phases) == 0 {
		return dv.passes.byPhase[dv.phase]
	}
	best := DepsDiscard
	for _, ph := range wc.Phases {
		o := dv.passes.byPhase[ph]
		if o != DepsDiscard && (best == DepsDiscard || o < best) {
			best = o
		}
	}
	return best
}

func (dv *depsVisitor) leaf(n spec.Node, wc spec.Context) error {
	if dv.post {
		return dv.postLeaf(n, wc)
	}
	return dv.preLeaf(n, wc)
}

func (dv *depsVisitor) preLeaf(n spec.Node, wc spec.Context) error {
	opt := dv.option(wc)
	if opt != DepsPre && opt != DepsPreOrPost {
		return nil
	}
	err := dv.addNode(n, wc)
	if err == nil {
		return nil
	}
	if opt == DepsPre || !isResolutionError(err) {
		return err
	}
	dv.d.warn(dv.ctx, errors.GetCode(err), "Dropping dependency '%s' of '%s' to post: %s",
		n, dv.passes.pkg, errors.UserMessage(err))
	return nil
}

func (dv *depsVisitor) postLeaf(n spec.Node, wc spec.Context) error {
	opt := dv.option(wc)
	if opt != DepsPreOrPost && opt != DepsPost && opt != DepsTryPost {
		return nil
	}
	err := dv.addNode(n, wc)
	if err == nil {
		return nil
	}
	if errors.Is(err, errors.ErrCodeCircularDependency) {
		return dv.retryCircular(n, wc)
	}
	if opt != DepsTryPost || !isResolutionError(err) {
		return err
	}
	dv.d.warn(dv.ctx, errors.GetCode(err), "Ignoring dependency '%s' of '%s': %s",
		n, dv.passes.pkg, errors.UserMessage(err))
	return nil
}

// retryCircular adds n again at the end of the list, dropping the circular
// dependency that made the first attempt fail.
func (dv *depsVisitor) retryCircular(n spec.Node, wc spec.Context) error {
	d := dv.d
	savedCircular, savedInsert := d.circular, d.insertBefore
	defer func() { d.circular, d.insertBefore = savedCircular, savedInsert }()
	if d.circular != CircularDiscardSilently {
		d.circular = CircularDiscard
	}
	d.insertBefore = nil
	return dv.addNode(n, wc)
}
