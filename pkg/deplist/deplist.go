package deplist

import (
	"context"
	"fmt"
	"io"
	"iter"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deplist/pkg/errors"
	"github.com/matzehuels/deplist/pkg/observability"
	"github.com/matzehuels/deplist/pkg/repository"
	"github.com/matzehuels/deplist/pkg/spec"
)

// DepList builds an ordered installation list from dependency trees.
//
// A DepList is not safe for concurrent use. Build one per resolution; the
// universe and set registry it reads from may be shared.
type DepList struct {
	universe repository.Universe
	sets     spec.SetRegistry
	opts     Options
	logger   *log.Logger
	hooks    observability.ResolverHooks
	dests    []repository.Destination
	now      func() time.Time

	state *state

	// The fields below describe the add in progress.
	addDests     []repository.Destination
	topLevel     spec.Node
	targetTag    *Tag
	current      *Entry
	insertBefore *Entry
	building     []*Entry

	// Option overlay, narrowed for the dynamic extent of some calls.
	circular       Circular
	overrideMasks  OverrideMasks
	throwOnBlocker bool
}

// Option configures a [DepList].
type Option func(*DepList)

// WithLogger sets the logger receiving warnings and candidate decisions.
func WithLogger(l *log.Logger) Option { return func(d *DepList) { d.logger = l } }

// WithHooks sets the hooks receiving resolver events.
func WithHooks(h observability.ResolverHooks) Option { return func(d *DepList) { d.hooks = h } }

// WithDestinations sets the destinations used when [DepList.Add] is called
// without any.
func WithDestinations(dests ...repository.Destination) Option {
	return func(d *DepList) { d.dests = dests }
}

// WithClock sets the clock used to age installed live packages.
func WithClock(now func() time.Time) Option { return func(d *DepList) { d.now = now } }

// New creates an empty list. Unset option fields take their defaults.
func New(universe repository.Universe, sets spec.SetRegistry, opts Options, options ...Option) (*DepList, error) {
	o, err := NewOptions(opts)
	if err != nil {
		return nil, err
	}
	d := &DepList{
		universe: universe,
		sets:     sets,
		opts:     o,
		logger:   log.New(io.Discard),
		hooks:    observability.NoopResolverHooks{},
		now:      time.Now,
		state:    newState(),
	}
	for _, fn := range options {
		fn(d)
	}
	d.resetAdd()
	return d, nil
}

// Options returns a copy of the list's options.
func (d *DepList) Options() Options { return d.opts }

// SetOptions replaces the options. It fails with [ErrListInUse] when the
// list holds entries.
func (d *DepList) SetOptions(o Options) error {
	if len(d.state.entries) > 0 {
		return ErrListInUse
	}
	o, err := NewOptions(o)
	if err != nil {
		return err
	}
	d.opts = o
	d.resetAdd()
	return nil
}

// Clear removes every entry. Options are kept.
func (d *DepList) Clear() {
	d.state.reset()
	d.resetAdd()
}

// Len returns the number of entries.
func (d *DepList) Len() int { return len(d.state.entries) }

// Entries returns the entries in plan order.
func (d *DepList) Entries() []*Entry { return slices.Clone(d.state.entries) }

// All iterates over the entries in plan order.
func (d *DepList) All() iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, e := range d.state.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// HasErrors reports whether the list holds block or masked entries.
func (d *DepList) HasErrors() bool {
	return slices.ContainsFunc(d.state.entries, func(e *Entry) bool { return e.Kind.IsError() })
}

// Add resolves target and adds it with its dependencies to the list.
// Packages are installed to the first of dests accepting them.
//
// Add is transactional: when it fails, the list is left exactly as it was.
func (d *DepList) Add(ctx context.Context, target spec.Node, dests ...repository.Destination) error {
	return d.add(ctx, target, nil, dests)
}

// AddTagged is like [DepList.Add], but entries requested directly by target
// are tagged with tag instead of a target tag.
func (d *DepList) AddTagged(ctx context.Context, target spec.Node, tag Tag, dests ...repository.Destination) error {
	return d.add(ctx, target, &tag, dests)
}

func (d *DepList) add(ctx context.Context, target spec.Node, tag *Tag, dests []repository.Destination) (err error) {
	name := target.String()
	start := time.Now()
	d.hooks.OnAddStart(ctx, name)
	defer func() {
		d.hooks.OnAddComplete(ctx, name, len(d.state.entries), time.Since(start), err)
	}()

	d.resetAdd()
	d.addDests = dests
	d.topLevel = target
	d.targetTag = tag
	defer d.resetAdd()

	v := d.newAddVisitor(ctx)
	err = v.addNode(target, spec.Context{})
	if err != nil {
		d.logger.Debug("add failed", "target", name, "err", err)
	}
	return err
}

func (d *DepList) resetAdd() {
	d.addDests = nil
	d.topLevel = nil
	d.targetTag = nil
	d.current = nil
	d.insertBefore = nil
	d.building = nil
	d.circular = d.opts.Circular
	d.overrideMasks = d.opts.OverrideMasks
	d.throwOnBlocker = false
}

// destinations returns the destinations in effect for the current add.
func (d *DepList) destinations() []repository.Destination {
	switch {
	case len(d.addDests) > 0:
		return d.addDests
	case len(d.dests) > 0:
		return d.dests
	}
	return []repository.Destination{repository.Root(repository.InstalledRepository)}
}

func (d *DepList) findDestination(p *repository.Package) repository.Destination {
	for _, dest := range d.destinations() {
		if dest.Accepts(p) {
			return dest
		}
	}
	return nil
}

// warn reports a recoverable condition.
func (d *DepList) warn(ctx context.Context, code errors.Code, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	d.logger.Warn(msg, "code", code)
	d.hooks.OnWarning(ctx, string(code), msg)
}

// warnErr reports a recoverable condition carried by err.
func (d *DepList) warnErr(ctx context.Context, err error) {
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	d.logger.Warn(msg, "code", code)
	d.hooks.OnWarning(ctx, string(code), msg)
}

// tagsFor returns the tags an entry reached in wc receives.
func (d *DepList) tagsFor(wc spec.Context, c spec.Node) []Tag {
	var tags []Tag
	if d.current == nil {
		if d.targetTag != nil {
			tags = append(tags, Tag{Kind: d.targetTag.Kind, Name: d.targetTag.Name})
		} else {
			tags = append(tags, Tag{Kind: TagTarget, Name: c.String()})
		}
	}
	if wc.Set != "" {
		tags = append(tags, Tag{Kind: TagSet, Name: wc.Set})
	}
	if d.opts.DependencyTags && d.current != nil {
		tags = append(tags, Tag{Kind: TagDependency, Name: d.current.String()})
	}
	return tags
}

// buildingPath returns the entries being built, outermost first.
func (d *DepList) buildingPath() []string {
	path := make([]string, len(d.building))
	for i, e := range d.building {
		path[i] = e.String()
	}
	return path
}
