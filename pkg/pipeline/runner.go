package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deplist/pkg/archive"
	"github.com/matzehuels/deplist/pkg/cache"
	"github.com/matzehuels/deplist/pkg/dag"
	dagtransform "github.com/matzehuels/deplist/pkg/dag/transform"
	"github.com/matzehuels/deplist/pkg/deplist"
	"github.com/matzehuels/deplist/pkg/errors"
	"github.com/matzehuels/deplist/pkg/observability"
	"github.com/matzehuels/deplist/pkg/repository"
	"github.com/matzehuels/deplist/pkg/spec"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// A Runner holds no per-run state: every run builds a fresh deplist over
// the shared repository, so multiple goroutines can use the same Runner.
type Runner struct {
	Universe repository.Universe
	Sets     spec.SetRegistry
	// UniverseHash identifies the repository contents in cache keys.
	UniverseHash string
	Destinations []repository.Destination

	Plans   *cache.Plans
	Archive archive.Archive
	Hooks   observability.ResolverHooks
	Logger  *log.Logger
}

// NewRunner creates a runner over db with a bounded query cache.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(db *repository.Database, universeHash string, c cache.Cache, keyer cache.Keyer, logger *log.Logger) (*Runner, error) {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	universe, err := repository.NewCachedUniverse(db, DefaultQueryCacheSize)
	if err != nil {
		return nil, err
	}
	plans := cache.NewPlans(c)
	plans.Keys = keyer
	plans.Logger = logger
	return &Runner{
		Universe:     universe,
		Sets:         db,
		UniverseHash: universeHash,
		Destinations: db.Destinations(),
		Plans:        plans,
		Hooks:        observability.Resolver(),
		Logger:       logger,
	}, nil
}

// Execute runs the complete resolve → graph → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Resolve
	resolveStart := time.Now()
	plan, hash, hit, err := r.ResolveWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Plan = plan
	result.PlanHash = hash
	result.Stats.Entries = len(plan.Entries)
	result.Stats.ResolveTime = time.Since(resolveStart)
	result.CacheInfo.PlanHit = hit

	r.Logger.Info("resolved plan",
		"entries", len(plan.Entries),
		"errors", plan.HasErrors,
		"cached", hit,
		"duration", result.Stats.ResolveTime)

	if len(opts.Formats) == 0 {
		return result, nil
	}

	// Stage 2 and 3: Graph and Render
	renderStart := time.Now()
	artifacts, g, renderHit, err := r.RenderWithCacheInfo(ctx, plan, hash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	if g != nil {
		result.Stats.NodeCount = g.NodeCount()
		result.Stats.EdgeCount = g.EdgeCount()
	}
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ResolveWithCacheInfo resolves the targets into a plan, reusing a cached
// plan unless opts.Refresh is set. Fresh plans are archived.
func (r *Runner) ResolveWithCacheInfo(ctx context.Context, opts Options) (*deplist.Plan, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", false, err
	}

	key := r.Plans.Keys.PlanKey(r.UniverseHash, opts.PlanKeyOpts())
	if !opts.Refresh {
		if p, hash, ok := r.Plans.GetPlan(ctx, key); ok {
			return p, hash, true, nil
		}
	}

	p, err := r.Resolve(ctx, opts)
	if err != nil {
		return nil, "", false, err
	}
	hash, err := r.Plans.PutPlan(ctx, key, p)
	if err != nil {
		return nil, "", false, err
	}

	if r.Archive != nil {
		if err := r.Archive.Save(ctx, p); err != nil {
			r.Logger.Warn("archive plan", "id", p.ID, "err", err)
		}
	}
	return p, hash, false, nil
}

// Resolve builds a deplist for opts.Targets without caching. Each target is
// parsed and added in turn; the first failing target aborts the run.
func (r *Runner) Resolve(ctx context.Context, opts Options) (*deplist.Plan, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	hooks := r.Hooks
	if hooks == nil {
		hooks = observability.Resolver()
	}
	d, err := deplist.New(r.Universe, r.Sets, opts.ResolverOptions(),
		deplist.WithLogger(opts.Logger),
		deplist.WithHooks(hooks),
		deplist.WithDestinations(r.Destinations...),
	)
	if err != nil {
		return nil, err
	}

	for _, target := range opts.Targets {
		tree, err := spec.Parse(target, spec.ParseOptions{})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "target %q", target)
		}
		if err := d.Add(ctx, tree); err != nil {
			return nil, err
		}
		opts.Logger.Debug("added target", "target", target, "entries", d.Len())
	}
	return d.Plan(opts.Targets...), nil
}

// RenderWithCacheInfo renders plan in every requested format, reusing
// cached outputs. The graph is nil when every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, plan *deplist.Plan, planHash string, opts Options) (map[string][]byte, *dag.DAG, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, ok := r.Plans.GetGraph(ctx, r.Plans.Keys.GraphKey(planHash, opts.GraphKeyOpts(format)))
		if !ok {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, nil, true, nil
	}

	g, err := r.Graph(plan, opts)
	if err != nil {
		return nil, nil, false, err
	}
	rendered, err := Render(ctx, g, opts)
	if err != nil {
		return nil, nil, false, err
	}
	for format, data := range rendered {
		r.Plans.PutGraph(ctx, r.Plans.Keys.GraphKey(planHash, opts.GraphKeyOpts(format)), data)
	}
	return rendered, g, false, nil
}

// Graph builds the plan graph, normalizing it if opts.Normalize is set.
func (r *Runner) Graph(plan *deplist.Plan, opts Options) (*dag.DAG, error) {
	r.applyLogger(&opts)
	g, err := plan.Graph()
	if err != nil {
		return nil, err
	}
	if opts.Normalize {
		res := dagtransform.Normalize(g, dagtransform.Options{})
		opts.Logger.Debug("normalized graph",
			"cycles_removed", res.CyclesRemoved,
			"transitive_edges_removed", res.TransitiveEdgesRemoved,
			"rows", res.MaxRow+1)
	}
	return g, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close(ctx context.Context) error {
	var err error
	if r.Archive != nil {
		err = r.Archive.Close(ctx)
	}
	if r.Plans != nil {
		if cerr := r.Plans.Cache.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
