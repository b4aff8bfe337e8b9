// Package pipeline provides the resolve → graph → render pipeline shared by
// the CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Resolve: build a deplist for the targets and snapshot it as a plan
//  2. Graph: turn the plan into a dependency graph, optionally normalized
//  3. Render: produce DOT, SVG or JSON output of the graph
//
// Plans and rendered outputs are cached (see [cache.Plans]); resolved plans
// are also archived when an archive is configured.
//
// # Usage
//
//	runner, err := pipeline.NewRunner(db, cache.Hash(repoFile), c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Targets: []string{"app-misc/foo", "@world"},
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deplist/pkg/cache"
	"github.com/matzehuels/deplist/pkg/deplist"
	"github.com/matzehuels/deplist/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultQueryCacheSize bounds the per-runner repository query cache.
const DefaultQueryCacheSize = 4096

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. It is also the request body of the
// HTTP API.
type Options struct {
	// Targets are dependency specifications, each added in turn, for example
	// "app-misc/foo" or ">=dev-libs/bar-2 @world".
	Targets []string `json:"targets"`
	// Options are resolver options by name, see deplist.ParseOptions.
	Options map[string]string `json:"options,omitempty"`
	// Refresh skips the plan cache.
	Refresh bool `json:"refresh,omitempty"`

	// Formats to render. With none, only the plan is produced.
	Formats   []string `json:"formats,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"`
	Normalize bool     `json:"normalize,omitempty"`

	Logger *log.Logger `json:"-"`

	resolver  deplist.Options
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Plan *deplist.Plan
	// PlanHash is the hash of the plan's JSON encoding.
	PlanHash  string
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Entries     int
	NodeCount   int
	EdgeCount   int
	ResolveTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	PlanHit   bool
	RenderHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: dot, svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and parses the resolver
// options. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Targets) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one target is required")
	}
	if slices.Contains(o.Targets, "") {
		return errors.New(errors.ErrCodeInvalidInput, "targets must not be empty")
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	resolver, err := deplist.ParseOptions(o.Options)
	if err != nil {
		return err
	}
	if len(o.Formats) > 0 {
		// graph edges come from dependency tags
		resolver.DependencyTags = true
	}
	o.resolver = resolver
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ResolverOptions returns the parsed resolver options. It is only valid
// after [Options.ValidateAndSetDefaults].
func (o *Options) ResolverOptions() deplist.Options { return o.resolver }

// PlanKeyOpts returns cache key options for the resolve stage. Options are
// keyed in canonical form, so "blocks=accumulate" and an empty map share a
// key.
func (o *Options) PlanKeyOpts() cache.PlanKeyOpts {
	return cache.PlanKeyOpts{
		Targets: o.Targets,
		Options: o.resolver.Map(),
	}
}

// GraphKeyOpts returns cache key options for rendering format.
func (o *Options) GraphKeyOpts(format string) cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
		Reduce:   o.Normalize,
	}
}
