// Package cache stores resolved plans and rendered graphs.
//
// # Backends
//
// [Cache] is a byte store with per-entry expiry. Three backends exist:
//
//   - [FileCache] for the CLI, one JSON file per entry
//   - [RedisCache] for the HTTP API, shared between instances
//   - [NullCache] when caching is disabled
//
// [Open] picks one from configuration.
//
// # Keys
//
// A [Keyer] derives keys from what an artifact depends on. A plan depends on
// the repository contents, the targets and the options; a graph depends on
// the plan and the render options. Keys hash those inputs, so changing any of
// them misses the cache rather than serving a stale entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with expiry. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get returns the value stored under key. A missing or expired entry is
	// reported with ok false and no error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Set stores data under key. A ttl of zero stores it without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// PlanKey is the key of a plan resolved against a repository whose
	// contents hash to universeHash.
	PlanKey(universeHash string, opts PlanKeyOpts) string
	// GraphKey is the key of a rendered graph of a plan.
	GraphKey(planHash string, opts GraphKeyOpts) string
}

// PlanKeyOpts are the resolution inputs besides the repository.
type PlanKeyOpts struct {
	Targets []string
	// Options is the textual option map, see deplist.Options.Map.
	Options map[string]string
}

// GraphKeyOpts are the render inputs besides the plan.
type GraphKeyOpts struct {
	Format   string
	Detailed bool
	Reduce   bool
}

// DefaultKeyer generates unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PlanKey implements [Keyer].
func (DefaultKeyer) PlanKey(universeHash string, opts PlanKeyOpts) string {
	return hashKey("plan", universeHash, opts.Targets, opts.Options)
}

// GraphKey implements [Keyer].
func (DefaultKeyer) GraphKey(planHash string, opts GraphKeyOpts) string {
	return hashKey("graph", planHash, opts.Format, opts.Detailed, opts.Reduce)
}
