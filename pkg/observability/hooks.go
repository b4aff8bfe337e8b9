// Package observability provides hooks for metrics, tracing, and logging.
//
// The resolver, the plan cache and the HTTP API report events through small
// hook interfaces. Each has a no-op default, so instrumentation never adds a
// backend dependency. [LogHooks] forwards resolver and cache events to a
// charmbracelet logger at debug level.
//
// Register process-wide hooks at startup:
//
//	observability.SetCacheHooks(myCacheHooks{})
//
// The resolver itself never reads the registry. Callers pass hooks in
// explicitly:
//
//	list, err := deplist.New(db, db, opts, deplist.WithHooks(observability.Resolver()))
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ResolverHooks receives events from dependency resolution.
type ResolverHooks interface {
	// OnAddStart is called when a top-level target is added.
	OnAddStart(ctx context.Context, target string)
	// OnAddComplete is called when a top-level add finishes. entries is the
	// size of the list afterwards.
	OnAddComplete(ctx context.Context, target string, entries int, duration time.Duration, err error)
	// OnCandidate records the package chosen for a constraint. installed is
	// true when an installed package was kept.
	OnCandidate(ctx context.Context, constraint, chosen string, installed bool)
	// OnWarning records a recoverable condition such as an unknown set or a
	// dropped circular dependency.
	OnWarning(ctx context.Context, code, message string)
}

// CacheHooks receives events from the plan cache. kind is "plan" or "graph".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
	OnCacheSet(ctx context.Context, kind string, size int)
}

// ServerHooks receives events from the HTTP API.
type ServerHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// NoopResolverHooks ignores every resolver event.
type NoopResolverHooks struct{}

func (NoopResolverHooks) OnAddStart(context.Context, string)                               {}
func (NoopResolverHooks) OnAddComplete(context.Context, string, int, time.Duration, error) {}
func (NoopResolverHooks) OnCandidate(context.Context, string, string, bool)                {}
func (NoopResolverHooks) OnWarning(context.Context, string, string)                        {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks ignores every server event.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// LogHooks writes resolver and cache events to a logger at debug level.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks logging to logger, or to the default logger if
// logger is nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{Logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) OnAddStart(_ context.Context, target string) {
	h.Logger.Debug("add", "target", target)
}

func (h *LogHooks) OnAddComplete(_ context.Context, target string, entries int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("add failed", "target", target, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("added", "target", target, "entries", entries, "duration", d)
}

func (h *LogHooks) OnCandidate(_ context.Context, constraint, chosen string, installed bool) {
	h.Logger.Debug("candidate", "constraint", constraint, "chosen", chosen, "installed", installed)
}

func (h *LogHooks) OnWarning(_ context.Context, code, message string) {
	h.Logger.Warn(message, "code", code)
}

func (h *LogHooks) OnCacheHit(_ context.Context, kind string) {
	h.Logger.Debug("cache hit", "kind", kind)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, kind string) {
	h.Logger.Debug("cache miss", "kind", kind)
}

func (h *LogHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.Logger.Debug("cache set", "kind", kind, "bytes", size)
}

var (
	_ ResolverHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
)

// registry holds the process-wide hooks.
type registry struct {
	mu       sync.RWMutex
	resolver ResolverHooks
	cache    CacheHooks
	server   ServerHooks
}

var hooks = newRegistry()

func newRegistry() *registry {
	return &registry{
		resolver: NoopResolverHooks{},
		cache:    NoopCacheHooks{},
		server:   NoopServerHooks{},
	}
}

func (r *registry) set(fn func(*registry)) {
	r.mu.Lock()
	fn(r)
	r.mu.Unlock()
}

// SetResolverHooks registers resolver hooks. A nil h is ignored.
func SetResolverHooks(h ResolverHooks) {
	if h != nil {
		hooks.set(func(r *registry) { r.resolver = h })
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		hooks.set(func(r *registry) { r.cache = h })
	}
}

// SetServerHooks registers server hooks. A nil h is ignored.
func SetServerHooks(h ServerHooks) {
	if h != nil {
		hooks.set(func(r *registry) { r.server = h })
	}
}

// Resolver returns the registered resolver hooks.
func Resolver() ResolverHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.resolver
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.cache
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.server
}

// Reset restores the no-op defaults.
func Reset() {
	fresh := newRegistry()
	hooks.set(func(r *registry) {
		r.resolver, r.cache, r.server = fresh.resolver, fresh.cache, fresh.server
	})
}
