package cache

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deplist/pkg/deplist"
	planio "github.com/matzehuels/deplist/pkg/io"
	"github.com/matzehuels/deplist/pkg/observability"
)

// DefaultTTL is how long plans and graphs stay cached.
const DefaultTTL = 24 * time.Hour

// Plans caches resolved plans and rendered graphs on top of a [Cache].
// Decoding failures are treated as misses and the entry is dropped.
type Plans struct {
	Cache  Cache
	Keys   Keyer
	TTL    time.Duration
	Logger *log.Logger
}

// NewPlans creates a plan store with the default keyer and TTL.
func NewPlans(c Cache) *Plans {
	return &Plans{Cache: c, Keys: NewDefaultKeyer(), TTL: DefaultTTL, Logger: log.Default()}
}

// GetPlan returns the cached plan for key and the hash of its encoding.
func (s *Plans) GetPlan(ctx context.Context, key string) (*deplist.Plan, string, bool) {
	data, ok := s.get(ctx, "plan", key)
	if !ok {
		return nil, "", false
	}
	p, err := planio.ReadPlan(bytes.NewReader(data), planio.FormatJSON)
	if err != nil {
		s.Logger.Warn("dropping unreadable cached plan", "key", key, "err", err)
		_ = s.Cache.Delete(ctx, key)
		return nil, "", false
	}
	return p, Hash(data), true
}

// PutPlan caches p under key and returns the hash of its encoding, which
// keys the graphs rendered from it.
func (s *Plans) PutPlan(ctx context.Context, key string, p *deplist.Plan) (string, error) {
	var buf bytes.Buffer
	if err := planio.WritePlan(p, &buf, planio.FormatJSON); err != nil {
		return "", err
	}
	s.set(ctx, "plan", key, buf.Bytes())
	return Hash(buf.Bytes()), nil
}

// GetGraph returns a cached rendered graph.
func (s *Plans) GetGraph(ctx context.Context, key string) ([]byte, bool) {
	return s.get(ctx, "graph", key)
}

// PutGraph caches a rendered graph.
func (s *Plans) PutGraph(ctx context.Context, key string, data []byte) {
	s.set(ctx, "graph", key, data)
}

func (s *Plans) get(ctx context.Context, kind, key string) ([]byte, bool) {
	data, ok, err := s.Cache.Get(ctx, key)
	if err != nil {
		s.Logger.Warn("cache read failed", "kind", kind, "err", err)
	}
	if err != nil || !ok {
		observability.Cache().OnCacheMiss(ctx, kind)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, kind)
	return data, true
}

// set logs failures instead of returning them; a cache write never fails
// the request that produced the value.
func (s *Plans) set(ctx context.Context, kind, key string, data []byte) {
	if err := s.Cache.Set(ctx, key, data, s.TTL); err != nil {
		s.Logger.Warn("cache write failed", "kind", kind, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}
