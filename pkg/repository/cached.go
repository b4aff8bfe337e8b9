package repository

import (
	"context"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of queries a cached universe keeps when
// no size is given.
const DefaultCacheSize = 4096

// CachedUniverse memoises Find and Masks results of another universe.
// Errors are not cached.
type CachedUniverse struct {
	inner Universe
	finds *lru.Cache[string, []*Package]
	masks *lru.Cache[string, []Mask]
}

// NewCachedUniverse wraps u with LRU caches holding up to size entries
// each. A size of zero or less uses [DefaultCacheSize].
func NewCachedUniverse(u Universe, size int) (*CachedUniverse, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	finds, err := lru.New[string, []*Package](size)
	if err != nil {
		return nil, err
	}
	masks, err := lru.New[string, []Mask](size)
	if err != nil {
		return nil, err
	}
	return &CachedUniverse{inner: u, finds: finds, masks: masks}, nil
}

// Find implements [Universe].
func (c *CachedUniverse) Find(ctx context.Context, q Query) ([]*Package, error) {
	key := q.String()
	if v, ok := c.finds.Get(key); ok {
		return v, nil
	}
	v, err := c.inner.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	c.finds.Add(key, v)
	return v, nil
}

// Masks implements [Universe].
func (c *CachedUniverse) Masks(ctx context.Context, p *Package) ([]Mask, error) {
	key := p.String() + "/" + strconv.FormatBool(p.Installed)
	if v, ok := c.masks.Get(key); ok {
		return v, nil
	}
	v, err := c.inner.Masks(ctx, p)
	if err != nil {
		return nil, err
	}
	c.masks.Add(key, v)
	return v, nil
}

// Purge drops every cached result.
func (c *CachedUniverse) Purge() {
	c.finds.Purge()
	c.masks.Purge()
}

// Len returns the number of cached Find results.
func (c *CachedUniverse) Len() int { return c.finds.Len() }
