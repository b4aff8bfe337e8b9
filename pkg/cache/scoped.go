package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several repositories or
// deployments can share one Redis instance.
//
//	keys := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "deplist:prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PlanKey generates a prefixed plan key.
func (k *ScopedKeyer) PlanKey(universeHash string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(universeHash, opts)
}

// GraphKey generates a prefixed graph key.
func (k *ScopedKeyer) GraphKey(planHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(planHash, opts)
}
