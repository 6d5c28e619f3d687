package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several deployments can
// share one Redis instance without seeing each other's entries.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "pagegraph:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer uses the
// default.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// QueryKey generates a prefixed query result key.
func (k *ScopedKeyer) QueryKey(fileHash, name string, args map[string]string) string {
	return k.prefix + k.inner.QueryKey(fileHash, name, args)
}

// GraphKey generates a prefixed graph summary key.
func (k *ScopedKeyer) GraphKey(fileHash string, frames bool) string {
	return k.prefix + k.inner.GraphKey(fileHash, frames)
}
