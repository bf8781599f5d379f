package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis instance without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "railcdl:staging:")
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

// AnalysisKey generates a prefixed key for report caching.
func (k *ScopedKeyer) AnalysisKey(stationHash string, opts AnalysisKeyOpts) string {
	return k.prefix + k.inner.AnalysisKey(stationHash, opts)
}

// RenderKey generates a prefixed key for diagram caching.
func (k *ScopedKeyer) RenderKey(stationHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(stationHash, opts)
}
