package cache

// ScopedKeyer wraps a Keyer with a prefix so that several datasets or
// tenants can share one backend without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "sars-cov-2:")
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

// BuildKey generates a prefixed key for a built DAG.
func (k *ScopedKeyer) BuildKey(inputHash string, opts BuildKeyOpts) string {
	return k.prefix + k.inner.BuildKey(inputHash, opts)
}

// MergeKey generates a prefixed key for a merged DAG.
func (k *ScopedKeyer) MergeKey(inputHashes []string, opts BuildKeyOpts) string {
	return k.prefix + k.inner.MergeKey(inputHashes, opts)
}
