package cache

// ScopedKeyer prefixes every key of an inner Keyer, so several networks or
// servers can share one Redis database without colliding:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "railgen:metro:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// DocumentKey returns the inner document key with the prefix.
func (k *ScopedKeyer) DocumentKey(digest string) string {
	return k.prefix + k.inner.DocumentKey(digest)
}

// ArtifactKey returns the inner artifact key with the prefix.
func (k *ScopedKeyer) ArtifactKey(digest string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(digest, opts)
}
