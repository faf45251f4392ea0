package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving server sessions
// or test runs their own namespace in a shared backend.
//
//	k := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "session:3f2a:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (the default keyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LayoutKey returns the prefixed layout key.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// FocusKey returns the prefixed focus key.
func (k *ScopedKeyer) FocusKey(graphHash string, opts FocusKeyOpts) string {
	return k.prefix + k.inner.FocusKey(graphHash, opts)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
