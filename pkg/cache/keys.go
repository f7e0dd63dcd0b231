package cache

// ResultKeyOpts holds every input besides the manifest bytes that changes
// the outcome of a resolution.
type ResultKeyOpts struct {
	Request    string   `json:"request"`              // "explicit", "unknown" or "unset"
	RID        string   `json:"rid,omitempty"`        // explicit RID
	Platform   string   `json:"platform,omitempty"`   // detected RID, when the chain depends on it
	NoGraph    bool     `json:"no_graph,omitempty"`   // graph ignored (forced exact-only)
	Components []string `json:"components,omitempty"` // component manifest hashes, in order
}

// Keyer derives cache keys.
type Keyer interface {
	// ResultKey returns the key of a resolution result for the manifest
	// with the given content hash.
	ResultKey(manifestHash string, opts ResultKeyOpts) string
	// GraphKey returns the key of a rendered fallback graph.
	GraphKey(manifestHash, format string) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard [Keyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResultKey implements [Keyer].
func (DefaultKeyer) ResultKey(manifestHash string, opts ResultKeyOpts) string {
	return hashKey("result", manifestHash, opts)
}

// GraphKey implements [Keyer].
func (DefaultKeyer) GraphKey(manifestHash, format string) string {
	return hashKey("graph", manifestHash, format)
}

// ScopedKeyer wraps a Keyer with a prefix, so that several deployments can
// share one backend without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// ResultKey generates a prefixed result key.
func (k *ScopedKeyer) ResultKey(manifestHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(manifestHash, opts)
}

// GraphKey generates a prefixed graph key.
func (k *ScopedKeyer) GraphKey(manifestHash, format string) string {
	return k.prefix + k.inner.GraphKey(manifestHash, format)
}
