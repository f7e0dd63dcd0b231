package rid

// DefaultFallbacks is the compiled-in fallback table used when a request is
// unknown to the available graph. It captures broad OS-family compatibility
// for the portable RIDs so newer platforms keep resolving without updated
// graph data.
var DefaultFallbacks = MustGraph(
	Entry{RID: "linux-x64", Fallbacks: []RID{"linux", "unix-x64", "unix", "any", "base"}},
	Entry{RID: "linux-x86", Fallbacks: []RID{"linux", "unix-x86", "unix", "any", "base"}},
	Entry{RID: "linux-arm64", Fallbacks: []RID{"linux", "unix-arm64", "unix", "any", "base"}},
	Entry{RID: "linux-arm", Fallbacks: []RID{"linux", "unix-arm", "unix", "any", "base"}},
	Entry{RID: "linux-musl-x64", Fallbacks: []RID{"linux-musl", "linux-x64", "linux", "unix-x64", "unix", "any", "base"}},
	Entry{RID: "linux-musl-arm64", Fallbacks: []RID{"linux-musl", "linux-arm64", "linux", "unix-arm64", "unix", "any", "base"}},
	Entry{RID: "linux-musl-arm", Fallbacks: []RID{"linux-musl", "linux-arm", "linux", "unix-arm", "unix", "any", "base"}},
	Entry{RID: "osx-x64", Fallbacks: []RID{"osx", "unix-x64", "unix", "any", "base"}},
	Entry{RID: "osx-arm64", Fallbacks: []RID{"osx", "unix-arm64", "unix", "any", "base"}},
	Entry{RID: "freebsd-x64", Fallbacks: []RID{"freebsd", "unix-x64", "unix", "any", "base"}},
	Entry{RID: "freebsd-arm64", Fallbacks: []RID{"freebsd", "unix-arm64", "unix", "any", "base"}},
	Entry{RID: "win-x64", Fallbacks: []RID{"win", "any", "base"}},
	Entry{RID: "win-x86", Fallbacks: []RID{"win", "any", "base"}},
	Entry{RID: "win-arm64", Fallbacks: []RID{"win", "any", "base"}},
)

// DefaultChain returns the compiled-in chain for the platform RID r. The
// chain has UsedDefault set. If r is not in [DefaultFallbacks] the chain
// holds only [Agnostic].
func DefaultChain(r RID) Chain {
	c := Chain{Requested: r, Source: SourceDefault, UsedDefault: true}
	if DefaultFallbacks.Has(r) {
		c.Tiers = tiers(r, DefaultFallbacks.Fallbacks(r))
	}
	return c
}
