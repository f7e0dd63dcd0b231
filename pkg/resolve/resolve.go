package resolve

import (
	"strings"

	"github.com/matzehuels/ridasset/pkg/manifest"
	"github.com/matzehuels/ridasset/pkg/rid"
)

// Contribution records what one library contributed for one asset kind.
type Contribution struct {
	Library string             `json:"library"`
	Kind    manifest.AssetKind `json:"kind"`
	Tier    rid.RID            `json:"tier"` // empty for the agnostic group
	Assets  []string           `json:"assets"`
}

// Unresolved records a library that declared groups of a kind but had no
// group matching the chain. It is informational, not an error.
type Unresolved struct {
	Library string             `json:"library"`
	Kind    manifest.AssetKind `json:"kind"`
	Tags    []rid.RID          `json:"tags"`
}

// Result is the outcome of one resolution pass.
type Result struct {
	Assemblies      []string       `json:"assemblies"`
	NativeLibraries []string       `json:"native_libraries"`
	Contributions   []Contribution `json:"contributions"`
	Unresolved      []Unresolved   `json:"unresolved,omitempty"`
	Chain           rid.Chain      `json:"chain"`
}

// Assets returns the resolved paths of the given kind.
func (r Result) Assets(kind manifest.AssetKind) []string {
	switch kind {
	case manifest.Assembly:
		return r.Assemblies
	case manifest.Native:
		return r.NativeLibraries
	default:
		return nil
	}
}

// Tier returns the RID that satisfied the named library for kind. The
// boolean is false when the library contributed nothing of that kind.
func (r Result) Tier(library string, kind manifest.AssetKind) (rid.RID, bool) {
	for _, c := range r.Contributions {
		if c.Kind == kind && (c.Library == library || libraryName(c.Library) == library) {
			return c.Tier, true
		}
	}
	return rid.Agnostic, false
}

// Host returns the finalized chain of this pass, for resolving components
// hosted by it.
func (r Result) Host() Host { return Host{chain: r.Chain} }

// Host is the platform context a host pass hands to its components. The
// zero Host carries an empty chain, under which only agnostic groups resolve.
type Host struct {
	chain rid.Chain
}

// Chain returns the host's finalized chain.
func (h Host) Chain() rid.Chain { return h.chain }

// NewContext pairs a request with the fallback information m carries.
func NewContext(m *manifest.Manifest, req rid.Request) rid.Context {
	return rid.Context{Request: req, Fallback: m.Fallback()}
}

// Application resolves an application manifest: it builds the chain for ctx,
// consulting d at most once, and resolves every library against it.
func Application(m *manifest.Manifest, ctx rid.Context, d rid.Detector) Result {
	return WithChain(m, rid.BuildChain(ctx, d))
}

// Component resolves a hosted component's manifest against its host's chain.
// The component's own fallback graph, if any, is not consulted.
func Component(m *manifest.Manifest, host Host) Result {
	return WithChain(m, host.chain)
}

// WithChain resolves every library of m against chain. Libraries are visited
// in manifest order, and within a library assemblies before native libraries;
// each asset appears once per kind, at its first position.
func WithChain(m *manifest.Manifest, chain rid.Chain) Result {
	res := Result{
		Assemblies:      []string{},
		NativeLibraries: []string{},
		Contributions:   []Contribution{},
		Chain:           chain,
	}
	candidates := chain.Candidates()
	seen := map[manifest.AssetKind]map[string]bool{
		manifest.Assembly: {},
		manifest.Native:   {},
	}

	for _, lib := range m.Libraries() {
		for _, kind := range manifest.Kinds {
			groups := lib.Groups(kind)
			if len(groups) == 0 {
				continue
			}
			sel, ok := Select(groups, candidates)
			if !ok {
				res.Unresolved = append(res.Unresolved, Unresolved{
					Library: lib.ID(),
					Kind:    kind,
					Tags:    tags(groups),
				})
				continue
			}
			res.Contributions = append(res.Contributions, Contribution{
				Library: lib.ID(),
				Kind:    kind,
				Tier:    sel.Tier,
				Assets:  sel.Assets,
			})
			for _, a := range sel.Assets {
				if seen[kind][a] {
					continue
				}
				seen[kind][a] = true
				if kind == manifest.Assembly {
					res.Assemblies = append(res.Assemblies, a)
				} else {
					res.NativeLibraries = append(res.NativeLibraries, a)
				}
			}
		}
	}
	return res
}

func tags(groups []manifest.AssetGroup) []rid.RID {
	out := make([]rid.RID, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.RID)
	}
	return out
}

func libraryName(id string) string {
	name, _, _ := strings.Cut(id, "/")
	return name
}
