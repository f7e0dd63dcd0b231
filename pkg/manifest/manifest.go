package manifest

import (
	"fmt"
	"slices"

	"github.com/matzehuels/ridasset/pkg/rid"
)

// AssetKind distinguishes the two kinds of runtime asset a library can ship.
type AssetKind int

const (
	// Assembly is a managed assembly ("runtime" in deps.json).
	Assembly AssetKind = iota
	// Native is a native shared library.
	Native
)

// Kinds lists every asset kind in resolution order.
var Kinds = []AssetKind{Assembly, Native}

// String returns "assembly" or "native".
func (k AssetKind) String() string {
	switch k {
	case Assembly:
		return "assembly"
	case Native:
		return "native"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k AssetKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *AssetKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "assembly":
		*k = Assembly
	case "native":
		*k = Native
	default:
		return fmt.Errorf("unknown asset kind %q", b)
	}
	return nil
}

// AssetGroup is a set of asset paths shipped together for one RID tag.
// A group whose RID is [rid.Agnostic] is platform-agnostic.
type AssetGroup struct {
	RID    rid.RID
	Assets []string
}

func (g AssetGroup) clone() AssetGroup {
	return AssetGroup{RID: g.RID, Assets: slices.Clone(g.Assets)}
}

// Library is one runtime library of a manifest. Library values are
// immutable: [Library.WithGroup] returns a modified copy and accessors return
// copies of the underlying slices.
type Library struct {
	Name    string
	Version string
	Type    string // "package", "project", "reference" or empty

	groups [2][]AssetGroup
}

// NewLibrary returns a library with no asset groups.
func NewLibrary(name, version string) Library {
	return Library{Name: name, Version: version, Type: "package"}
}

// ID returns the "name/version" key used by deps.json.
func (l Library) ID() string {
	if l.Version == "" {
		return l.Name
	}
	return l.Name + "/" + l.Version
}

// Groups returns the asset groups of the given kind in declaration order.
func (l Library) Groups(kind AssetKind) []AssetGroup {
	if kind != Assembly && kind != Native {
		return nil
	}
	src := l.groups[kind]
	if len(src) == 0 {
		return nil
	}
	out := make([]AssetGroup, len(src))
	for i, g := range src {
		out[i] = g.clone()
	}
	return out
}

// HasAssets reports whether l declares any asset of the given kind.
func (l Library) HasAssets(kind AssetKind) bool {
	return (kind == Assembly || kind == Native) && len(l.groups[kind]) > 0
}

// WithGroup returns a copy of l with assets added under the given RID tag.
// Assets for a (RID, kind) pair that already has a group are appended to that
// group, so a library never holds two groups with the same tag. Asset paths
// already present in the group are skipped. Calling WithGroup with no assets
// returns l unchanged.
func (l Library) WithGroup(kind AssetKind, r rid.RID, assets ...string) Library {
	if len(assets) == 0 || (kind != Assembly && kind != Native) {
		return l
	}
	out := l
	groups := make([]AssetGroup, len(l.groups[kind]))
	for i, g := range l.groups[kind] {
		groups[i] = g.clone()
	}

	idx := slices.IndexFunc(groups, func(g AssetGroup) bool { return g.RID == r })
	if idx < 0 {
		groups = append(groups, AssetGroup{RID: r})
		idx = len(groups) - 1
	}
	for _, a := range assets {
		if !slices.Contains(groups[idx].Assets, a) {
			groups[idx].Assets = append(groups[idx].Assets, a)
		}
	}
	out.groups[kind] = groups
	return out
}

// WithoutKind returns a copy of l with every group of the given kind removed.
func (l Library) WithoutKind(kind AssetKind) Library {
	if kind != Assembly && kind != Native {
		return l
	}
	out := l
	out.groups[kind] = nil
	return out
}

// Manifest is a parsed dependency manifest. It is immutable and safe for
// concurrent use by any number of resolution passes.
type Manifest struct {
	target string
	libs   []Library
	graph  *rid.Graph
}

// New builds a manifest from libraries in resolution order. A nil graph
// means the document carried no runtimes section, which is how
// self-contained deployments are described.
func New(graph *rid.Graph, libs ...Library) *Manifest {
	return &Manifest{libs: slices.Clone(libs), graph: graph}
}

// Target returns the name of the runtime target the libraries were read from.
func (m *Manifest) Target() string { return m.target }

// Libraries returns the libraries in document order.
func (m *Manifest) Libraries() []Library { return slices.Clone(m.libs) }

// Library returns the library with the given name.
func (m *Manifest) Library(name string) (Library, bool) {
	for _, l := range m.libs {
		if l.Name == name {
			return l, true
		}
	}
	return Library{}, false
}

// Graph returns the fallback graph declared by the manifest. The boolean is
// false when the manifest has no runtimes section.
func (m *Manifest) Graph() (*rid.Graph, bool) {
	return m.graph, m.graph != nil
}

// Fallback returns the fallback variant implied by the manifest:
// [rid.WithGraph] when a graph is present, [rid.ExactOnly] otherwise.
func (m *Manifest) Fallback() rid.Fallback {
	if m.graph == nil {
		return rid.ExactOnly{}
	}
	return rid.WithGraph{Graph: m.graph}
}

// WithoutGraph returns a copy of m that carries no fallback graph.
func (m *Manifest) WithoutGraph() *Manifest {
	return &Manifest{target: m.target, libs: m.libs}
}
