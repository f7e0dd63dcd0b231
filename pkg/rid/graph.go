package rid

import (
	"errors"
	"slices"
)

// RID is an opaque runtime identifier. Equality is exact string equality.
type RID string

// Agnostic is the platform-agnostic sentinel. It terminates every chain and
// tags asset groups that declare no RID.
const Agnostic RID = ""

// String returns the RID, or "agnostic" for the sentinel.
func (r RID) String() string {
	if r == Agnostic {
		return "agnostic"
	}
	return string(r)
}

// IsAgnostic reports whether r is the platform-agnostic sentinel.
func (r RID) IsAgnostic() bool { return r == Agnostic }

var (
	// ErrEmptyRID is returned by [NewGraph] when an entry has an empty RID.
	ErrEmptyRID = errors.New("rid must not be empty")

	// ErrDuplicateRID is returned by [NewGraph] when a RID is declared twice.
	ErrDuplicateRID = errors.New("duplicate rid")
)

// Entry is one declaration in a fallback graph: a RID and its ordered list
// of less specific, compatible RIDs.
type Entry struct {
	RID       RID
	Fallbacks []RID
}

// Graph is an immutable fallback graph. Declaration order is preserved.
//
// The zero value is an empty graph. A nil *Graph is also treated as empty.
type Graph struct {
	entries []Entry
	index   map[RID]int
}

// NewGraph builds a graph from entries, preserving their order. Entries are
// copied, so later changes to the input do not affect the graph.
func NewGraph(entries ...Entry) (*Graph, error) {
	g := &Graph{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[RID]int, len(entries)),
	}
	for _, e := range entries {
		if e.RID == Agnostic {
			return nil, ErrEmptyRID
		}
		if _, dup := g.index[e.RID]; dup {
			return nil, ErrDuplicateRID
		}
		g.index[e.RID] = len(g.entries)
		g.entries = append(g.entries, Entry{RID: e.RID, Fallbacks: slices.Clone(e.Fallbacks)})
	}
	return g, nil
}

// MustGraph is like [NewGraph] but panics on error. Intended for tables and tests.
func MustGraph(entries ...Entry) *Graph {
	g, err := NewGraph(entries...)
	if err != nil {
		panic(err)
	}
	return g
}

// Has reports whether r is declared in the graph.
func (g *Graph) Has(r RID) bool {
	if g == nil {
		return false
	}
	_, ok := g.index[r]
	return ok
}

// Fallbacks returns a copy of the declared fallbacks for r, or nil if r is
// not declared.
func (g *Graph) Fallbacks(r RID) []RID {
	if g == nil {
		return nil
	}
	i, ok := g.index[r]
	if !ok {
		return nil
	}
	return slices.Clone(g.entries[i].Fallbacks)
}

// RIDs returns the declared RIDs in declaration order.
func (g *Graph) RIDs() []RID {
	if g == nil {
		return nil
	}
	out := make([]RID, len(g.entries))
	for i, e := range g.entries {
		out[i] = e.RID
	}
	return out
}

// Entries returns copies of all entries in declaration order.
func (g *Graph) Entries() []Entry {
	if g == nil {
		return nil
	}
	out := make([]Entry, len(g.entries))
	for i, e := range g.entries {
		out[i] = Entry{RID: e.RID, Fallbacks: slices.Clone(e.Fallbacks)}
	}
	return out
}

// Len returns the number of declared RIDs.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.entries)
}
