package rid

import (
	"fmt"
	"slices"
	"strings"
)

// Source records where a chain's tiers came from.
type Source int

const (
	// SourceGraph means the tiers were read from a fallback graph.
	SourceGraph Source = iota
	// SourceDefault means the compiled-in table was substituted.
	SourceDefault
	// SourceExact means no graph existed and only an exact match is possible.
	SourceExact
)

var sourceNames = map[Source]string{
	SourceGraph:   "graph",
	SourceDefault: "default",
	SourceExact:   "exact",
}

// String returns the source name.
func (s Source) String() string {
	if n, ok := sourceNames[s]; ok {
		return n
	}
	return fmt.Sprintf("source(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Source) UnmarshalText(b []byte) error {
	for k, v := range sourceNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown chain source %q", b)
}

// Chain is the ordered list of candidate RIDs for one resolution pass, from
// most to least specific. Tiers holds only specific RIDs; [Chain.Candidates]
// appends the [Agnostic] sentinel.
//
// A Chain is a value: once built it is never modified, so it can be shared
// between a host pass and the component passes that reuse it.
type Chain struct {
	Requested   RID    `json:"requested"`
	Tiers       []RID  `json:"tiers"`
	Source      Source `json:"source"`
	UsedDefault bool   `json:"used_default"`
}

// Candidates returns the specific tiers followed by [Agnostic].
func (c Chain) Candidates() []RID {
	out := make([]RID, 0, len(c.Tiers)+1)
	out = append(out, c.Tiers...)
	return append(out, Agnostic)
}

// Rank returns the position of r in [Chain.Candidates], or -1 if r is not a
// candidate. Lower is more specific.
func (c Chain) Rank(r RID) int {
	if r == Agnostic {
		return len(c.Tiers)
	}
	return slices.Index(c.Tiers, r)
}

// String renders the chain as "a -> b -> agnostic".
func (c Chain) String() string {
	parts := make([]string, 0, len(c.Tiers)+1)
	for _, r := range c.Candidates() {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, " -> ")
}

// BuildChain computes the candidate chain for ctx. An explicit RID missing
// from the graph uses its own entry in [DefaultFallbacks] when there is one,
// and the detected platform's default chain otherwise. The detector is
// consulted only in that last case and for unset or unknown requests. A nil
// detector reports an unknown platform.
//
// BuildChain never fails: every outcome, including an empty chain holding only
// Agnostic, is a valid chain.
func BuildChain(ctx Context, d Detector) Chain {
	switch fb := ctx.Fallback.(type) {
	case WithGraph:
		return graphChain(ctx.Request, fb.Graph, d)
	default:
		return exactChain(ctx.Request, d)
	}
}

func graphChain(req Request, g *Graph, d Detector) Chain {
	switch req.Kind {
	case RequestUnknown:
		return DefaultChain(detect(d))
	case RequestExplicit:
		if g.Has(req.RID) {
			return Chain{Requested: req.RID, Tiers: tiers(req.RID, g.Fallbacks(req.RID)), Source: SourceGraph}
		}
		if DefaultFallbacks.Has(req.RID) {
			return DefaultChain(req.RID)
		}
		return DefaultChain(detect(d))
	default:
		r := detect(d)
		if r != Agnostic && g.Has(r) {
			return Chain{Requested: r, Tiers: tiers(r, g.Fallbacks(r)), Source: SourceGraph}
		}
		return DefaultChain(r)
	}
}

func exactChain(req Request, d Detector) Chain {
	c := Chain{Source: SourceExact}
	switch req.Kind {
	case RequestExplicit:
		c.Requested = req.RID
	case RequestUnknown:
		c.Requested = detect(d)
		c.UsedDefault = true
	default:
		c.Requested = detect(d)
	}
	if c.Requested != Agnostic {
		c.Tiers = []RID{c.Requested}
	}
	return c
}

// tiers returns [head, fallbacks...] with duplicates and agnostic entries
// removed, keeping the first occurrence.
func tiers(head RID, fallbacks []RID) []RID {
	out := make([]RID, 0, len(fallbacks)+1)
	seen := make(map[RID]bool, len(fallbacks)+1)
	for _, r := range append([]RID{head}, fallbacks...) {
		if r == Agnostic || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

func detect(d Detector) RID {
	if d == nil {
		return Agnostic
	}
	return d.Detect()
}
