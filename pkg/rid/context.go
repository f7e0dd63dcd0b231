package rid

// RequestKind says how the target RID of a resolution pass is chosen.
type RequestKind int

const (
	// RequestUnset computes the RID from the running platform via a [Detector].
	RequestUnset RequestKind = iota
	// RequestExplicit uses the RID carried by the request.
	RequestExplicit
	// RequestUnknown forces the compiled-in default chain, as for a platform
	// newer than the fallback graph data.
	RequestUnknown
)

// String returns the request kind name.
func (k RequestKind) String() string {
	switch k {
	case RequestExplicit:
		return "explicit"
	case RequestUnknown:
		return "unknown"
	default:
		return "unset"
	}
}

// Request is the requested RID of a resolution pass. The zero value is an
// unset request.
type Request struct {
	Kind RequestKind
	RID  RID // only meaningful for RequestExplicit
}

// Explicit requests resolution for r. An empty r is treated as [Unset].
func Explicit(r RID) Request {
	if r == Agnostic {
		return Unset()
	}
	return Request{Kind: RequestExplicit, RID: r}
}

// Unknown requests the compiled-in default chain.
func Unknown() Request { return Request{Kind: RequestUnknown} }

// Unset requests the RID of the running platform.
func Unset() Request { return Request{Kind: RequestUnset} }

// String describes the request.
func (r Request) String() string {
	if r.Kind == RequestExplicit {
		return string(r.RID)
	}
	return r.Kind.String()
}

// Fallback is the tagged variant describing what fallback information a
// resolution pass has: [WithGraph] or [ExactOnly]. It is sealed; no other
// implementations exist.
type Fallback interface {
	fallback()
}

// WithGraph carries a fallback graph. A nil Graph behaves as an empty one,
// so every requested RID is treated as unknown to it.
type WithGraph struct {
	Graph *Graph
}

// ExactOnly marks the absence of any fallback graph (self-contained hosting).
// Only groups whose tag exactly equals the requested RID, or agnostic groups,
// can be selected.
type ExactOnly struct{}

func (WithGraph) fallback() {}
func (ExactOnly) fallback() {}

// Context is the full resolution context: what was requested and what
// fallback information is available. A nil Fallback is treated as [ExactOnly].
type Context struct {
	Request  Request
	Fallback Fallback
}

// Detector reports the RID of the running platform. Implementations live
// outside the engine (see package platform); the engine calls Detect at most
// once per chain it builds. An empty result means the platform is unknown.
type Detector interface {
	Detect() RID
}

// DetectorFunc adapts a function to [Detector].
type DetectorFunc func() RID

// Detect calls f.
func (f DetectorFunc) Detect() RID { return f() }
