// Package rid models runtime identifiers (RIDs) and the fallback graph that
// orders them from most to least specific.
//
// A RID is an opaque token such as "linux-x64" or "win10-x86". Two RIDs are
// equal only when their strings are equal; this package never parses them.
//
// # Fallback Graph
//
// A [Graph] maps a RID to its declared, ordered list of compatible but less
// specific RIDs. It is usually read from the "runtimes" section of a
// dependency manifest:
//
//	"runtimes": {
//	  "linux-x64": ["linux", "unix-x64", "unix", "any", "base"]
//	}
//
// # Chains
//
// [BuildChain] turns a resolution [Context] into a [Chain], the ordered list
// of candidates an asset selector walks. Every chain ends with [Agnostic], the
// sentinel that matches asset groups carrying no RID at all.
//
// The Context carries a [Request] (explicit RID, unknown, or unset) and a
// [Fallback] variant:
//
//   - [WithGraph]: a fallback graph is available and drives the chain.
//   - [ExactOnly]: no graph exists (self-contained hosting). The chain is the
//     requested RID followed by Agnostic, with no intermediate tiers.
//
// Unknown requests, and explicit RIDs the graph does not know, fall back to a
// compiled-in table ([DefaultFallbacks]). An explicit RID listed in the table
// uses its own default chain; otherwise the table is keyed by the RID a
// [Detector] reports for the running platform. The resulting chain has
// UsedDefault set, which callers surface as an informational trace.
//
// # Visualization
//
// [Graph.DOT] renders a graph as Graphviz DOT and [RenderSVG] converts DOT to
// SVG in-process.
package rid
