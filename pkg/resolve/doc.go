// Package resolve decides which asset files of a manifest are loaded for a
// platform.
//
// # Selection
//
// [Select] is the core rule, applied independently to every (library, asset
// kind) pair: walk the candidate chain from most to least specific and take
// the first group whose RID tag matches exactly. The platform-agnostic group
// is only eligible when no specific candidate matched, so a RID-specific
// variant and its portable counterpart are never loaded together. The winning
// group is taken whole.
//
// # Orchestration
//
// [Application] builds one chain from a resolution context and applies
// [Select] across the whole manifest. [Component] resolves a hosted
// component's manifest against the chain its host already finalized; the
// [Host] value it needs can only be obtained from a completed host [Result]
// via [Result.Host], which makes the ordering between the two passes explicit.
//
// A component inherits its host's chain as is. When the host had no fallback
// graph, its chain is exact-only and the component can match nothing but the
// host's exact RID and agnostic groups, even when a real graph would have
// mapped the platform onto one of the component's tags.
//
// Resolution is pure: it performs no I/O, keeps no state between calls and
// never modifies the manifest. A library with nothing to contribute yields
// an empty contribution, recorded in [Result.Unresolved] when it declared
// groups of that kind but none matched.
package resolve
