package resolve

import (
	"slices"

	"github.com/matzehuels/ridasset/pkg/manifest"
	"github.com/matzehuels/ridasset/pkg/rid"
)

// Selection is the group chosen for one library and asset kind.
type Selection struct {
	// Tier is the RID tag of the winning group, or rid.Agnostic.
	Tier rid.RID
	// Rank is the position of Tier in the candidate list. Lower is more
	// specific.
	Rank   int
	Assets []string
}

// Select picks the best group for one library and one asset kind.
//
// Candidates are walked in order and the first group whose tag equals the
// candidate wins. The agnostic group is considered after every specific
// candidate, whether or not candidates lists rid.Agnostic, and only if none of
// them matched. Select reports false when nothing matches.
func Select(groups []manifest.AssetGroup, candidates []rid.RID) (Selection, bool) {
	rank := 0
	for _, c := range candidates {
		if c == rid.Agnostic {
			continue
		}
		if g, ok := find(groups, c); ok {
			return Selection{Tier: c, Rank: rank, Assets: slices.Clone(g.Assets)}, true
		}
		rank++
	}
	if g, ok := find(groups, rid.Agnostic); ok {
		return Selection{Tier: rid.Agnostic, Rank: rank, Assets: slices.Clone(g.Assets)}, true
	}
	return Selection{}, false
}

func find(groups []manifest.AssetGroup, tag rid.RID) (manifest.AssetGroup, bool) {
	for _, g := range groups {
		if g.RID == tag && len(g.Assets) > 0 {
			return g, true
		}
	}
	return manifest.AssetGroup{}, false
}
