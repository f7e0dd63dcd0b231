package rid

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewGraphErrors(t *testing.T) {
	if _, err := NewGraph(Entry{RID: ""}); !errors.Is(err, ErrEmptyRID) {
		t.Errorf("NewGraph(empty) error = %v, want ErrEmptyRID", err)
	}
	if _, err := NewGraph(Entry{RID: "a"}, Entry{RID: "a"}); !errors.Is(err, ErrDuplicateRID) {
		t.Errorf("NewGraph(dup) error = %v, want ErrDuplicateRID", err)
	}
}

func TestGraphIsImmutable(t *testing.T) {
	fallbacks := []RID{"linux", "unix"}
	g := MustGraph(Entry{RID: "linux-x64", Fallbacks: fallbacks})

	fallbacks[0] = "mutated"
	got := g.Fallbacks("linux-x64")
	if got[0] != "linux" {
		t.Errorf("graph observed caller mutation: %v", got)
	}

	got[1] = "mutated"
	if g.Fallbacks("linux-x64")[1] != "unix" {
		t.Error("Fallbacks() returned shared storage")
	}
}

func TestGraphPreservesOrder(t *testing.T) {
	g := MustGraph(Entry{RID: "c"}, Entry{RID: "a"}, Entry{RID: "b"})
	if diff := cmp.Diff([]RID{"c", "a", "b"}, g.RIDs()); diff != "" {
		t.Errorf("RIDs() mismatch (-want +got):\n%s", diff)
	}
	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3", g.Len())
	}
}

func TestNilGraph(t *testing.T) {
	var g *Graph
	if g.Has("a") || g.Fallbacks("a") != nil || g.RIDs() != nil || g.Len() != 0 {
		t.Error("nil graph should behave as empty")
	}
}

func TestDefaultFallbacksTerminate(t *testing.T) {
	for _, e := range DefaultFallbacks.Entries() {
		if len(e.Fallbacks) == 0 || e.Fallbacks[len(e.Fallbacks)-1] != "base" {
			t.Errorf("%s: default chain should end in base, got %v", e.RID, e.Fallbacks)
		}
	}
}

func TestGraphDOT(t *testing.T) {
	g := MustGraph(
		Entry{RID: "linux-x64", Fallbacks: []RID{"linux", "unix", "any"}},
		Entry{RID: "osx-x64", Fallbacks: []RID{"osx", "unix", "any"}},
	)
	chain := BuildChain(Context{Request: Explicit("linux-x64"), Fallback: WithGraph{Graph: g}}, nil)
	dot := g.DOT(DOTOptions{Highlight: &chain})

	for _, want := range []string{
		"digraph RIDs {",
		`"linux-x64" -> "linux";`,
		`"osx" -> "unix";`,
		`"linux-x64" [fillcolor="#b7e4c7"];`,
		`"osx-x64";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if n := strings.Count(dot, `"unix" -> "any";`); n != 1 {
		t.Errorf("shared edge unix -> any written %d times, want 1", n)
	}
}
