package rid

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// DOTOptions configures [Graph.DOT].
type DOTOptions struct {
	// Highlight fills the nodes of this chain so a selected path stands out.
	Highlight *Chain
}

// DOT returns a Graphviz DOT rendering of the graph. Each declared fallback
// list is drawn as a path r -> f1 -> f2 ..., so shared tails such as
// "unix" -> "any" -> "base" collapse into one edge. Declaration order
// determines node and edge order, so output is deterministic.
func (g *Graph) DOT(opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph RIDs {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"SF Mono, Menlo, monospace\", fontsize=14];\n\n")

	highlighted := make(map[RID]bool)
	if opts.Highlight != nil {
		for _, r := range opts.Highlight.Tiers {
			highlighted[r] = true
		}
	}

	seenNode := make(map[RID]bool)
	writeNode := func(r RID) {
		if seenNode[r] {
			return
		}
		seenNode[r] = true
		if highlighted[r] {
			fmt.Fprintf(&buf, "  %q [fillcolor=\"#b7e4c7\"];\n", string(r))
			return
		}
		fmt.Fprintf(&buf, "  %q;\n", string(r))
	}

	for _, e := range g.Entries() {
		writeNode(e.RID)
		for _, f := range e.Fallbacks {
			if f != Agnostic {
				writeNode(f)
			}
		}
	}

	buf.WriteString("\n")
	type edge struct{ from, to RID }
	seenEdge := make(map[edge]bool)
	for _, e := range g.Entries() {
		path := tiers(e.RID, e.Fallbacks)
		for i := 0; i+1 < len(path); i++ {
			ed := edge{path[i], path[i+1]}
			if seenEdge[ed] {
				continue
			}
			seenEdge[ed] = true
			fmt.Fprintf(&buf, "  %q -> %q;\n", string(ed.from), string(ed.to))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders DOT source to SVG using Graphviz in-process.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
