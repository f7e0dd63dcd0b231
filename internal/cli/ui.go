package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/ridasset/pkg/pipeline"
	"github.com/matzehuels/ridasset/pkg/resolve"
	"github.com/matzehuels/ridasset/pkg/rid"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printWarning prints a warning message.
func printWarning(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printDetail prints a detail line (indented).
func printDetail(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, "  "+StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Result Rendering
// =============================================================================

// renderChain formats a chain as "a → b → (agnostic)".
func renderChain(c rid.Chain) string {
	parts := make([]string, 0, len(c.Tiers)+1)
	for _, r := range c.Tiers {
		parts = append(parts, StyleHighlight.Render(string(r)))
	}
	parts = append(parts, StyleDim.Render("(agnostic)"))
	return strings.Join(parts, StyleDim.Render(" "+iconArrow+" "))
}

// printChain prints a chain with its source.
func printChain(w io.Writer, c rid.Chain) {
	requested := string(c.Requested)
	if requested == "" {
		requested = "(unknown platform)"
	}
	printKeyValue(w, "Requested", requested)
	printKeyValue(w, "Source", c.Source.String())
	fmt.Fprintln(w, lipgloss.NewStyle().Foreground(colorGray).Width(12).Render("Chain")+" "+renderChain(c))
	if c.UsedDefault {
		printWarning(w, "used fallback RID: the compiled-in default chain was applied")
	}
}

// printResult prints a pipeline result as styled text.
func printResult(w io.Writer, res *pipeline.Result) {
	fmt.Fprintln(w, StyleTitle.Render("Application"))
	printResolution(w, res.Application)

	for _, comp := range res.Components {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleTitle.Render("Component "+comp.Name))
		printResolution(w, comp.Result)
	}

	status, style := iconFresh, styleComputed
	if res.CacheInfo.ResultHit {
		status, style = iconCached, styleCached
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  "+style.Render(status))
}

func printResolution(w io.Writer, r resolve.Result) {
	printChain(w, r.Chain)

	printSection(w, "Assemblies", r.Assemblies)
	printSection(w, "Native", r.NativeLibraries)

	if len(r.Contributions) > 0 {
		fmt.Fprintln(w, StyleDim.Render("Tiers"))
		for _, c := range r.Contributions {
			printDetail(w, "%s %s %s", c.Library, c.Kind, c.Tier)
		}
	}
	for _, u := range r.Unresolved {
		tags := make([]string, 0, len(u.Tags))
		for _, t := range u.Tags {
			tags = append(tags, t.String())
		}
		printWarning(w, "%s: no %s group matches the chain (declared: %s)", u.Library, u.Kind, strings.Join(tags, ", "))
	}
}

func printSection(w io.Writer, title string, assets []string) {
	fmt.Fprintf(w, "%s %s\n", StyleDim.Render(title), StyleDim.Render(fmt.Sprintf("(%d)", len(assets))))
	for _, a := range assets {
		printFile(w, a)
	}
}
