package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/closure"
)

var (
	colorAccent = lipgloss.Color("36")
	colorMet    = lipgloss.Color("35")
	colorUnmet  = lipgloss.Color("167")
	colorNote   = lipgloss.Color("220")
	colorValue  = lipgloss.Color("255")
	colorLabel  = lipgloss.Color("245")
	colorMuted  = lipgloss.Color("240")

	// Closure tiers, nearest first. Matches the edge palette of DOT output.
	depthColors = []lipgloss.Color{"33", "71", "208", "98", "167", "137"}
)

// Public styles.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorMuted)
	StyleValue     = lipgloss.NewStyle().Foreground(colorValue)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorAccent)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorNote)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorMet)
	styleIconError   = lipgloss.NewStyle().Foreground(colorUnmet)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleLabel       = lipgloss.NewStyle().Foreground(colorLabel).Width(12)
	styleUnresolved  = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	styleCached      = lipgloss.NewStyle().Foreground(colorMet)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(StyleWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(StyleDim.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line under a status line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printUnmet prints one requirement branch that still has to be completed.
func printUnmet(expr string) {
	fmt.Println("  " + styleIconError.Render(iconError) + " " + StyleValue.Render(expr))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleLabel.Render(key) + " " + StyleValue.Render(value))
}

// depthStyle colors a closure depth tier.
func depthStyle(depth int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(depthColors[depth%len(depthColors)])
}

// printTiers lists the courses of a closure grouped by depth. Courses
// missing from the catalog are shown muted.
func printTiers(res *closure.Result) {
	tiers := map[int][]string{}
	maxDepth := 0
	for _, n := range res.Nodes {
		if n.ID == res.Root || n.Type != closure.NodeCourse {
			continue
		}
		label := n.ID
		if !n.Resolved {
			label = styleUnresolved.Render(n.ID + "?")
		}
		tiers[n.Depth] = append(tiers[n.Depth], label)
		maxDepth = max(maxDepth, n.Depth)
	}
	for d := 1; d <= maxDepth; d++ {
		if len(tiers[d]) == 0 {
			continue
		}
		fmt.Println("  " + depthStyle(d).Render(fmt.Sprintf("depth %d", d)) + "  " + strings.Join(tiers[d], StyleDim.Render(", ")))
	}
}

// printStats prints node and edge counts and whether the result was cached.
func printStats(nodeCount, edgeCount int, cached bool) {
	parts := []string{
		fmt.Sprintf("%d nodes", nodeCount),
		fmt.Sprintf("%d edges", edgeCount),
	}
	status := StyleDim.Render("fresh")
	if cached {
		status = styleCached.Render("cached")
	}
	fmt.Println("  " + StyleDim.Render(strings.Join(parts, " · ")+" · ") + status)
}

func printNewline() {
	fmt.Println()
}
