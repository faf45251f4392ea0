package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/graphilizer/pkg/filter"
	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/normalize"
)

// =============================================================================
// Color Palette
// =============================================================================

// ANSI 256 colors; cyan marks the focus and the active timeline step.
var (
	colorCyan   = lipgloss.Color("37")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("214")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

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
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
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
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// File Output
// =============================================================================

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints graph size, layout time and cache status on one line,
// e.g. "12 nodes · 14 edges · layout 3ms · cached".
func printStats(nodeCount, edgeCount int, layoutTime time.Duration, cached bool) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)),
		StyleDim.Render(fmt.Sprintf("%d edges", edgeCount)),
	}
	if cached {
		parts = append(parts, styleCached.Render(iconCached))
	} else {
		parts = append(parts, StyleDim.Render("layout "+layoutTime.Round(time.Millisecond).String()), styleComputed.Render(iconFresh))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// =============================================================================
// Graph Reports
// =============================================================================

// maxIssues bounds the integrity issues listed after a run.
const maxIssues = 10

// printIssues lists integrity issues and cycles found while loading.
func printIssues(issues []normalize.Issue, cycles [][]string) {
	for i, is := range issues {
		if i == maxIssues {
			printDetail("… and %d more issue(s)", len(issues)-maxIssues)
			break
		}
		printWarning("%s %s: %s", is.Kind, is.Subject, is.Detail)
	}
	for _, c := range cycles {
		printWarning("cycle: %s", strings.Join(c, " "+iconArrow+" "))
	}
}

// printFocus prints the rings of a neighborhood, center first.
func printFocus(g *graph.Graph, rings [][]string) {
	for d, ring := range rings {
		labels := make([]string, len(ring))
		for i, id := range ring {
			labels[i] = id
			if n, ok := g.Node(id); ok && n.Label != "" && n.Label != id {
				labels[i] = fmt.Sprintf("%s (%s)", id, n.Label)
			}
		}
		key := "center"
		if d > 0 {
			key = fmt.Sprintf("depth %d", d)
		}
		printKeyValue(key, strings.Join(labels, ", "))
	}
}

// printSearchResults prints search hits as a table.
func printSearchResults(items []filter.Item) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("KIND", "ID", "LABEL", "TYPE", "ENDPOINTS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return StyleTitle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, it := range items {
		ends := ""
		if it.Kind == filter.KindEdge {
			ends = it.Source + " " + iconArrow + " " + it.Target
		}
		t.Row(string(it.Kind), it.ID, it.Label, it.Type, ends)
	}
	fmt.Println(t.Render())
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Utilities
// =============================================================================

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}
