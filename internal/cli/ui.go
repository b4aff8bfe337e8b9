package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/deplist/pkg/deplist"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
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

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for error entries and messages.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
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
	styleHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// headerRow is the row index lipgloss tables pass to StyleFunc for headers.
const headerRow = -1

// kindStyles colors plan entries by kind in tables.
var kindStyles = map[string]lipgloss.Style{
	deplist.KindPackage.String():          lipgloss.NewStyle().Foreground(colorGreen),
	deplist.KindAlreadyInstalled.String(): lipgloss.NewStyle().Foreground(colorGray),
	deplist.KindVirtual.String():          lipgloss.NewStyle().Foreground(colorCyan),
	deplist.KindProvided.String():         lipgloss.NewStyle().Foreground(colorCyan),
	deplist.KindSuggested.String():        lipgloss.NewStyle().Foreground(colorBlue),
	deplist.KindSubpackage.String():       lipgloss.NewStyle().Foreground(colorGreen),
	deplist.KindBlock.String():            StyleError,
	deplist.KindMasked.String():           StyleWarning,
}

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

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented dim line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Plan Display
// =============================================================================

// printStats prints plan statistics on a single line.
func printStats(w io.Writer, p *deplist.Plan, cached bool) {
	var parts []string
	parts = append(parts, fmt.Sprintf("%d entries", len(p.Entries)))
	for _, k := range []deplist.Kind{deplist.KindPackage, deplist.KindAlreadyInstalled, deplist.KindBlock, deplist.KindMasked} {
		if n := p.Count(k); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, k))
		}
	}

	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	var b strings.Builder
	b.WriteString("  ")
	for i, part := range parts {
		if i > 0 {
			b.WriteString(StyleDim.Render(" · "))
		}
		b.WriteString(StyleDim.Render(part))
	}
	b.WriteString(StyleDim.Render(" · ") + statusStyle.Render(status))
	fmt.Fprintln(w, b.String())
}

// planTable renders the plan entries as a table in merge order.
func planTable(p *deplist.Plan) *table.Table {
	rows := make([][]string, len(p.Entries))
	for i, e := range p.Entries {
		rows[i] = []string{fmt.Sprint(i + 1), e.Kind, e.Package, e.Destination, formatTags(e.Tags)}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("#", "Kind", "Package", "Destination", "Tags").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader.Padding(0, 1)
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col == 1 && row >= 0 && row < len(p.Entries) {
				if s, ok := kindStyles[p.Entries[row].Kind]; ok {
					return s.Padding(0, 1)
				}
			}
			if col == 0 || col == 4 {
				return base.Foreground(colorDim)
			}
			return base
		})
}

func formatTags(tags []deplist.PlanTag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		if t.Name == "" {
			parts[i] = t.Kind
		} else {
			parts[i] = t.Kind + ":" + t.Name
		}
	}
	return strings.Join(parts, ", ")
}
