package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/deplist/pkg/archive"
	"github.com/matzehuels/deplist/pkg/deplist"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PlanBrowserModel - Interactive merge list browser
// =============================================================================

// PlanBrowserModel is the bubbletea model for browsing a resolved plan.
// Enter toggles the detail pane of the current entry; e restricts the list
// to error entries (blocks and masked packages).
type PlanBrowserModel struct {
	Plan       *deplist.Plan
	Cursor     int
	Offset     int
	Height     int
	ErrorsOnly bool
	Detail     bool

	visible []int // indices into Plan.Entries
}

// NewPlanBrowserModel creates a browser over p.
func NewPlanBrowserModel(p *deplist.Plan) PlanBrowserModel {
	m := PlanBrowserModel{Plan: p, Height: 15}
	m.filter()
	return m
}

func (m *PlanBrowserModel) filter() {
	m.visible = m.visible[:0]
	for i, e := range m.Plan.Entries {
		if m.ErrorsOnly {
			if k, ok := deplist.ParseKind(e.Kind); !ok || !k.IsError() {
				continue
			}
		}
		m.visible = append(m.visible, i)
	}
	m.Cursor, m.Offset = 0, 0
}

// Current returns the entry under the cursor, or nil if the list is empty.
func (m PlanBrowserModel) Current() *deplist.PlanEntry {
	if m.Cursor >= len(m.visible) {
		return nil
	}
	return &m.Plan.Entries[m.visible[m.Cursor]]
}

func (m PlanBrowserModel) Init() tea.Cmd {
	return nil
}

func (m PlanBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "enter":
			m.Detail = !m.Detail
		case "e":
			m.ErrorsOnly = !m.ErrorsOnly
			m.filter()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
	}
	return m, nil
}

func (m *PlanBrowserModel) move(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.visible)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m PlanBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Merge List"))
	if len(m.Plan.Targets) > 0 {
		b.WriteString(listDimStyle.Render("  " + strings.Join(m.Plan.Targets, " ")))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  e errors only  q quit"))
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(listDimStyle.Render("  no entries"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.visible))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		idx := m.visible[i]
		e := m.Plan.Entries[idx]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, fmt.Sprint(idx + 1), e.Kind, e.Package, e.Destination})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Kind", "Package", "Destination").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			i := m.Offset + row
			if i >= len(m.visible) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if s, ok := kindStyles[m.Plan.Entries[m.visible[i]].Kind]; ok && col == 2 {
				base = s
			} else if col == 1 || col == 4 {
				base = base.Foreground(colorDim)
			}
			if i == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.visible))))
	b.WriteString("\n")

	if m.Detail {
		b.WriteString("\n")
		b.WriteString(describeEntry(*m.Current()))
	}
	return b.String()
}

// describeEntry renders the detail pane of an entry.
func describeEntry(e deplist.PlanEntry) string {
	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(e.Package))
	b.WriteString("\n")
	field := func(name, value string) {
		if value == "" {
			return
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", listDimStyle.Render(fmt.Sprintf("%-12s", name)), listNormalStyle.Render(value)))
	}
	field("kind", e.Kind)
	field("destination", e.Destination)
	field("associated", e.Associated)
	for _, t := range e.Tags {
		field(t.Kind, t.Name)
	}
	return b.String()
}

// =============================================================================
// PlanPickerModel - Interactive archived plan selection
// =============================================================================

// PlanPickerModel is the bubbletea model for picking an archived plan.
type PlanPickerModel struct {
	Plans    []archive.Summary
	Cursor   int
	Selected *archive.Summary
	now      func() time.Time
}

// NewPlanPickerModel creates a picker over plans, newest first.
func NewPlanPickerModel(plans []archive.Summary) PlanPickerModel {
	return PlanPickerModel{Plans: plans, now: time.Now}
}

func (m PlanPickerModel) Init() tea.Cmd {
	return nil
}

func (m PlanPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Plans)-1 {
				m.Cursor++
			}
		case "enter":
			if len(m.Plans) > 0 {
				s := m.Plans[m.Cursor]
				m.Selected = &s
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m PlanPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Plan"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  enter: select  q: quit"))
	b.WriteString("\n\n")

	for i, p := range m.Plans {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}
		status := StyleSuccess.Render("*")
		if p.HasErrors {
			status = StyleError.Render("!")
		}
		line := fmt.Sprintf("%s%s %-30s %4d entries  %s", cursor, status,
			truncate(strings.Join(p.Targets, " "), 30), p.Entries,
			listDimStyle.Render(formatRelativeTime(m.now(), p.CreatedAt)))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(strings.Repeat("-", 40)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s resolved   %s has errors\n",
		StyleSuccess.Render("*"), StyleError.Render("!")))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(now, t time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
