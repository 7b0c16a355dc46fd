package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the top bar: logo, tabs with counts, active
// filters and a transient status message.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth
	sep := bg.Spaces(2)

	parts := []string{bg.Render("flatmatch", styles.Logo)}

	for _, v := range listViews {
		label := v.String()
		if v != ViewSearch && m.catalog != nil {
			label = fmt.Sprintf("%s %d", label, len(m.listItems(v)))
		}
		style := styles.MutedText
		if v == m.listView {
			style = styles.AccentText.Bold(true)
			if m.currentView == v {
				label = "[" + label + "]"
			}
		}
		parts = append(parts, bg.Render(label, style))
	}

	if !m.currentView.isList() {
		parts = append(parts, bg.Render("› "+m.currentView.String(), styles.Text.Bold(true)))
	}

	if summary := filterSummary(m.filters); summary != "" && !compact {
		parts = append(parts, bg.Render(truncate(summary, 40), styles.InfoText))
	}

	if text := m.activeStatus(); text != "" {
		style := styles.SuccessText
		if m.status.isErr {
			style = styles.DangerText.Bold(true)
		}
		parts = append(parts, bg.Render(truncate(text, max(m.width/3, 20)), style))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		MaxWidth(m.width).
		Render(strings.Join(parts, sep))
}

// activeStatus returns the status message while it is fresh.
func (m Model) activeStatus() string {
	if m.status.text == "" || m.now().Sub(m.status.at) > StatusTTL {
		return ""
	}
	return m.status.text
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.modal != nil:
		commands = []cmd{
			{"Tab", "Next"},
			{"Ctrl+S", "Submit"},
			{"Esc", "Cancel"},
		}
	case m.currentView == ViewDetail:
		commands = []cmd{
			{"b", "Save"},
			{"n", "Notes"},
			{"r", "Reviews"},
			{"j/k", "Scroll"},
			{"Esc", "Back"},
			{"?", "More"},
		}
	case m.currentView == ViewNotes:
		commands = []cmd{
			{"a", "Add"},
			{"e", "Edit"},
			{"d", "Delete"},
			{"j/k", "Navigate"},
			{"Esc", "Back"},
		}
	case m.currentView == ViewReviews:
		commands = []cmd{
			{"o", m.reviewsState.order.String()},
			{"j/k", "Scroll"},
			{"Esc", "Back"},
		}
	case m.currentView == ViewLogs:
		commands = []cmd{
			{"Space", ternary(m.logState.follow, "Pause", "Follow")},
			{"v", "Level"},
			{"/", "Search"},
			{"n/N", "Next/Prev"},
			{"Esc", "Back"},
		}
	default:
		commands = []cmd{
			{"Enter", "Open"},
			{"b", "Save"},
			{"/", "Search"},
			{"f", "Type"},
			{"s", m.filters.Sort.String()},
			{"[/]", "Max price"},
			{"Tab", "Lists"},
			{"a", "List a room"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).MaxWidth(m.width).Render(strings.Join(segments, sep))
}
