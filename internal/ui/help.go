package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	// Help content
	sections := []helpSection{
		{
			title: "Navigation",
			items: []helpItem{
				{"tab/S-tab", "Popular/Nearby/Saved/Search"},
				{"S", "Saved listings"},
				{"j/k", "Move up/down"},
				{"g/G", "Go to top/bottom"},
				{"ctrl+d/u", "Half page down/up"},
				{"esc", "Back"},
			},
		},
		{
			title: "Listings",
			items: []helpItem{
				{"enter", "Open details"},
				{"b", "Save or unsave"},
				{"n", "Notes"},
				{"r", "Reviews (o to reorder)"},
				{"a", "List a room"},
				{"R", "Reload catalog"},
			},
		},
		{
			title: "Search",
			items: []helpItem{
				{"/", "Search text"},
				{"f", "Cycle type"},
				{"c", "Cycle category"},
				{"s", "Cycle sort"},
				{"[ / ]", "Lower/raise max price"},
				{"x", "Clear filters"},
			},
		},
		{
			title: "Log",
			items: []helpItem{
				{"l", "Open diagnostics log"},
				{"v", "Cycle minimum level"},
				{"Space", "Toggle follow mode"},
				{"/ n/N", "Search, next/prev match"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"T", "Cycle theme"},
				{"?", "Toggle help"},
				{"q/ctrl+c", "Quit"},
			},
		},
	}

	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning)).Width(12)
	column := func(sections []helpSection) string {
		var b strings.Builder
		for i, section := range sections {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(styles.AccentText.Bold(true).Render(section.title))
			b.WriteString("\n")
			for _, item := range section.items {
				b.WriteString(keyStyle.Render(item.key))
				b.WriteString(styles.Text.Render(item.desc))
				b.WriteString("\n")
			}
		}
		return lipgloss.NewStyle().Width(42).Render(strings.TrimRight(b.String(), "\n"))
	}

	// Two columns: navigation and listings left, search, log and general right.
	body := lipgloss.JoinHorizontal(lipgloss.Top, column(sections[:2]), "  ", column(sections[2:]))
	content := styles.Text.Bold(true).Render("Keyboard Shortcuts") + "\n" +
		styles.FaintText.Render(strings.Repeat("─", 30)) + "\n\n" + body

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Render(content)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
