package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/flatmatch/internal/listing"
)

// updateDetailViewport re-renders the open listing into the viewport.
func (m *Model) updateDetailViewport() {
	if !m.ready {
		return
	}
	m.detailViewport.Width = max(m.width-4, 1)
	m.detailViewport.Height = max(m.contentHeight()-2, 1)
	m.detailViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	if m.currentView != ViewDetail {
		return
	}
	l, ok := m.currentListing()
	if !ok {
		m.detailViewport.SetContent(NewBgStyle(m.theme.FocusBg).Render("Listing no longer available", m.theme.Styles().MutedText))
		return
	}
	m.detailViewport.SetContent(m.renderListingDetail(l, m.detailViewport.Width, m.theme.FocusBg, true))
}

func (m Model) renderDetail() string {
	title := "Details"
	if l, ok := m.currentListing(); ok {
		title = l.Title
	}
	return m.renderTitledBox(title, m.detailViewport.View(), m.width, m.contentHeight(), true)
}

// handleDetailKey scrolls the detail pane.
func (m *Model) handleDetailKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.detailViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.detailViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Top):
		m.detailViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.detailViewport.GotoBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.detailViewport.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.detailViewport.HalfPageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.detailViewport.PageDown()
	case key.Matches(msg, m.keys.PageUp):
		m.detailViewport.PageUp()
	default:
		return nil, false
	}
	return nil, true
}

// renderListingDetail renders a listing for the preview pane or, with
// full set, the detail view including flatmates, gallery and contact.
func (m Model) renderListingDetail(l listing.Listing, width int, bgColor string, full bool) string {
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles().WithBackground(bgColor)
	var lines []string
	add := func(s string) { lines = append(lines, s) }

	add(bg.Render(truncate(l.Title, width), styles.Text.Bold(true)))
	if where := strings.Join(nonEmpty([]string{l.Subtitle, l.Location}), " · "); where != "" {
		add(bg.Render(truncate(where, width), styles.MutedText))
	}
	add("")

	chips := []string{bg.Render(l.Price, styles.AccentText.Bold(true))}
	if l.Type != "" {
		chips = append(chips, styles.BadgeStyle(string(l.Type)).Render(l.Type.Label()))
	}
	if l.Badge != "" {
		chips = append(chips, styles.BadgeStyle(l.Badge).Render(l.Badge))
	}
	if l.Saved {
		chips = append(chips, styles.BadgeStyle("saved").Render("♥ Saved"))
	}
	add(strings.Join(chips, bg.Space()))

	if l.Rating != nil {
		add(bg.Render(stars(*l.Rating), styles.WarningText) + bg.Space() +
			bg.Render(fmt.Sprintf("%.1f (%d reviews)", *l.Rating, l.Reviews()), styles.MutedText))
	}
	if d := formatDistance(l.Distance); d != "" {
		add(m.detailField(bg, styles, "Distance", d))
	}

	if desc := strings.TrimSpace(l.Description); desc != "" {
		add("")
		wrapped := lipgloss.NewStyle().Width(max(width, 10)).Render(desc)
		for _, line := range strings.Split(wrapped, "\n") {
			add(bg.Render(strings.TrimRight(line, " "), styles.Text))
		}
	}

	if len(l.Flatmates) > 0 {
		add("")
		add(bg.Render(fmt.Sprintf("Flatmates (%d)", len(l.Flatmates)), styles.MutedText.Bold(true)))
		for _, f := range l.Flatmates {
			line := bg.Spaces(2) + bg.Render(padRight(f.Initials(), 3), styles.AccentText) +
				bg.Render(f.Name, styles.Text)
			if f.Verified {
				line += bg.Space() + bg.Render("✓", styles.SuccessText)
			}
			if full && f.Bio != "" {
				line += bg.Render(" · ", styles.FaintText) +
					bg.Render(truncate(f.Bio, max(width-len([]rune(f.Name))-12, 10)), styles.MutedText)
			}
			add(line)
		}
	}

	if !full {
		return m.fillLines(lines, bg, width)
	}

	add("")
	switch n := len(l.Images); {
	case n == 0:
		add(m.detailField(bg, styles, "Gallery", "no photos yet"))
	default:
		add(m.detailField(bg, styles, "Gallery", fmt.Sprintf("%d photo%s, first %s", n, ternary(n == 1, "", "s"), truncateMiddle(filepath.Base(l.Images[0]), 40))))
	}
	if l.ContactEmail != "" {
		add(m.detailField(bg, styles, "Contact", l.ContactEmail))
	}
	if l.ExternalURL != "" && l.ExternalURL != "#" {
		add(m.detailField(bg, styles, "Link", truncateMiddle(l.ExternalURL, max(width-10, 10))))
	}
	if m.notes != nil {
		add(m.detailField(bg, styles, "Notes", fmt.Sprintf("%d · press n", m.notes.Count(l.ID))))
	}
	return m.fillLines(lines, bg, width)
}

func (m Model) detailField(bg BgStyle, styles Styles, label, value string) string {
	return bg.Render(padRight(label, 10), styles.FaintText) + bg.Render(value, styles.Text)
}

func (m Model) fillLines(lines []string, bg BgStyle, width int) string {
	for i, line := range lines {
		lines[i] = bg.FillLine(line, width)
	}
	return strings.Join(lines, "\n")
}
