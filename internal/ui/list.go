package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/flatmatch/internal/listing"
	"github.com/five82/flatmatch/internal/view"
)

// reload re-reads the active list from the catalog. Selection follows the
// previously selected listing when it is still present.
func (m *Model) reload() {
	m.items = m.listItems(m.listView)
	if len(m.items) == 0 {
		m.selectedRow = 0
		return
	}
	if m.selectedID != "" {
		for i, l := range m.items {
			if l.ID == m.selectedID {
				m.selectedRow = i
				return
			}
		}
	}
	m.selectedRow = min(max(m.selectedRow, 0), len(m.items)-1)
	if m.currentView.isList() {
		m.selectedID = m.items[m.selectedRow].ID
	}
}

func (m Model) listItems(v View) []listing.Listing {
	if m.catalog == nil {
		return nil
	}
	switch v {
	case ViewPopular:
		return m.catalog.Popular()
	case ViewNearby:
		return m.catalog.Nearby()
	case ViewSaved:
		return m.catalog.Saved()
	case ViewSearch:
		return view.Apply(m.catalog.All(), m.filters)
	default:
		return nil
	}
}

// handleListKey processes navigation keys for the list views.
func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	count := len(m.items)
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < count-1 {
			m.selectedRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = max(count-1, 0)
	case key.Matches(msg, m.keys.HalfPageDown), key.Matches(msg, m.keys.PageDown):
		m.selectedRow = min(m.selectedRow+m.listRows()/2, max(count-1, 0))
	case key.Matches(msg, m.keys.HalfPageUp), key.Matches(msg, m.keys.PageUp):
		m.selectedRow = max(m.selectedRow-m.listRows()/2, 0)
	default:
		return nil, false
	}
	if m.selectedRow < count {
		m.selectedID = m.items[m.selectedRow].ID
	}
	return nil, true
}

// updateFilters applies change to the search filters, switches to the
// search results and remembers the search in prefs.
func (m *Model) updateFilters(change func(*view.Filters)) {
	change(&m.filters)
	if m.listView != ViewSearch {
		m.selectedRow = 0
		m.selectedID = ""
	}
	m.listView = ViewSearch
	m.currentView = ViewSearch
	m.reload()
	m.savePrefs()
}

// handleSearchInput handles keyboard input while the search box is open.
func (m *Model) handleSearchInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		query := strings.TrimSpace(m.searchInput.Value())
		m.searchActive = false
		m.searchInput.Blur()
		m.updateFilters(func(f *view.Filters) { f.Query = query })
		return nil

	case key.Matches(msg, m.keys.Cancel):
		m.searchActive = false
		m.searchInput.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return cmd
}

func nextType(t listing.Type) listing.Type {
	types := listing.Types()
	for i, candidate := range types {
		if candidate == t {
			if i+1 < len(types) {
				return types[i+1]
			}
			return ""
		}
	}
	return types[0]
}

func nextCategory(c string) string {
	cats := view.Categories()
	for i, candidate := range cats {
		if candidate == c {
			if i+1 < len(cats) {
				return cats[i+1]
			}
			return ""
		}
	}
	return cats[0]
}

// lowerMaxPrice tightens the price cap; no cap starts at maxPriceStart.
func lowerMaxPrice(p *int) *int {
	if p == nil {
		return listing.Int(maxPriceStart)
	}
	return listing.Int(max(*p-maxPriceStep, maxPriceStep))
}

// raiseMaxPrice loosens the price cap, removing it past maxPriceCap.
func raiseMaxPrice(p *int) *int {
	if p == nil {
		return nil
	}
	next := *p + maxPriceStep
	if next > maxPriceCap {
		return nil
	}
	return listing.Int(next)
}

// filterSummary describes the active filters in one line.
func filterSummary(f view.Filters) string {
	var parts []string
	if q := strings.TrimSpace(f.Query); q != "" {
		parts = append(parts, fmt.Sprintf("%q", q))
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		parts = append(parts, "in "+loc)
	}
	if f.Type != "" {
		parts = append(parts, f.Type.Label())
	}
	if f.Category != "" {
		parts = append(parts, f.Category)
	}
	switch {
	case f.MinPrice != nil && f.MaxPrice != nil:
		parts = append(parts, fmt.Sprintf("$%d-$%d", *f.MinPrice, *f.MaxPrice))
	case f.MinPrice != nil:
		parts = append(parts, fmt.Sprintf("≥ $%d", *f.MinPrice))
	case f.MaxPrice != nil:
		parts = append(parts, fmt.Sprintf("≤ $%d", *f.MaxPrice))
	}
	return strings.Join(parts, " · ")
}

// listRows is the number of rows visible inside the list box.
func (m Model) listRows() int {
	rows := m.contentHeight() - 2
	if m.searchActive {
		rows--
	}
	return max(rows, 1)
}

// renderLists renders the active list with a preview of the selected
// listing when the terminal is wide enough.
func (m Model) renderLists() string {
	styles := m.theme.Styles()
	height := m.contentHeight()

	var search string
	if m.searchActive {
		search = styles.Surface.Width(m.width).Render(m.searchInput.View())
		height--
	}

	listWidth := m.width
	showPreview := m.width >= LayoutSplitWidth
	if showPreview {
		if m.width >= LayoutExtraWideWidth {
			listWidth = m.width * 45 / 100
		} else {
			listWidth = m.width * 55 / 100
		}
	}

	var listContent string
	if len(m.items) == 0 {
		listContent = NewBgStyle(m.theme.FocusBg).Render(m.emptyListMessage(), styles.MutedText)
	} else {
		listContent = m.renderListRows(listWidth-2, m.theme.FocusBg)
	}
	out := m.renderTitledBox(m.listTitle(), listContent, listWidth, height, true)

	if showPreview {
		previewWidth := m.width - listWidth
		var preview string
		if l, ok := m.currentListing(); ok {
			preview = m.renderListingDetail(l, previewWidth-4, m.theme.SurfaceAlt, false)
		}
		out = lipgloss.JoinHorizontal(lipgloss.Top, out,
			m.renderTitledBox("Preview", preview, previewWidth, height, false))
	}
	if search != "" {
		out = search + "\n" + out
	}
	return out
}

func (m Model) emptyListMessage() string {
	switch m.listView {
	case ViewSaved:
		return "No saved listings yet. Press b on a listing to save it."
	case ViewSearch:
		return "No listings match. Press x to clear filters."
	default:
		return "No listings"
	}
}

// listTitle returns the list pane title with counts and filters.
func (m Model) listTitle() string {
	title := fmt.Sprintf("%s (%d)", m.listView, len(m.items))
	if m.listView == ViewSearch {
		if summary := filterSummary(m.filters); summary != "" {
			title += " " + summary
		}
		if m.filters.Sort != view.Relevance {
			title += " · " + m.filters.Sort.String()
		}
	}
	return title
}

// renderListRows renders the visible window of rows, keeping the
// selection on screen.
func (m Model) renderListRows(width int, bgColor string) string {
	rows := m.listRows()
	start := 0
	if m.selectedRow >= rows {
		start = m.selectedRow - rows + 1
	}
	end := min(start+rows, len(m.items))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		selected := i == m.selectedRow
		rowBg := bgColor
		if selected {
			rowBg = m.theme.SelectionBg
		}
		content := m.formatListingRow(m.items[i], width, rowBg, selected)
		lines = append(lines, lipgloss.NewStyle().
			Background(lipgloss.Color(rowBg)).
			Width(width).
			Render(content))
	}
	return strings.Join(lines, "\n")
}

// formatListingRow formats one listing row with inline colors.
// Format: "♥ Title · $420/wk · 1BR · 1.0 km"
// Selected rows use SelectionText for every part to keep contrast.
func (m Model) formatListingRow(l listing.Listing, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)

	meta := []string{l.Price}
	if l.Type != "" {
		meta = append(meta, string(l.Type))
	}
	if d := formatDistance(l.Distance); d != "" {
		meta = append(meta, d)
	}
	if l.Rating != nil {
		meta = append(meta, fmt.Sprintf("★%.1f", *l.Rating))
	}
	metaStr := strings.Join(nonEmpty(meta), " · ")

	mark := "  "
	if l.Saved {
		mark = "♥ "
	}
	titleWidth := max(width-len([]rune(metaStr))-len([]rune(mark))-3, 10)

	var markStyle, titleStyle, sepStyle, metaStyle lipgloss.Style
	if selected {
		selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		markStyle, titleStyle, sepStyle, metaStyle = selText, selText.Bold(true), selText, selText
	} else {
		styles := m.theme.Styles()
		markStyle = styles.DangerText
		titleStyle = styles.Text
		sepStyle = styles.FaintText
		metaStyle = styles.MutedText
	}

	row := bg.Render(mark, markStyle) + bg.Render(truncate(l.Title, titleWidth), titleStyle)
	if metaStr != "" {
		row += bg.Render(" · ", sepStyle) + bg.Render(metaStr, metaStyle)
	}
	return row
}

func nonEmpty(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// renderTitledBox renders content in a box with the title embedded in the
// top border: ┌─── Title ───┐. Focused boxes use the focus border and
// background.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 1)
	title = truncate(title, max(innerWidth-4, 1))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColorStr))
	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	paddedLines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		paddedLines = append(paddedLines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(paddedLines, "\n") + "\n" + bottomBorder
}
