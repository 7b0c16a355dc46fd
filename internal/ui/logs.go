package ui

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/flatmatch/internal/logtail"
)

// logLevels is the cycle for the level filter.
var logLevels = []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}

// logState holds all log-related state.
type logState struct {
	entries  []logtail.Entry
	minLevel slog.Level
	follow   bool
	ticking  bool
	err      error
	loadedAt time.Time

	// Search
	searchActive   bool
	searchQuery    string
	searchRegex    *regexp.Regexp
	searchInput    textinput.Model
	searchMatches  []int // indices into the visible entries
	searchMatchIdx int
}

type logsLoadedMsg struct {
	entries []logtail.Entry
	err     error
}

type logTickMsg time.Time

// openLogs switches to the log view, reads the log and starts the follow
// ticker if it is not already running.
func (m *Model) openLogs() tea.Cmd {
	if m.currentView != ViewLogs {
		m.returnTo = m.currentView
	}
	m.currentView = ViewLogs
	if m.logState.searchInput.Prompt == "" {
		ti := textinput.New()
		ti.Placeholder = "Search log..."
		ti.Prompt = "/"
		ti.CharLimit = 100
		m.logState.searchInput = ti
	}
	cmds := []tea.Cmd{m.tailLogsCmd()}
	if !m.logState.ticking {
		m.logState.ticking = true
		cmds = append(cmds, logTickCmd())
	}
	return tea.Batch(cmds...)
}

func logTickCmd() tea.Cmd {
	return tea.Tick(LogRefreshInterval, func(t time.Time) tea.Msg {
		return logTickMsg(t)
	})
}

func (m Model) tailLogsCmd() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		if path == "" {
			return logsLoadedMsg{}
		}
		entries, err := logtail.Tail(path, LogTailLines)
		return logsLoadedMsg{entries: entries, err: err}
	}
}

// handleLogTick re-reads the log while the view is open and following.
// Leaving the view stops the ticker.
func (m *Model) handleLogTick() tea.Cmd {
	if m.currentView != ViewLogs {
		m.logState.ticking = false
		return nil
	}
	if !m.logState.follow {
		return logTickCmd()
	}
	return tea.Batch(m.tailLogsCmd(), logTickCmd())
}

func (m *Model) handleLogsLoaded(msg logsLoadedMsg) {
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.entries = msg.entries
		m.logState.loadedAt = m.now()
	}
	m.findSearchMatches()
	m.updateLogViewport()
}

// visibleEntries applies the level filter.
func (m Model) visibleEntries() []logtail.Entry {
	return logtail.Filter(m.logState.entries, m.logState.minLevel)
}

func nextLogLevel(l slog.Level) slog.Level {
	for i, lvl := range logLevels {
		if lvl == l {
			return logLevels[(i+1)%len(logLevels)]
		}
	}
	return slog.LevelInfo
}

// handleLogsKey processes keyboard input for the log view.
func (m *Model) handleLogsKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.logState.searchActive {
		return m.handleLogSearchInput(msg), true
	}

	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
			return m.tailLogsCmd(), true
		}

	case key.Matches(msg, m.keys.CycleLogLevel):
		m.logState.minLevel = nextLogLevel(m.logState.minLevel)
		m.findSearchMatches()
		m.updateLogViewport()

	case key.Matches(msg, m.keys.Search):
		m.logState.searchActive = true
		m.logState.searchInput.SetValue("")
		return m.logState.searchInput.Focus(), true

	case msg.String() == "n":
		m.stepSearchMatch(1)

	case msg.String() == "N":
		m.stepSearchMatch(-1)

	case key.Matches(msg, m.keys.Cancel):
		if m.logState.searchRegex == nil {
			return nil, false
		}
		m.clearLogSearch()
		m.updateLogViewport()

	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.logState.follow = false

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logState.follow = true

	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.logState.follow = false

	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.logState.follow = false

	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
		m.logState.follow = false

	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
		m.logState.follow = false

	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.PageDown()
		m.logState.follow = false

	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.PageUp()
		m.logState.follow = false

	default:
		return nil, false
	}
	return nil, true
}

// handleLogSearchInput handles keyboard input during log search.
func (m *Model) handleLogSearchInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		query := m.logState.searchInput.Value()
		if query == "" {
			m.logState.searchActive = false
			m.logState.searchInput.Blur()
			return nil
		}
		re, err := regexp.Compile("(?i)" + query)
		if err != nil {
			// Invalid regex - stay in search mode
			return nil
		}
		m.logState.searchRegex = re
		m.logState.searchQuery = query
		m.logState.searchActive = false
		m.logState.searchInput.Blur()
		m.logState.follow = false
		m.findSearchMatches()
		m.updateLogViewport()
		m.scrollToSearchMatch()
		return nil

	case key.Matches(msg, m.keys.Cancel):
		m.logState.searchActive = false
		m.logState.searchInput.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.logState.searchInput, cmd = m.logState.searchInput.Update(msg)
	return cmd
}

func (m *Model) clearLogSearch() {
	m.logState.searchRegex = nil
	m.logState.searchQuery = ""
	m.logState.searchMatches = nil
	m.logState.searchMatchIdx = 0
}

func (m *Model) findSearchMatches() {
	m.logState.searchMatches = nil
	if m.logState.searchRegex == nil {
		return
	}
	for i, e := range m.visibleEntries() {
		if m.logState.searchRegex.MatchString(e.Raw) {
			m.logState.searchMatches = append(m.logState.searchMatches, i)
		}
	}
	if m.logState.searchMatchIdx >= len(m.logState.searchMatches) {
		m.logState.searchMatchIdx = 0
	}
}

func (m *Model) stepSearchMatch(step int) {
	n := len(m.logState.searchMatches)
	if n == 0 {
		return
	}
	m.logState.searchMatchIdx = ((m.logState.searchMatchIdx+step)%n + n) % n
	m.updateLogViewport()
	m.scrollToSearchMatch()
}

func (m *Model) scrollToSearchMatch() {
	if len(m.logState.searchMatches) == 0 {
		return
	}
	line := m.logState.searchMatches[m.logState.searchMatchIdx]
	m.logViewport.SetYOffset(max(line-m.logViewport.Height/2, 0))
}

// updateLogViewport updates the log viewport with current content.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	// Box inner height = content height - status line - two borders.
	m.logViewport.Width = max(m.width-4, 1)
	m.logViewport.Height = max(m.contentHeight()-3, 1)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.logViewport.SetContent(m.renderLogContent())
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogContent renders the colorized log lines.
func (m Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	width := m.logViewport.Width

	if m.logPath == "" {
		return bg.FillLine(bg.Render("Diagnostics log is disabled", styles.MutedText), width)
	}
	entries := m.visibleEntries()
	if len(entries) == 0 {
		return bg.FillLine(bg.Render("No log entries", styles.MutedText), width)
	}

	active := -1
	if len(m.logState.searchMatches) > 0 {
		active = m.logState.searchMatches[m.logState.searchMatchIdx]
	}
	matched := make(map[int]bool, len(m.logState.searchMatches))
	for _, idx := range m.logState.searchMatches {
		matched[idx] = true
	}

	lines := make([]string, len(entries))
	for i, e := range entries {
		var line string
		switch {
		case i == active:
			line = lipgloss.NewStyle().
				Background(lipgloss.Color(m.theme.Warning)).
				Foreground(lipgloss.Color(m.theme.Background)).
				Render(e.Raw)
		case matched[i]:
			line = bg.Render(e.Raw, styles.AccentText)
		default:
			line = m.colorizeEntry(e, styles, bg)
		}
		lines[i] = bg.FillLine(line, width)
	}
	return strings.Join(lines, "\n")
}

// colorizeEntry renders "15:04:05 WARN message key=value".
func (m Model) colorizeEntry(e logtail.Entry, styles Styles, bg BgStyle) string {
	if !e.Parsed {
		return bg.Render(e.Raw, styles.Text)
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(bg.Render(e.Time.Local().Format("15:04:05"), styles.FaintText))
		b.WriteString(bg.Space())
	}
	b.WriteString(bg.Render(padRight(e.Level.String(), 5), m.levelStyle(e.Level, styles).Bold(true)))
	b.WriteString(bg.Space())
	b.WriteString(bg.Render(e.Msg, styles.Text))
	for _, a := range e.Attrs {
		b.WriteString(bg.Space())
		b.WriteString(bg.Render(a.Key+"=", styles.FaintText))
		b.WriteString(bg.Render(a.Value, styles.MutedText))
	}
	return b.String()
}

// levelStyle returns the style for a log level.
func (m Model) levelStyle(level slog.Level, styles Styles) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return styles.DangerText
	case level >= slog.LevelWarn:
		return styles.WarningText
	case level >= slog.LevelInfo:
		return styles.SuccessText
	default:
		return styles.InfoText
	}
}

// renderLogs renders the log view with its status bar below the box.
func (m Model) renderLogs() string {
	bg := NewBgStyle(m.theme.Surface)
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	box := m.renderTitledBox("Diagnostics Log", m.logViewport.View(), m.width, m.contentHeight()-1, true)
	return box + "\n" + styles.Footer.Width(m.width).Render(m.renderLogStatus(styles, bg))
}

// renderLogStatus renders the log status bar.
func (m Model) renderLogStatus(styles Styles, bg BgStyle) string {
	if m.logState.searchActive {
		return m.logState.searchInput.View()
	}
	if m.logState.searchRegex != nil {
		if len(m.logState.searchMatches) == 0 {
			return bg.Render("Pattern not found: "+m.logState.searchQuery, styles.DangerText)
		}
		return bg.Render("/"+m.logState.searchQuery, styles.AccentText) +
			bg.Render(" - ", styles.FaintText) +
			bg.Render(fmt.Sprintf("%d/%d", m.logState.searchMatchIdx+1, len(m.logState.searchMatches)), styles.WarningText) +
			bg.Render(" - n/N to move, Esc to clear", styles.FaintText)
	}

	visible := len(m.visibleEntries())
	parts := []string{
		bg.Render(fmt.Sprintf("%d/%d lines", visible, len(m.logState.entries)), styles.FaintText),
		bg.Render("level ≥ "+m.logState.minLevel.String(), styles.MutedText),
		bg.Render("follow "+ternary(m.logState.follow, "on", "off"), styles.MutedText),
	}
	if m.logState.err != nil {
		parts = append(parts, bg.Render(m.logState.err.Error(), styles.DangerText))
	}
	parts = append(parts, bg.Render(truncateMiddle(m.logPath, 50), styles.AccentText))
	sep := bg.Space() + bg.Render("•", styles.FaintText) + bg.Space()
	return strings.Join(parts, sep)
}
