package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/flatmatch/internal/reviews"
)

// reviewsState holds state for the reviews view.
type reviewsState struct {
	listingID string
	all       []reviews.Review
	order     reviews.Order
	loading   bool
	err       error
}

type reviewsLoadedMsg struct {
	listingID string
	reviews   []reviews.Review
	err       error
}

// openReviews switches to the reviews view and starts loading them.
func (m *Model) openReviews() tea.Cmd {
	l, ok := m.currentListing()
	if !ok || m.reviewSvc == nil {
		return nil
	}
	if m.currentView != ViewReviews {
		m.returnTo = m.currentView
	}
	m.selectedID = l.ID
	m.currentView = ViewReviews
	if m.reviewsState.listingID == l.ID && !m.reviewsState.loading && m.reviewsState.err == nil {
		m.updateReviewsViewport()
		return nil
	}
	m.reviewsState = reviewsState{listingID: l.ID, loading: true, order: m.reviewsState.order}
	m.updateReviewsViewport()

	svc, ctx, now := m.reviewSvc, m.ctx, m.now()
	meta := reviews.Meta{Average: l.RatingValue(), Count: l.Reviews()}
	id := l.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ReviewsTimeout)
		defer cancel()
		list, err := reviews.Load(ctx, svc, id, meta, now)
		return reviewsLoadedMsg{listingID: id, reviews: list, err: err}
	}
}

func (m *Model) handleReviewsLoaded(msg reviewsLoadedMsg) {
	if msg.listingID != m.reviewsState.listingID {
		return
	}
	m.reviewsState.loading = false
	m.reviewsState.err = msg.err
	m.reviewsState.all = msg.reviews
	if msg.err != nil {
		m.logger.Warn("load reviews failed", "listing", msg.listingID, "error", msg.err)
	}
	m.updateReviewsViewport()
}

// handleReviewsKey processes keys in the reviews view.
func (m *Model) handleReviewsKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.CycleOrder):
		m.reviewsState.order = m.reviewsState.order.Next()
		m.reviewsViewport.GotoTop()
		m.updateReviewsViewport()
	case key.Matches(msg, m.keys.Down):
		m.reviewsViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.reviewsViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Top):
		m.reviewsViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.reviewsViewport.GotoBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.reviewsViewport.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.reviewsViewport.HalfPageUp()
	default:
		return nil, false
	}
	return nil, true
}

// sortedReviews returns the loaded reviews in the chosen order.
func (m Model) sortedReviews() []reviews.Review {
	return reviews.Sort(m.reviewsState.all, m.reviewsState.order, m.now())
}

func (m *Model) updateReviewsViewport() {
	if !m.ready {
		return
	}
	m.reviewsViewport.Width = max(m.width-4, 1)
	m.reviewsViewport.Height = max(m.contentHeight()-3, 1)
	m.reviewsViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.reviewsViewport.SetContent(m.renderReviewsContent(m.reviewsViewport.Width))
}

func (m Model) renderReviewsContent(width int) string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	s := m.reviewsState

	switch {
	case s.loading:
		return bg.FillLine(bg.Render("Loading reviews...", styles.MutedText), width)
	case s.err != nil:
		return bg.FillLine(bg.Render("Could not load reviews: "+s.err.Error(), styles.DangerText), width)
	case len(s.all) == 0:
		return bg.FillLine(bg.Render("No reviews yet", styles.MutedText), width)
	}

	now := m.now()
	var lines []string
	for i, r := range m.sortedReviews() {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines,
			bg.Render(r.Author, styles.Text.Bold(true))+bg.Spaces(2)+
				bg.Render(stars(r.Rating), styles.WarningText)+bg.Space()+
				bg.Render(fmt.Sprintf("%.1f", r.Rating), styles.MutedText)+bg.Spaces(2)+
				bg.Render(relativeTime(r.CreatedAt, now), styles.FaintText))
		body := lipgloss.NewStyle().Width(max(width-2, 10)).Render(strings.TrimSpace(r.Body))
		for _, line := range strings.Split(body, "\n") {
			lines = append(lines, bg.Spaces(2)+bg.Render(strings.TrimRight(line, " "), styles.Text))
		}
	}
	return m.fillLines(lines, bg, width)
}

func (m Model) renderReviews() string {
	bg := NewBgStyle(m.theme.Surface)
	styles := m.theme.Styles().WithBackground(m.theme.Surface)

	title := "Reviews"
	if m.catalog != nil {
		if l, _, ok := m.catalog.Lookup(m.reviewsState.listingID); ok {
			title = "Reviews · " + l.Title
		}
	}
	box := m.renderTitledBox(title, m.reviewsViewport.View(), m.width, m.contentHeight()-1, true)

	summary := []string{
		bg.Render("Order:", styles.MutedText) + bg.Space() + bg.Render(m.reviewsState.order.String(), styles.AccentText),
	}
	if n := len(m.reviewsState.all); n > 0 {
		avg := reviews.Average(m.reviewsState.all)
		summary = append(summary,
			bg.Render(stars(avg), styles.WarningText)+bg.Space()+
				bg.Render(fmt.Sprintf("%.1f from %d review%s", avg, n, ternary(n == 1, "", "s")), styles.MutedText))
	}
	status := styles.Footer.Width(m.width).Render(bg.Join(summary, "  "))
	return box + "\n" + status
}
