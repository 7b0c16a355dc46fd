package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/flatmatch/internal/catalog"
	"github.com/five82/flatmatch/internal/listing"
	"github.com/five82/flatmatch/internal/notes"
	"github.com/five82/flatmatch/internal/prefs"
	"github.com/five82/flatmatch/internal/reviews"
	"github.com/five82/flatmatch/internal/view"
)

// View represents the current active view.
type View int

const (
	ViewPopular View = iota
	ViewNearby
	ViewSaved
	ViewSearch
	ViewDetail
	ViewNotes
	ViewReviews
	ViewLogs
)

// listViews is the tab order.
var listViews = []View{ViewPopular, ViewNearby, ViewSaved, ViewSearch}

func (v View) String() string {
	switch v {
	case ViewPopular:
		return "Popular"
	case ViewNearby:
		return "Nearby"
	case ViewSaved:
		return "Saved"
	case ViewSearch:
		return "Search"
	case ViewDetail:
		return "Details"
	case ViewNotes:
		return "Notes"
	case ViewReviews:
		return "Reviews"
	case ViewLogs:
		return "Log"
	default:
		return ""
	}
}

func (v View) isList() bool {
	return v >= ViewPopular && v <= ViewSearch
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Catalog   *catalog.Store
	Notes     *notes.Store
	Reviews   reviews.Service
	Logger    *slog.Logger
	LogPath   string
	Filters   view.Filters // restored search
	ThemeName string
	PrefsPath string
	Now       func() time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx         context.Context
	catalog     *catalog.Store
	notes       *notes.Store
	reviewSvc   reviews.Service
	logger      *slog.Logger
	logPath     string
	prefsPath   string
	now         func() time.Time
	keys        keyMap
	events      <-chan catalog.Event
	unsubscribe func()

	// UI state
	theme       Theme
	currentView View
	listView    View // list shown behind detail, notes and reviews
	returnTo    View // where back goes from notes, reviews and logs
	width       int
	height      int
	ready       bool
	showHelp    bool
	modal       Modal
	status      statusLine

	// List state
	filters      view.Filters
	items        []listing.Listing
	selectedRow  int
	selectedID   string
	searchActive bool
	searchInput  textinput.Model

	// Detail state
	detailViewport viewport.Model

	// Notes state
	notesState notesState

	// Reviews state
	reviewsViewport viewport.Model
	reviewsState    reviewsState

	// Log state
	logViewport viewport.Model
	logState    logState
}

type statusLine struct {
	text  string
	isErr bool
	at    time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	search := textinput.New()
	search.Placeholder = "Search title, suburb or street..."
	search.Prompt = "/ "
	search.CharLimit = 100

	m := Model{
		ctx:         ctx,
		catalog:     opts.Catalog,
		notes:       opts.Notes,
		reviewSvc:   opts.Reviews,
		logger:      logger.With("component", "ui"),
		logPath:     opts.LogPath,
		prefsPath:   prefsPath,
		now:         now,
		keys:        DefaultKeyMap(),
		unsubscribe: func() {},
		theme:       GetTheme(opts.ThemeName),
		currentView: ViewPopular,
		listView:    ViewPopular,
		returnTo:    ViewPopular,
		filters:     opts.Filters,
		searchInput: search,
		notesState:  newNotesState(),
		logState:    logState{follow: true, minLevel: slog.LevelInfo},
	}
	if m.catalog != nil {
		m.events, m.unsubscribe = m.catalog.Subscribe()
	}
	m.reload()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initViewports()
		}
		m.ready = true
		m.updateDetailViewport()
		m.updateReviewsViewport()
		m.updateLogViewport()
		return m, nil

	case catalogEventMsg:
		m.reload()
		m.updateDetailViewport()
		return m, waitForEvent(m.events)

	case catalogClosedMsg:
		m.events = nil
		return m, nil

	case submitListingMsg:
		return m, m.addListingCmd(msg.req)

	case listingAddedMsg:
		m.handleListingAdded(msg)
		return m, nil

	case refreshedMsg:
		m.reload()
		m.updateDetailViewport()
		m.setStatus("Catalog reloaded from seed", false)
		return m, nil

	case notesChangedMsg:
		m.handleNotesChanged(msg)
		return m, nil

	case reviewsLoadedMsg:
		m.handleReviewsLoaded(msg)
		return m, nil

	case logsLoadedMsg:
		m.handleLogsLoaded(msg)
		return m, nil

	case logTickMsg:
		return m, m.handleLogTick()
	}

	// Keep cursor blink and similar input messages flowing to whichever
	// input has focus.
	var cmd tea.Cmd
	switch {
	case m.modal != nil:
		m.modal, cmd, _ = m.modal.Update(msg, m.keys)
	case m.searchActive:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case m.notesState.editing:
		m.notesState.input, cmd = m.notesState.input.Update(msg)
	case m.logState.searchActive:
		m.logState.searchInput, cmd = m.logState.searchInput.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input. Overlays and focused inputs see keys
// first, then the active view, then the global bindings.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		next, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = next
		}
		return m, cmd
	}

	if m.searchActive {
		return m, m.handleSearchInput(msg)
	}
	if m.notesState.editing {
		return m, m.handleNoteInput(msg)
	}

	var (
		cmd     tea.Cmd
		handled bool
	)
	switch {
	case m.currentView.isList():
		cmd, handled = m.handleListKey(msg)
	case m.currentView == ViewDetail:
		cmd, handled = m.handleDetailKey(msg)
	case m.currentView == ViewNotes:
		cmd, handled = m.handleNotesKey(msg)
	case m.currentView == ViewReviews:
		cmd, handled = m.handleReviewsKey(msg)
	case m.currentView == ViewLogs:
		cmd, handled = m.handleLogsKey(msg)
	}
	if handled {
		return m, cmd
	}
	return m, m.handleGlobalKey(msg)
}

func (m *Model) handleGlobalKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.back(msg.String() == "q")

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.updateDetailViewport()
		m.updateReviewsViewport()
		m.updateLogViewport()

	case key.Matches(msg, m.keys.Tab):
		m.cycleList(1)

	case key.Matches(msg, m.keys.ShiftTab):
		m.cycleList(-1)

	case key.Matches(msg, m.keys.SavedTab):
		m.showList(ViewSaved)

	case key.Matches(msg, m.keys.Logs):
		return m.openLogs()

	case key.Matches(msg, m.keys.AddForm):
		m.modal = newListingForm()

	case key.Matches(msg, m.keys.Refresh):
		m.setStatus("Reloading catalog...", false)
		return m.refreshCmd()

	case key.Matches(msg, m.keys.Search):
		m.searchActive = true
		m.searchInput.SetValue(m.filters.Query)
		m.searchInput.CursorEnd()
		return m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleType):
		m.updateFilters(func(f *view.Filters) { f.Type = nextType(f.Type) })

	case key.Matches(msg, m.keys.CycleCategory):
		m.updateFilters(func(f *view.Filters) { f.Category = nextCategory(f.Category) })

	case key.Matches(msg, m.keys.CycleSort):
		m.updateFilters(func(f *view.Filters) { f.Sort = f.Sort.Next() })

	case key.Matches(msg, m.keys.LowerMaxPrice):
		m.updateFilters(func(f *view.Filters) { f.MaxPrice = lowerMaxPrice(f.MaxPrice) })

	case key.Matches(msg, m.keys.RaiseMaxPrice):
		m.updateFilters(func(f *view.Filters) { f.MaxPrice = raiseMaxPrice(f.MaxPrice) })

	case key.Matches(msg, m.keys.ClearFilters):
		m.updateFilters(func(f *view.Filters) { *f = view.Filters{Sort: f.Sort} })

	case key.Matches(msg, m.keys.ToggleSaved):
		m.toggleSaved()

	case key.Matches(msg, m.keys.Open):
		m.openDetail()

	case key.Matches(msg, m.keys.Notes):
		m.openNotes()

	case key.Matches(msg, m.keys.Reviews):
		return m.openReviews()
	}
	return nil
}

// back leaves the current view. On a list, q quits and esc does nothing.
func (m *Model) back(quit bool) tea.Cmd {
	switch {
	case m.currentView.isList():
		if quit {
			return tea.Quit
		}
	case m.currentView == ViewDetail:
		m.currentView = m.listView
	default:
		m.currentView = m.returnTo
	}
	return nil
}

// cycleList moves through the list tabs.
func (m *Model) cycleList(step int) {
	idx := 0
	for i, v := range listViews {
		if v == m.listView {
			idx = i
			break
		}
	}
	n := len(listViews)
	m.showList(listViews[((idx+step)%n+n)%n])
}

func (m *Model) showList(v View) {
	if v != m.listView {
		m.selectedRow = 0
		m.selectedID = ""
	}
	m.listView = v
	m.currentView = v
	m.reload()
}

// currentListing returns the listing the user is looking at: the open
// listing outside the lists, the highlighted row inside them.
func (m Model) currentListing() (listing.Listing, bool) {
	if m.currentView.isList() {
		if m.selectedRow >= 0 && m.selectedRow < len(m.items) {
			return m.items[m.selectedRow], true
		}
		return listing.Listing{}, false
	}
	if m.catalog == nil || m.selectedID == "" {
		return listing.Listing{}, false
	}
	l, _, ok := m.catalog.Lookup(m.selectedID)
	return l, ok
}

func (m *Model) toggleSaved() {
	l, ok := m.currentListing()
	if !ok || m.catalog == nil {
		return
	}
	if !m.catalog.ToggleSaved(l.ID) {
		return
	}
	m.selectedID = l.ID
	m.reload()
	m.updateDetailViewport()
	m.setStatus(ternary(!l.Saved, "Saved ", "Removed ")+truncate(l.Title, 40), false)
}

func (m *Model) openDetail() {
	l, ok := m.currentListing()
	if !ok {
		return
	}
	m.selectedID = l.ID
	m.currentView = ViewDetail
	m.detailViewport.GotoTop()
	m.updateDetailViewport()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = statusLine{text: text, isErr: isErr, at: m.now()}
}

// savePrefs writes the theme and current search. Failures are logged only.
func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, Search: prefs.SearchFrom(m.filters)}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", "error", err)
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + counts
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	// Main content
	if m.modal != nil {
		b.WriteString(m.modal.View(m.theme, m.width, m.contentHeight()))
		return b.String()
	}
	b.WriteString(m.renderContent())
	return b.String()
}

func (m Model) contentHeight() int {
	return max(m.height-2, 3)
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewPopular, ViewNearby, ViewSaved, ViewSearch:
		return m.renderLists()
	case ViewDetail:
		return m.renderDetail()
	case ViewNotes:
		return m.renderNotes()
	case ViewReviews:
		return m.renderReviews()
	case ViewLogs:
		return m.renderLogs()
	default:
		return ""
	}
}

func (m *Model) initViewports() {
	m.detailViewport = viewport.New(max(m.width-4, 1), max(m.height-4, 1))
	m.reviewsViewport = viewport.New(max(m.width-4, 1), max(m.height-5, 1))
	m.logViewport = viewport.New(max(m.width-4, 1), max(m.height-5, 1))
}

// Messages

type catalogEventMsg catalog.Event

type catalogClosedMsg struct{}

type submitListingMsg struct {
	req listing.NewRequest
}

type listingAddedMsg struct {
	id    string
	title string
	err   error
}

type refreshedMsg struct{}

// Commands

// waitForEvent blocks on the next catalog event. Update re-arms it after
// each event so exactly one wait is outstanding.
func waitForEvent(ch <-chan catalog.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return catalogClosedMsg{}
		}
		return catalogEventMsg(ev)
	}
}

func (m Model) addListingCmd(req listing.NewRequest) tea.Cmd {
	store, ctx := m.catalog, m.ctx
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
		defer cancel()
		id, err := store.AddListing(ctx, req)
		return listingAddedMsg{id: id, title: req.Title, err: err}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	store, ctx := m.catalog, m.ctx
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
		defer cancel()
		store.Refresh(ctx)
		return refreshedMsg{}
	}
}

func (m *Model) handleListingAdded(msg listingAddedMsg) {
	if msg.err != nil {
		m.logger.Warn("add listing failed", "error", msg.err)
		m.setStatus("Could not add listing: "+msg.err.Error(), true)
		return
	}
	m.listView = ViewPopular
	m.selectedID = msg.id
	m.reload()
	m.currentView = ViewDetail
	m.updateDetailViewport()
	m.setStatus("Listed "+ternary(strings.TrimSpace(msg.title) == "", msg.id, msg.title), false)
}

// Run starts the Bubble Tea program and blocks until the user quits or
// the context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	defer m.unsubscribe()

	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, progOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
