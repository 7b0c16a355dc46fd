package ui

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/five82/flatmatch/internal/catalog"
	"github.com/five82/flatmatch/internal/listing"
	"github.com/five82/flatmatch/internal/notes"
	"github.com/five82/flatmatch/internal/persist"
	"github.com/five82/flatmatch/internal/prefs"
	"github.com/five82/flatmatch/internal/reviews"
)

func newTestModel(t *testing.T, logPath string) Model {
	t.Helper()
	ctx := context.Background()
	store := catalog.New(catalog.Options{})
	store.Initialize(ctx)
	t.Cleanup(func() { store.Close(ctx) })

	m := New(Options{
		Context:   ctx,
		Catalog:   store,
		Notes:     notes.New(notes.Options{Slot: &persist.MemorySlots{}}),
		Reviews:   reviews.Fixtures{},
		LogPath:   logPath,
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	t.Cleanup(m.unsubscribe)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return next.(Model)
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds keys to the model and returns it with the last command.
func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyPress(k))
		m = next.(Model)
	}
	return m, cmd
}

func deliver(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func itemIDs(items []listing.Listing) []string {
	out := make([]string, len(items))
	for i, l := range items {
		out[i] = l.ID
	}
	return out
}

func TestNew_StartsOnPopular(t *testing.T) {
	m := newTestModel(t, "")
	if m.currentView != ViewPopular {
		t.Fatalf("currentView = %v, want Popular", m.currentView)
	}
	if diff := cmp.Diff([]string{"p1", "p2", "p3", "p4"}, itemIDs(m.items)); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	if m.selectedID != "p1" {
		t.Fatalf("selectedID = %q, want p1", m.selectedID)
	}
	out := m.View()
	if !strings.Contains(out, "flatmatch") || !strings.Contains(out, "Sunny 1BR near CBD") {
		t.Fatalf("View() missing logo or first listing:\n%s", out)
	}
}

func TestTabCyclesLists(t *testing.T) {
	m := newTestModel(t, "")

	m, _ = press(m, "tab")
	if m.currentView != ViewNearby || m.items[0].ID != "n1" {
		t.Fatalf("after tab: view %v first %q", m.currentView, m.items[0].ID)
	}
	m, _ = press(m, "tab")
	if m.currentView != ViewSaved || len(m.items) != 0 {
		t.Fatalf("after 2 tabs: view %v, %d items", m.currentView, len(m.items))
	}
	m, _ = press(m, "tab")
	if m.currentView != ViewSearch || len(m.items) != 8 {
		t.Fatalf("after 3 tabs: view %v, %d items", m.currentView, len(m.items))
	}
	m, _ = press(m, "tab")
	if m.currentView != ViewPopular {
		t.Fatalf("tab should wrap to Popular, got %v", m.currentView)
	}
	m, _ = press(m, "shift+tab")
	if m.currentView != ViewSearch {
		t.Fatalf("shift+tab from Popular = %v, want Search", m.currentView)
	}
}

func TestListNavigation(t *testing.T) {
	m := newTestModel(t, "")
	m, _ = press(m, "j", "j")
	if m.selectedID != "p3" {
		t.Fatalf("selectedID after jj = %q, want p3", m.selectedID)
	}
	m, _ = press(m, "G")
	if m.selectedID != "p4" {
		t.Fatalf("selectedID after G = %q, want p4", m.selectedID)
	}
	m, _ = press(m, "j")
	if m.selectedID != "p4" {
		t.Fatalf("j past the end moved selection to %q", m.selectedID)
	}
	m, _ = press(m, "g")
	if m.selectedID != "p1" {
		t.Fatalf("selectedID after g = %q, want p1", m.selectedID)
	}
}

func TestToggleSaved_ShowsInSavedList(t *testing.T) {
	m := newTestModel(t, "")

	m, _ = press(m, "b")
	l, _, _ := m.catalog.Lookup("p1")
	if !l.Saved {
		t.Fatal("p1 not saved after b")
	}
	if m.activeStatus() == "" {
		t.Fatal("expected a status message after saving")
	}

	m, _ = press(m, "S")
	if m.currentView != ViewSaved {
		t.Fatalf("S opened %v, want Saved", m.currentView)
	}
	if diff := cmp.Diff([]string{"p1"}, itemIDs(m.items)); diff != "" {
		t.Fatalf("saved items mismatch (-want +got):\n%s", diff)
	}

	m, _ = press(m, "b")
	if len(m.items) != 0 {
		t.Fatalf("saved list still has %d items after unsaving", len(m.items))
	}
}

func TestTypeFilter_SwitchesToSearchAndSavesPrefs(t *testing.T) {
	m := newTestModel(t, "")

	m, _ = press(m, "f")
	if m.currentView != ViewSearch {
		t.Fatalf("currentView = %v, want Search", m.currentView)
	}
	if m.filters.Type != listing.Studio {
		t.Fatalf("filters.Type = %q, want Studio", m.filters.Type)
	}
	got := itemIDs(m.items)
	slices.Sort(got)
	if diff := cmp.Diff([]string{"n1", "p2"}, got); diff != "" {
		t.Fatalf("studio results mismatch (-want +got):\n%s", diff)
	}

	p, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if p.Search.Type != string(listing.Studio) {
		t.Fatalf("saved search type = %q, want Studio", p.Search.Type)
	}

	m, _ = press(m, "x")
	if m.filters.Type != "" || len(m.items) != 8 {
		t.Fatalf("x left type %q with %d items", m.filters.Type, len(m.items))
	}
}

func TestMaxPriceKeys(t *testing.T) {
	m := newTestModel(t, "")

	m, _ = press(m, "[")
	if m.filters.MaxPrice == nil || *m.filters.MaxPrice != maxPriceStart {
		t.Fatalf("MaxPrice after [ = %v, want %d", m.filters.MaxPrice, maxPriceStart)
	}
	for _, l := range m.items {
		if l.ID == "p3" || l.ID == "n4" {
			t.Fatalf("%s is over the cap but listed", l.ID)
		}
	}
	if len(m.items) != 6 {
		t.Fatalf("got %d listings under $500, want 6", len(m.items))
	}
}

func TestPriceStepping(t *testing.T) {
	if got := lowerMaxPrice(nil); *got != maxPriceStart {
		t.Fatalf("lowerMaxPrice(nil) = %d", *got)
	}
	if got := lowerMaxPrice(listing.Int(60)); *got != maxPriceStep {
		t.Fatalf("lowerMaxPrice(60) = %d, want floor %d", *got, maxPriceStep)
	}
	if got := raiseMaxPrice(nil); got != nil {
		t.Fatalf("raiseMaxPrice(nil) = %d, want nil", *got)
	}
	if got := raiseMaxPrice(listing.Int(500)); *got != 550 {
		t.Fatalf("raiseMaxPrice(500) = %d, want 550", *got)
	}
	if got := raiseMaxPrice(listing.Int(maxPriceCap)); got != nil {
		t.Fatalf("raiseMaxPrice(cap) = %d, want nil", *got)
	}
}

func TestSearchInput(t *testing.T) {
	m := newTestModel(t, "")

	m, _ = press(m, "/")
	if !m.searchActive {
		t.Fatal("/ did not open the search input")
	}
	// q is text while searching, not quit.
	m, _ = press(m, "studio", "q")
	if !m.searchActive || m.searchInput.Value() != "studioq" {
		t.Fatalf("search input = %q active=%v", m.searchInput.Value(), m.searchActive)
	}
	m.searchInput.SetValue("studio q")
	m, _ = press(m, "enter")
	if m.searchActive {
		t.Fatal("enter did not close the search input")
	}
	if m.filters.Query != "studio q" || m.currentView != ViewSearch {
		t.Fatalf("query %q view %v", m.filters.Query, m.currentView)
	}
	if len(m.items) != 0 {
		t.Fatalf("unexpected matches for %q: %v", m.filters.Query, itemIDs(m.items))
	}

	m, _ = press(m, "/")
	m.searchInput.SetValue("studio")
	m, _ = press(m, "enter")
	got := itemIDs(m.items)
	slices.Sort(got)
	if diff := cmp.Diff([]string{"n1", "p2"}, got); diff != "" {
		t.Fatalf("search results mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenDetailAndBack(t *testing.T) {
	m := newTestModel(t, "")
	m, _ = press(m, "j", "enter")
	if m.currentView != ViewDetail || m.selectedID != "p2" {
		t.Fatalf("enter opened %v for %q", m.currentView, m.selectedID)
	}
	if !strings.Contains(m.View(), "Modern studio") {
		t.Fatal("detail view missing title")
	}

	m, _ = press(m, "b")
	if l, _, _ := m.catalog.Lookup("p2"); !l.Saved {
		t.Fatal("b in detail view did not save the open listing")
	}

	m, _ = press(m, "esc")
	if m.currentView != ViewPopular || m.selectedID != "p2" {
		t.Fatalf("esc returned to %v with %q selected", m.currentView, m.selectedID)
	}
}

func TestEscOnListDoesNothing_QQuits(t *testing.T) {
	m := newTestModel(t, "")
	m, cmd := press(m, "esc")
	if cmd != nil || m.currentView != ViewPopular {
		t.Fatalf("esc on a list: view %v cmd %v", m.currentView, cmd)
	}
	_, cmd = press(m, "q")
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not quit")
	}
}

func TestNotes_AddEditDelete(t *testing.T) {
	m := newTestModel(t, "")

	m, _ = press(m, "n")
	if m.currentView != ViewNotes || m.notesState.listingID != "p1" {
		t.Fatalf("n opened %v for %q", m.currentView, m.notesState.listingID)
	}

	m, _ = press(m, "a")
	if !m.notesState.editing {
		t.Fatal("a did not start a note")
	}
	m, _ = press(m, "Ask about parking")
	m, cmd := press(m, "enter")
	if cmd == nil {
		t.Fatal("enter returned no command")
	}
	m, _ = deliver(m, cmd())
	if len(m.notesState.items) != 1 || m.notesState.items[0].Text != "Ask about parking" {
		t.Fatalf("notes after add = %#v", m.notesState.items)
	}
	if m.notes.Count("p1") != 1 {
		t.Fatalf("store count = %d, want 1", m.notes.Count("p1"))
	}

	m, _ = press(m, "e")
	m.notesState.input.SetValue("Parking is included")
	m, cmd = press(m, "enter")
	m, _ = deliver(m, cmd())
	if m.notesState.items[0].Text != "Parking is included" {
		t.Fatalf("note after edit = %#v", m.notesState.items[0])
	}

	m, cmd = press(m, "d")
	m, _ = deliver(m, cmd())
	if len(m.notesState.items) != 0 {
		t.Fatalf("notes after delete = %#v", m.notesState.items)
	}

	m, _ = press(m, "esc")
	if m.currentView != ViewPopular {
		t.Fatalf("esc from notes went to %v", m.currentView)
	}
}

func TestNotes_EmptyNoteShowsError(t *testing.T) {
	m := newTestModel(t, "")
	m, _ = press(m, "n", "a")
	m, cmd := press(m, "enter")
	m, _ = deliver(m, cmd())
	if m.notesState.err != "A note needs some text" {
		t.Fatalf("err = %q", m.notesState.err)
	}
	if m.notes.Count("p1") != 0 {
		t.Fatal("empty note was stored")
	}
}

func TestReviews_LoadAndReorder(t *testing.T) {
	m := newTestModel(t, "")

	m, cmd := press(m, "r")
	if m.currentView != ViewReviews || !m.reviewsState.loading {
		t.Fatalf("r opened %v loading=%v", m.currentView, m.reviewsState.loading)
	}
	m, _ = deliver(m, cmd())
	if m.reviewsState.loading || len(m.reviewsState.all) != 5 {
		t.Fatalf("loaded %d reviews, loading=%v", len(m.reviewsState.all), m.reviewsState.loading)
	}
	if !strings.Contains(m.View(), "Kay Cee") {
		t.Fatal("reviews view missing a reviewer")
	}

	before := m.reviewsState.order
	m, _ = press(m, "o")
	if m.reviewsState.order != before.Next() {
		t.Fatalf("order = %v, want %v", m.reviewsState.order, before.Next())
	}

	// Reopening the same listing reuses the loaded reviews.
	m, _ = press(m, "esc")
	_, cmd = press(m, "r")
	if cmd != nil {
		t.Fatal("reopening reviews for the same listing reloaded them")
	}
}

func TestAddForm_SubmitAddsListing(t *testing.T) {
	m := newTestModel(t, "")

	m, _ = press(m, "a")
	if m.modal == nil {
		t.Fatal("a did not open the form")
	}
	m, _ = press(m, "Garden studio", "tab", "$300/wk", "tab", "studio", "tab", "Hillcrest", "tab", "0.8")
	m, cmd := press(m, "ctrl+s")
	if m.modal != nil {
		t.Fatal("form still open after a valid submit")
	}
	m, cmd = deliver(m, cmd())
	if cmd == nil {
		t.Fatal("submit did not start the add command")
	}
	m, _ = deliver(m, cmd())

	if got := m.catalog.Len(); got != 9 {
		t.Fatalf("catalog has %d listings, want 9", got)
	}
	if m.currentView != ViewDetail {
		t.Fatalf("after add: view %v, want Details", m.currentView)
	}
	l, _, ok := m.catalog.Lookup(m.selectedID)
	if !ok || l.Title != "Garden studio" || l.Type != listing.Studio {
		t.Fatalf("added listing = %#v", l)
	}
	if l.Distance == nil || *l.Distance != 0.8 {
		t.Fatalf("distance = %v, want 0.8", l.Distance)
	}
}

func TestAddForm_InvalidInputKeepsFormOpen(t *testing.T) {
	m := newTestModel(t, "")

	m, _ = press(m, "a", "tab", "tab", "Castle")
	m, cmd := press(m, "ctrl+s")
	if m.modal == nil || cmd != nil {
		t.Fatal("invalid type closed the form")
	}
	form := m.modal.(*listingForm)
	if !strings.Contains(form.err, "invalid listing") {
		t.Fatalf("form err = %q", form.err)
	}

	form.inputs[fieldType].SetValue("")
	form.inputs[fieldDistance].SetValue("far")
	m, _ = press(m, "ctrl+s")
	if m.modal == nil || !strings.Contains(form.err, "not a number") {
		t.Fatalf("bad distance: modal=%v err=%q", m.modal != nil, form.err)
	}

	for _, raw := range []string{"inf", "-Inf", "NaN", "+infinity km"} {
		form.err = ""
		form.inputs[fieldDistance].SetValue(raw)
		m, _ = press(m, "ctrl+s")
		if m.modal == nil || !strings.Contains(form.err, "not a number") {
			t.Fatalf("distance %q: modal=%v err=%q", raw, m.modal != nil, form.err)
		}
	}

	m, _ = press(m, "esc")
	if m.modal != nil {
		t.Fatal("esc did not close the form")
	}
	if m.catalog.Len() != 8 {
		t.Fatalf("catalog changed to %d listings", m.catalog.Len())
	}
}

func TestParseType(t *testing.T) {
	cases := map[string]listing.Type{
		"studio":          listing.Studio,
		"1br":             listing.OneBedroom,
		"2 bedroom":       listing.TwoBedroom,
		"flatmate wanted": listing.FlatmateWanted,
		"Castle":          listing.Type("Castle"),
		"":                listing.Type(""),
	}
	for in, want := range cases {
		if got := parseType(in); got != want {
			t.Errorf("parseType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestThemeKey_SavesPrefs(t *testing.T) {
	m := newTestModel(t, "")
	m, _ = press(m, "T")
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	p, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if p.Theme != "Kanagawa" {
		t.Fatalf("saved theme = %q", p.Theme)
	}
}

func TestHelpOverlay(t *testing.T) {
	m := newTestModel(t, "")
	m, _ = press(m, "?")
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatal("? did not show help")
	}
	m, _ = press(m, "j")
	if m.showHelp || m.selectedID != "p1" {
		t.Fatal("a key while help is open should only close it")
	}
}

func TestWaitForEvent(t *testing.T) {
	if waitForEvent(nil) != nil {
		t.Fatal("nil channel should give a nil command")
	}

	ch := make(chan catalog.Event, 1)
	ch <- catalog.Event{Kind: catalog.EventToggled, ID: "p1"}
	msg := waitForEvent(ch)()
	if ev, ok := msg.(catalogEventMsg); !ok || ev.ID != "p1" {
		t.Fatalf("msg = %#v", msg)
	}

	close(ch)
	if _, ok := waitForEvent(ch)().(catalogClosedMsg); !ok {
		t.Fatal("closed channel should report catalogClosedMsg")
	}
}

func TestCatalogEvent_ReloadsRows(t *testing.T) {
	m := newTestModel(t, "")
	// Mutate behind the model's back, then deliver the event.
	m.catalog.ToggleSaved("p2")
	m, cmd := deliver(m, catalogEventMsg{Kind: catalog.EventToggled, ID: "p2"})
	if !m.items[1].Saved {
		t.Fatal("row not refreshed after catalog event")
	}
	if cmd == nil {
		t.Fatal("event wait was not re-armed")
	}
}

func writeTestLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flatmatch.log")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Debug("no cached catalog")
	logger.Info("catalog initialized", "origin", "seed")
	logger.Warn("hydrate images failed", "listing", "p3")
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

func TestLogs_TailFilterAndFollow(t *testing.T) {
	m := newTestModel(t, writeTestLog(t))

	m, cmd := press(m, "l")
	if m.currentView != ViewLogs || cmd == nil || !m.logState.ticking {
		t.Fatalf("l opened %v ticking=%v", m.currentView, m.logState.ticking)
	}
	m, _ = deliver(m, m.tailLogsCmd()())
	if len(m.logState.entries) != 3 {
		t.Fatalf("tailed %d entries, want 3", len(m.logState.entries))
	}
	if got := len(m.visibleEntries()); got != 2 {
		t.Fatalf("visible at INFO = %d, want 2", got)
	}

	m, _ = press(m, "v")
	if m.logState.minLevel != slog.LevelWarn || len(m.visibleEntries()) != 1 {
		t.Fatalf("after v: level %v, %d visible", m.logState.minLevel, len(m.visibleEntries()))
	}
	if !strings.Contains(m.View(), "hydrate images failed") {
		t.Fatal("log view missing the warning")
	}

	m, _ = press(m, " ")
	if m.logState.follow {
		t.Fatal("space did not pause follow")
	}

	m, _ = press(m, "esc")
	if m.currentView != ViewPopular {
		t.Fatalf("esc from logs went to %v", m.currentView)
	}
	m, cmd = deliver(m, logTickMsg(time.Now()))
	if cmd != nil || m.logState.ticking {
		t.Fatal("ticker kept running after leaving the log view")
	}
}

func TestLogs_Search(t *testing.T) {
	m := newTestModel(t, writeTestLog(t))
	m, _ = press(m, "l")
	m, _ = deliver(m, m.tailLogsCmd()())

	m, _ = press(m, "/", "catalog", "enter")
	if m.logState.searchRegex == nil || len(m.logState.searchMatches) != 1 {
		t.Fatalf("matches = %v", m.logState.searchMatches)
	}
	if m.logState.follow {
		t.Fatal("search should pause follow")
	}

	m, _ = press(m, "esc")
	if m.logState.searchRegex != nil || m.currentView != ViewLogs {
		t.Fatal("first esc should clear the search and stay in the log view")
	}
}

func TestLogs_Disabled(t *testing.T) {
	m := newTestModel(t, "")
	m, cmd := press(m, "l")
	if cmd == nil {
		t.Fatal("no command from l")
	}
	m, _ = deliver(m, m.tailLogsCmd()())
	if m.logState.err != nil {
		t.Fatalf("err = %v", m.logState.err)
	}
	if !strings.Contains(m.View(), "disabled") {
		t.Fatal("expected the disabled notice")
	}
}
