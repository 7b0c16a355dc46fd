package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Back       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding

	// View switching
	Open     key.Binding
	Notes    key.Binding
	Reviews  key.Binding
	Logs     key.Binding
	AddForm  key.Binding
	Refresh  key.Binding
	SavedTab key.Binding

	// Listing actions
	ToggleSaved key.Binding

	// Search and filters
	Search        key.Binding
	CycleType     key.Binding
	CycleCategory key.Binding
	CycleSort     key.Binding
	LowerMaxPrice key.Binding
	RaiseMaxPrice key.Binding
	ClearFilters  key.Binding

	// View-local actions
	CycleOrder    key.Binding
	CycleLogLevel key.Binding
	ToggleFollow  key.Binding
	NoteAdd       key.Binding
	NoteEdit      key.Binding
	NoteDelete    key.Binding
	NextField     key.Binding
	PrevField     key.Binding
	SubmitForm    key.Binding

	// Navigation
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding

	// Input
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q/esc", "Back (quit from lists)"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next list"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous list"),
		),

		// View switching
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open listing"),
		),
		Notes: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Notes"),
		),
		Reviews: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reviews"),
		),
		Logs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Diagnostics log"),
		),
		AddForm: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add listing"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Reload catalog"),
		),
		SavedTab: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Saved listings"),
		),

		ToggleSaved: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "Toggle saved"),
		),

		// Search and filters
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		CycleType: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle type filter"),
		),
		CycleCategory: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Cycle category"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle sort"),
		),
		LowerMaxPrice: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Lower max price"),
		),
		RaiseMaxPrice: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Raise max price"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Clear filters"),
		),
		CycleOrder: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Cycle review order"),
		),
		CycleLogLevel: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Cycle log level"),
		),
		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle follow mode"),
		),
		NoteAdd: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "New note"),
		),
		NoteEdit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Edit note"),
		),
		NoteDelete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete note"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		SubmitForm: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Save listing"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "Page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "Half page down"),
		),

		// Input
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Navigation
		{k.Tab, k.ShiftTab, k.SavedTab, k.Open, k.Back},
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.HalfPageDown, k.HalfPageUp},
		// Listings
		{k.ToggleSaved, k.Notes, k.Reviews, k.AddForm, k.Refresh},
		// Search
		{k.Search, k.CycleType, k.CycleCategory, k.CycleSort, k.LowerMaxPrice, k.RaiseMaxPrice, k.ClearFilters},
		// General
		{k.Logs, k.CycleTheme, k.Help, k.Quit},
	}
}
