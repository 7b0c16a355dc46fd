package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/flatmatch/internal/notes"
)

// notesState holds state for the notes view of one listing.
type notesState struct {
	listingID string
	items     []notes.Note
	cursor    int
	editing   bool
	editID    string // empty while composing a new note
	input     textinput.Model
	err       string
}

func newNotesState() notesState {
	ti := textinput.New()
	ti.Placeholder = "Write a note..."
	ti.Prompt = "✎ "
	ti.CharLimit = notes.MaxLength
	return notesState{input: ti}
}

type notesChangedMsg struct {
	listingID string
	action    string
	err       error
}

func (m *Model) openNotes() {
	l, ok := m.currentListing()
	if !ok || m.notes == nil {
		return
	}
	if m.currentView != ViewNotes {
		m.returnTo = m.currentView
	}
	m.selectedID = l.ID
	m.notesState.listingID = l.ID
	m.notesState.cursor = 0
	m.notesState.err = ""
	m.reloadNotes()
	m.currentView = ViewNotes
}

func (m *Model) reloadNotes() {
	if m.notes == nil {
		return
	}
	m.notesState.items = m.notes.ForListing(m.notesState.listingID)
	m.notesState.cursor = min(m.notesState.cursor, max(len(m.notesState.items)-1, 0))
}

func (m *Model) selectedNote() (notes.Note, bool) {
	s := m.notesState
	if s.cursor < 0 || s.cursor >= len(s.items) {
		return notes.Note{}, false
	}
	return s.items[s.cursor], true
}

// handleNotesKey processes keys in the notes view.
func (m *Model) handleNotesKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.notesState.cursor < len(m.notesState.items)-1 {
			m.notesState.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.notesState.cursor > 0 {
			m.notesState.cursor--
		}
	case key.Matches(msg, m.keys.Top):
		m.notesState.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.notesState.cursor = max(len(m.notesState.items)-1, 0)
	case key.Matches(msg, m.keys.NoteAdd):
		return m.startNoteInput("", ""), true
	case key.Matches(msg, m.keys.NoteEdit):
		if n, ok := m.selectedNote(); ok {
			return m.startNoteInput(n.ID, n.Text), true
		}
	case key.Matches(msg, m.keys.NoteDelete):
		if n, ok := m.selectedNote(); ok {
			store := m.notes
			return m.noteCmd("deleted", func(ctx context.Context) error {
				if !store.Delete(ctx, n.ID) {
					return errors.New("note not found")
				}
				return nil
			}), true
		}
	default:
		return nil, false
	}
	return nil, true
}

func (m *Model) startNoteInput(editID, text string) tea.Cmd {
	m.notesState.editing = true
	m.notesState.editID = editID
	m.notesState.err = ""
	m.notesState.input.SetValue(text)
	m.notesState.input.CursorEnd()
	return m.notesState.input.Focus()
}

// handleNoteInput handles keys while composing or editing a note.
func (m *Model) handleNoteInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		store := m.notes
		text := m.notesState.input.Value()
		editID := m.notesState.editID
		listingID := m.notesState.listingID
		m.notesState.editing = false
		m.notesState.input.Blur()
		if editID == "" {
			return m.noteCmd("added", func(ctx context.Context) error {
				_, err := store.Add(ctx, listingID, text)
				return err
			})
		}
		return m.noteCmd("updated", func(ctx context.Context) error {
			ok, err := store.Update(ctx, editID, text)
			if err == nil && !ok {
				err = errors.New("note not found")
			}
			return err
		})

	case key.Matches(msg, m.keys.Cancel):
		m.notesState.editing = false
		m.notesState.input.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.notesState.input, cmd = m.notesState.input.Update(msg)
	return cmd
}

// noteCmd runs a note write off the update loop.
func (m Model) noteCmd(action string, write func(context.Context) error) tea.Cmd {
	if m.notes == nil {
		return nil
	}
	ctx, listingID := m.ctx, m.notesState.listingID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
		defer cancel()
		return notesChangedMsg{listingID: listingID, action: action, err: write(ctx)}
	}
}

func (m *Model) handleNotesChanged(msg notesChangedMsg) {
	if msg.err != nil {
		text := msg.err.Error()
		switch {
		case errors.Is(msg.err, notes.ErrEmptyNote):
			text = "A note needs some text"
		case errors.Is(msg.err, notes.ErrNoteTooLong):
			text = fmt.Sprintf("Notes are limited to %d characters", notes.MaxLength)
		}
		m.notesState.err = text
		return
	}
	m.notesState.err = ""
	if msg.action == "added" {
		m.notesState.cursor = 0
	}
	if msg.listingID == m.notesState.listingID {
		m.reloadNotes()
	}
	m.updateDetailViewport()
	m.setStatus("Note "+msg.action, false)
}

func (m Model) renderNotes() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	width := max(m.width-4, 1)
	now := m.now()

	var lines []string
	if m.notesState.editing {
		counter := noteCounter(m.notesState.input.Value())
		lines = append(lines, m.notesState.input.View()+bg.Spaces(2)+bg.Render(counter, styles.FaintText), "")
	}
	if m.notesState.err != "" {
		lines = append(lines, bg.Render(m.notesState.err, styles.DangerText), "")
	}
	if len(m.notesState.items) == 0 {
		lines = append(lines, bg.Render("No notes yet. Press a to write one.", styles.MutedText))
	}
	for i, n := range m.notesState.items {
		when := relativeTime(n.Updated(), now)
		if n.Edited() {
			when += " (edited)"
		}
		textStyle, metaStyle := styles.Text, styles.FaintText
		prefix := "  "
		if i == m.notesState.cursor {
			textStyle = styles.AccentText
			prefix = "› "
		}
		lines = append(lines,
			bg.Render(prefix, textStyle)+bg.Render(truncate(n.Text, width-len(when)-6), textStyle)+
				bg.Spaces(2)+bg.Render(when, metaStyle))
	}

	title := "Notes"
	if m.catalog != nil {
		if l, _, ok := m.catalog.Lookup(m.notesState.listingID); ok {
			title = fmt.Sprintf("Notes · %s (%d)", l.Title, len(m.notesState.items))
		}
	}
	return m.renderTitledBox(title, m.fillLines(lines, bg, width), m.width, m.contentHeight(), true)
}

// noteCounter renders "n/150" for the note being typed.
func noteCounter(text string) string {
	return fmt.Sprintf("%d/%d", len([]rune(strings.TrimSpace(text))), notes.MaxLength)
}
