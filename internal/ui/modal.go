package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Modal is an overlay that takes all key input while open, such as the
// add-listing form. Update returns the next modal, a command, and whether
// the modal should close. View renders into the content area.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}
