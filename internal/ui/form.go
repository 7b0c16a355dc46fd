package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/flatmatch/internal/listing"
)

const (
	fieldTitle = iota
	fieldPrice
	fieldType
	fieldLocation
	fieldDistance
	fieldDescription
	fieldContact
	fieldCount
)

var formLabels = [fieldCount]string{
	fieldTitle:       "Title",
	fieldPrice:       "Price",
	fieldType:        "Type",
	fieldLocation:    "Location",
	fieldDistance:    "Distance km",
	fieldDescription: "Description",
	fieldContact:     "Contact email",
}

// listingForm is the modal for listing a new room.
type listingForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newListingForm() Modal {
	f := &listingForm{}
	placeholders := [fieldCount]string{
		fieldTitle:       "Sunny room near the park",
		fieldPrice:       "$350/wk",
		fieldType:        "Studio, 1BR, 2BR or Flatmate",
		fieldLocation:    "Suburb",
		fieldDistance:    "1.5",
		fieldDescription: "What makes it a good place to live",
		fieldContact:     "you@example.com",
	}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 200
		f.inputs[i] = ti
	}
	f.inputs[fieldDescription].CharLimit = 1000
	f.inputs[fieldTitle].Focus()
	return f
}

// Update implements Modal.
func (f *listingForm) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
		return f, cmd, false
	}

	switch {
	case key.Matches(keyMsg, keys.Cancel):
		return f, nil, true

	case key.Matches(keyMsg, keys.SubmitForm):
		return f.submit()

	case key.Matches(keyMsg, keys.Confirm):
		if f.focus == fieldCount-1 {
			return f.submit()
		}
		return f, f.setFocus(f.focus + 1), false

	case key.Matches(keyMsg, keys.NextField):
		return f, f.setFocus((f.focus + 1) % fieldCount), false

	case key.Matches(keyMsg, keys.PrevField):
		return f, f.setFocus((f.focus + fieldCount - 1) % fieldCount), false
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(keyMsg)
	return f, cmd, false
}

func (f *listingForm) setFocus(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = i
	return f.inputs[i].Focus()
}

// submit validates the form. Errors keep the form open.
func (f *listingForm) submit() (Modal, tea.Cmd, bool) {
	req, err := f.request()
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		f.err = err.Error()
		return f, nil, false
	}
	return f, func() tea.Msg { return submitListingMsg{req: req} }, true
}

func (f *listingForm) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

// request builds a listing request from the inputs. Unknown types pass
// through unchanged so validation reports them.
func (f *listingForm) request() (listing.NewRequest, error) {
	req := listing.NewRequest{
		Title:        f.value(fieldTitle),
		Price:        f.value(fieldPrice),
		Type:         parseType(f.value(fieldType)),
		Location:     f.value(fieldLocation),
		Description:  f.value(fieldDescription),
		ContactEmail: f.value(fieldContact),
	}
	if raw := f.value(fieldDistance); raw != "" {
		d, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(raw, "km")), 64)
		if err != nil || math.IsInf(d, 0) || math.IsNaN(d) {
			return req, fmt.Errorf("distance %q is not a number", raw)
		}
		req.Distance = &d
	}
	return req, nil
}

func parseType(s string) listing.Type {
	for _, t := range listing.Types() {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, t.Label()) {
			return t
		}
	}
	return listing.Type(s)
}

// View implements Modal.
func (f *listingForm) View(theme Theme, width, height int) string {
	styles := theme.Styles().WithBackground(theme.Surface)
	bg := NewBgStyle(theme.Surface)
	boxWidth := min(max(width-8, 40), 80)
	labelWidth := 15
	inputWidth := max(boxWidth-labelWidth-6, 10)

	var lines []string
	lines = append(lines, bg.Render("List a room", styles.AccentText.Bold(true)), "")
	for i := range f.inputs {
		f.inputs[i].Width = inputWidth
		labelStyle := styles.MutedText
		marker := "  "
		if i == f.focus {
			labelStyle = styles.AccentText.Bold(true)
			marker = "› "
		}
		lines = append(lines, bg.Render(marker, labelStyle)+
			bg.Render(padRight(formLabels[i], labelWidth), labelStyle)+
			f.inputs[i].View())
	}
	lines = append(lines, "")
	if f.err != "" {
		wrapped := lipgloss.NewStyle().Width(boxWidth - 4).Render(f.err)
		for _, line := range strings.Split(wrapped, "\n") {
			lines = append(lines, bg.Render(strings.TrimRight(line, " "), styles.DangerText))
		}
		lines = append(lines, "")
	}
	lines = append(lines, bg.Render("tab next · enter next/submit · ctrl+s submit · esc cancel", styles.FaintText))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.BorderFocus)).
		BorderBackground(lipgloss.Color(theme.Background)).
		Background(lipgloss.Color(theme.Surface)).
		Padding(1, 2).
		Width(boxWidth).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceBackground(lipgloss.Color(theme.Background)))
}
