package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // Outermost background
	Surface    string // Main content panels
	SurfaceAlt string // Secondary surfaces
	FocusBg    string // Focus/active states

	// List colors
	SelectionBg   string // Selected row background
	SelectionText string // Selected row text

	// Border colors
	Border      string // Default border
	BorderMuted string // Muted border
	BorderFocus string // Focus border

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// Badge colors keyed by lower-cased listing type or badge text.
	BadgeColors map[string]string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	on := func(bg, text string) lipgloss.Style { return fg(text).Background(lipgloss.Color(bg)) }

	return Styles{
		Background: lipgloss.NewStyle().Background(lipgloss.Color(t.Background)),
		Surface:    on(t.Surface, t.Text),
		SurfaceAlt: on(t.SurfaceAlt, t.Text),

		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header:   on(t.Surface, t.Text).Padding(0, 1),
		Footer:   on(t.Surface, t.Muted).Padding(0, 1),
		Logo:     fg(t.Accent).Bold(true),
		Selected: on(t.SelectionBg, t.SelectionText),

		badgeColors: t.BadgeColors,
		background:  t.Background,
		muted:       t.Muted,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	// Base
	Background lipgloss.Style
	Surface    lipgloss.Style
	SurfaceAlt lipgloss.Style

	// Text
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	// Components
	Header   lipgloss.Style
	Footer   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style

	// Badge chips
	badgeColors map[string]string
	background  string
	muted       string
}

// BadgeStyle returns a chip style for a listing type or badge. Unknown
// names use the muted color.
func (s Styles) BadgeStyle(name string) lipgloss.Style {
	color := s.badgeColors[strings.ToLower(strings.TrimSpace(name))]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// WithBackground returns a copy with every style painted on bgColor, so
// text rendered inside a pane never falls back to the terminal background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)

	return Styles{
		Background: s.Background.Background(bg),
		Surface:    s.Surface.Background(bg),
		SurfaceAlt: s.SurfaceAlt.Background(bg),

		Text:        s.Text.Background(bg),
		MutedText:   s.MutedText.Background(bg),
		FaintText:   s.FaintText.Background(bg),
		AccentText:  s.AccentText.Background(bg),
		SuccessText: s.SuccessText.Background(bg),
		WarningText: s.WarningText.Background(bg),
		DangerText:  s.DangerText.Background(bg),
		InfoText:    s.InfoText.Background(bg),

		Header:   s.Header.Background(bg),
		Footer:   s.Footer.Background(bg),
		Logo:     s.Logo.Background(bg),
		Selected: s.Selected.Background(bg),

		badgeColors: s.badgeColors,
		background:  s.background,
		muted:       s.muted,
	}
}

// Theme definitions

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Kanagawa": kanagawaTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return nightfoxTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

// palette is the raw color set of a theme; newTheme maps it onto UI roles
// so every theme colors listings the same way.
type palette struct {
	bg0, bg1, bg2, bg3, bg4 string // darkest to lightest surfaces
	sel, selText            string
	text, muted, faint      string
	blue, cyan, green       string
	yellow, orange, red     string
	violet                  string
}

func newTheme(name string, p palette) Theme {
	return Theme{
		Name:          name,
		Background:    p.bg0,
		Surface:       p.bg1,
		SurfaceAlt:    p.bg2,
		FocusBg:       p.bg3,
		SelectionBg:   p.sel,
		SelectionText: p.selText,
		Border:        p.bg4,
		BorderMuted:   p.bg2,
		BorderFocus:   p.blue,
		Text:          p.text,
		Muted:         p.muted,
		Faint:         p.faint,
		Accent:        p.blue,
		Success:       p.green,
		Warning:       p.yellow,
		Danger:        p.red,
		Info:          p.cyan,
		BadgeColors: map[string]string{
			"studio":   p.cyan,
			"1br":      p.blue,
			"2br":      p.violet,
			"flatmate": p.orange,
			"popular":  p.yellow,
			"nearby":   p.green,
			"new":      p.red,
			"saved":    p.red,
		},
	}
}

// Nightfox: https://github.com/EdenEast/nightfox.nvim
func nightfoxTheme() Theme {
	return newTheme("Nightfox", palette{
		bg0: "#131a24", bg1: "#192330", bg2: "#212e3f", bg3: "#29394f", bg4: "#39506d",
		sel: "#2b3b51", selText: "#cdcecf",
		text: "#cdcecf", muted: "#738091", faint: "#71839b",
		blue: "#719cd6", cyan: "#63cdcf", green: "#81b29a",
		yellow: "#dbc074", orange: "#f4a261", red: "#c94f6d",
		violet: "#9d79d6",
	})
}

// Kanagawa: https://github.com/rebelot/kanagawa.nvim
func kanagawaTheme() Theme {
	return newTheme("Kanagawa", palette{
		bg0: "#16161D", bg1: "#1F1F28", bg2: "#2A2A37", bg3: "#363646", bg4: "#54546D",
		sel: "#2D4F67", selText: "#DCD7BA",
		text: "#DCD7BA", muted: "#C8C093", faint: "#727169",
		blue: "#7E9CD8", cyan: "#7FB4CA", green: "#98BB6C",
		yellow: "#E6C384", orange: "#FFA066", red: "#E46876",
		violet: "#957FB8",
	})
}

// Slate: Tailwind slate surfaces with sky accents.
func slateTheme() Theme {
	return newTheme("Slate", palette{
		bg0: "#020617", bg1: "#0f172a", bg2: "#1e293b", bg3: "#283548", bg4: "#334155",
		sel: "#0284c7", selText: "#f8fafc",
		text: "#f1f5f9", muted: "#94a3b8", faint: "#64748b",
		blue: "#38bdf8", cyan: "#22d3ee", green: "#22c55e",
		yellow: "#f59e0b", orange: "#fb923c", red: "#ef4444",
		violet: "#818cf8",
	})
}
