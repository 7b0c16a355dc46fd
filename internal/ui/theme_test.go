package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Nightfox" || names[1] != "Kanagawa" || names[2] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Nightfox Kanagawa Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	cases := map[string]string{
		"Nightfox": "Kanagawa",
		"Kanagawa": "Slate",
		"Slate":    "Nightfox",
		"Unknown":  "Nightfox",
	}
	for in, want := range cases {
		if got := NextTheme(in); got != want {
			t.Fatalf("NextTheme(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestGetTheme(t *testing.T) {
	for _, name := range ThemeNames() {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%s).Name = %q", name, got)
		}
	}
	if got := GetTheme("Unknown").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Nightfox (fallback)", got)
	}
}

func TestBadgeStyle(t *testing.T) {
	th := GetTheme("Nightfox")
	styles := th.Styles()

	got := styles.BadgeStyle("  Studio ").GetBackground()
	if got != lipgloss.Color(th.BadgeColors["studio"]) {
		t.Fatalf("BadgeStyle(Studio) background = %v, want %v", got, th.BadgeColors["studio"])
	}

	got = styles.BadgeStyle("mystery").GetBackground()
	if got != lipgloss.Color(th.Muted) {
		t.Fatalf("BadgeStyle(mystery) background = %v, want muted %v", got, th.Muted)
	}

	// Badge colors survive WithBackground.
	got = styles.WithBackground(th.Surface).BadgeStyle("saved").GetBackground()
	if got != lipgloss.Color(th.BadgeColors["saved"]) {
		t.Fatalf("WithBackground lost badge colors: got %v", got)
	}
}

func TestEveryThemeHasListingBadges(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, key := range []string{"studio", "1br", "2br", "flatmate", "saved"} {
			if th.BadgeColors[key] == "" {
				t.Fatalf("%s: missing badge color %q", name, key)
			}
		}
	}
}
