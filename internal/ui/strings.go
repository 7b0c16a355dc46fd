package ui

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// truncateMiddle shortens a string by removing characters from the middle,
// keeping the start and the end. Paths keep their file name.
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || value == "" {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	const ellipsis = "…"
	keep := limit - 1
	// Keep more of the end (file name) than the start.
	suffix := keep * 2 / 3
	prefix := keep - suffix
	return string(runes[:prefix]) + ellipsis + string(runes[len(runes)-suffix:])
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if width <= 0 || n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// formatDistance renders a distance in km, or "" when unknown.
func formatDistance(km *float64) string {
	if km == nil {
		return ""
	}
	return fmt.Sprintf("%.1f km", *km)
}

// stars renders a 0..5 rating as five glyphs, rounding to the nearest
// whole star.
func stars(rating float64) string {
	full := int(math.Round(math.Max(0, math.Min(5, rating))))
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full)
}

// relativeTime formats t against now the way review and note lists show it.
func relativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2 Jan 2006")
	}
}

// ternary returns a if cond is true, otherwise b.
func ternary(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
