// Package prefs handles flatmatch user preferences persistence.
// Preferences are stored in ~/.config/flatmatch/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/flatmatch/internal/listing"
	"github.com/five82/flatmatch/internal/view"
)

// Prefs holds user preferences for flatmatch.
type Prefs struct {
	Theme  string `toml:"theme"`
	Search Search `toml:"search"`
}

// Search is the last search the user ran, restored on the next start.
type Search struct {
	Query    string `toml:"query,omitempty"`
	Location string `toml:"location,omitempty"`
	Type     string `toml:"type,omitempty"`
	Category string `toml:"category,omitempty"`
	MinPrice *int   `toml:"min_price,omitempty"`
	MaxPrice *int   `toml:"max_price,omitempty"`
	Sort     string `toml:"sort,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/flatmatch/prefs.toml"
	defaultTheme     = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Filters converts the saved search into view filters. Unknown types and
// sort orders are dropped.
func (s Search) Filters() view.Filters {
	f := view.Filters{
		Query:    s.Query,
		Location: s.Location,
		Category: s.Category,
	}
	if t := listing.Type(s.Type); t.Valid() {
		f.Type = t
	}
	if s.MinPrice != nil {
		f.MinPrice = listing.Int(*s.MinPrice)
	}
	if s.MaxPrice != nil {
		f.MaxPrice = listing.Int(*s.MaxPrice)
	}
	f.Sort, _ = view.ParseSort(s.Sort)
	return f
}

// SearchFrom records f for saving.
func SearchFrom(f view.Filters) Search {
	s := Search{
		Query:    strings.TrimSpace(f.Query),
		Location: strings.TrimSpace(f.Location),
		Type:     string(f.Type),
		Category: f.Category,
		Sort:     f.Sort.Key(),
	}
	if f.MinPrice != nil {
		s.MinPrice = listing.Int(*f.MinPrice)
	}
	if f.MaxPrice != nil {
		s.MaxPrice = listing.Int(*f.MaxPrice)
	}
	return s
}

// Load reads preferences from the given path, falling back to defaults if missing.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Prefs{Theme: defaultTheme}, nil
	}

	prefs := Prefs{Theme: defaultTheme}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs, nil // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Prefs{Theme: defaultTheme}, nil // Graceful degradation
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}

	return prefs, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
