// Package notes keeps free-text notes the user attaches to listings.
//
// Notes live in one persist.Slot document (DefaultKey) holding a JSON
// array, newest first. Every change rewrites the whole document right
// away; a failed write is logged and the in-memory notes stay current.
package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/five82/flatmatch/internal/persist"
)

// DefaultKey is the slot holding all notes.
const DefaultKey = "flatmatch:notes:v1"

// MaxLength caps a note's text, in runes.
const MaxLength = 150

var (
	ErrEmptyNote   = errors.New("note is empty")
	ErrNoteTooLong = fmt.Errorf("note is longer than %d characters", MaxLength)
)

// Note is a user annotation on one listing. Timestamps are epoch
// milliseconds.
type Note struct {
	ID        string `json:"id"`
	ListingID string `json:"listingId"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Updated returns UpdatedAt as a time.
func (n Note) Updated() time.Time { return time.UnixMilli(n.UpdatedAt) }

// Edited reports whether the note changed after it was written.
func (n Note) Edited() bool { return n.UpdatedAt != n.CreatedAt }

// Options configure a Store.
type Options struct {
	// Slot persists notes. Nil keeps them in memory only.
	Slot   persist.Slot
	Key    string
	Logger *slog.Logger
	Now    func() time.Time
}

// Store holds every note in memory and mirrors changes to its slot.
type Store struct {
	mu    sync.RWMutex
	notes []Note
	// writeMu keeps slot writes in mutation order.
	writeMu sync.Mutex

	slot   persist.Slot
	key    string
	logger *slog.Logger
	now    func() time.Time
}

// New returns an empty Store. Call Load to read saved notes.
func New(opts Options) *Store {
	s := &Store{slot: opts.Slot, key: opts.Key, logger: opts.Logger, now: opts.Now}
	if s.key == "" {
		s.key = DefaultKey
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Load replaces the in-memory notes with the saved ones. A missing or
// unreadable document leaves the store empty and is only logged.
func (s *Store) Load(ctx context.Context) int {
	loaded := s.read(ctx)
	s.mu.Lock()
	s.notes = loaded
	s.mu.Unlock()
	return len(loaded)
}

func (s *Store) read(ctx context.Context) []Note {
	if s.slot == nil {
		return nil
	}
	data, err := s.slot.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, persist.ErrSlotEmpty) {
			s.logger.Debug("no saved notes")
		} else {
			s.logger.Warn("read notes failed", "error", err)
		}
		return nil
	}
	var out []Note
	if err := json.Unmarshal(data, &out); err != nil {
		s.logger.Warn("saved notes unreadable, starting empty", "error", err)
		return nil
	}
	return out
}

func cleanText(text string) (string, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return "", ErrEmptyNote
	case utf8.RuneCountInString(text) > MaxLength:
		return "", ErrNoteTooLong
	}
	return text, nil
}

// Add stores a new note for listingID.
func (s *Store) Add(ctx context.Context, listingID, text string) (Note, error) {
	text, err := cleanText(text)
	if err != nil {
		return Note{}, err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	now := s.now().UnixMilli()
	n := Note{
		ID:        uuid.NewString(),
		ListingID: listingID,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.notes = append([]Note{n}, s.notes...)
	snap := slices.Clone(s.notes)
	s.mu.Unlock()

	s.write(ctx, snap)
	return n, nil
}

// Update replaces a note's text. It reports whether the note exists.
func (s *Store) Update(ctx context.Context, id, text string) (bool, error) {
	text, err := cleanText(text)
	if err != nil {
		return false, err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	next := slices.Clone(s.notes)
	next[i].Text = text
	next[i].UpdatedAt = max(s.now().UnixMilli(), next[i].CreatedAt)
	s.notes = next
	s.mu.Unlock()

	s.write(ctx, next)
	return true, nil
}

// Delete removes a note. It reports whether the note existed.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	next := slices.Delete(slices.Clone(s.notes), i, i+1)
	s.notes = next
	s.mu.Unlock()

	s.write(ctx, next)
	return true
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.notes, func(n Note) bool { return n.ID == id })
}

// ForListing returns the listing's notes, most recently updated first.
func (s *Store) ForListing(listingID string) []Note {
	s.mu.RLock()
	out := make([]Note, 0)
	for _, n := range s.notes {
		if n.ListingID == listingID {
			out = append(out, n)
		}
	}
	s.mu.RUnlock()
	slices.SortStableFunc(out, func(a, b Note) int {
		switch {
		case a.UpdatedAt > b.UpdatedAt:
			return -1
		case a.UpdatedAt < b.UpdatedAt:
			return 1
		}
		return 0
	})
	return out
}

// Count returns how many notes listingID has.
func (s *Store) Count(listingID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := 0
	for _, n := range s.notes {
		if n.ListingID == listingID {
			c++
		}
	}
	return c
}

// All returns every note, newest first.
func (s *Store) All() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notes)
}

func (s *Store) write(ctx context.Context, notes []Note) {
	if s.slot == nil {
		return
	}
	if notes == nil {
		notes = []Note{}
	}
	data, err := json.Marshal(notes)
	if err != nil {
		s.logger.Warn("encode notes failed", "error", err)
		return
	}
	if err := s.slot.Put(ctx, s.key, data); err != nil {
		s.logger.Warn("persist notes failed", "error", err)
	}
}
