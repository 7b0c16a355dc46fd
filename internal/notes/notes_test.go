package notes

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/five82/flatmatch/internal/persist"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newStore(slot persist.Slot) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.UnixMilli(1718000000000)}
	return New(Options{Slot: slot, Now: clock.now}), clock
}

func texts(ns []Note) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Text
	}
	return out
}

func TestAdd_TrimsAndPersists(t *testing.T) {
	ctx := context.Background()
	slot := &persist.MemorySlots{}
	s, _ := newStore(slot)

	n, err := s.Add(ctx, "p1", "  ask about parking  ")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if n.Text != "ask about parking" || n.ListingID != "p1" || n.ID == "" {
		t.Fatalf("Add = %#v", n)
	}
	if n.Edited() {
		t.Fatal("new note reports edited")
	}

	reloaded, _ := newStore(slot)
	if got := reloaded.Load(ctx); got != 1 {
		t.Fatalf("Load = %d, want 1", got)
	}
	if diff := cmp.Diff([]Note{n}, reloaded.All()); diff != "" {
		t.Fatalf("reloaded notes (-want +got):\n%s", diff)
	}
}

func TestAdd_Validation(t *testing.T) {
	s, _ := newStore(nil)
	tests := []struct {
		text string
		want error
	}{
		{"   ", ErrEmptyNote},
		{strings.Repeat("é", MaxLength+1), ErrNoteTooLong},
	}
	for _, tt := range tests {
		if _, err := s.Add(context.Background(), "p1", tt.text); !errors.Is(err, tt.want) {
			t.Errorf("Add(%d runes) error = %v, want %v", len([]rune(tt.text)), err, tt.want)
		}
	}
	if _, err := s.Add(context.Background(), "p1", strings.Repeat("é", MaxLength)); err != nil {
		t.Fatalf("Add at limit: %v", err)
	}
}

func TestForListing_OrderedByUpdate(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(&persist.MemorySlots{})
	first, _ := s.Add(ctx, "p1", "first")
	_, _ = s.Add(ctx, "p1", "second")
	_, _ = s.Add(ctx, "n1", "other listing")

	if diff := cmp.Diff([]string{"second", "first"}, texts(s.ForListing("p1"))); diff != "" {
		t.Fatalf("ForListing (-want +got):\n%s", diff)
	}

	ok, err := s.Update(ctx, first.ID, "first, edited")
	if err != nil || !ok {
		t.Fatalf("Update = %v, %v", ok, err)
	}
	got := s.ForListing("p1")
	if diff := cmp.Diff([]string{"first, edited", "second"}, texts(got)); diff != "" {
		t.Fatalf("ForListing after update (-want +got):\n%s", diff)
	}
	if !got[0].Edited() {
		t.Fatal("updated note does not report edited")
	}
	if s.Count("p1") != 2 || s.Count("zz") != 0 {
		t.Fatalf("Count = %d/%d", s.Count("p1"), s.Count("zz"))
	}
}

func TestUpdateAndDelete_Unknown(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(nil)
	if ok, err := s.Update(ctx, "missing", "text"); ok || err != nil {
		t.Fatalf("Update(missing) = %v, %v", ok, err)
	}
	if s.Delete(ctx, "missing") {
		t.Fatal("Delete(missing) = true")
	}
	n, _ := s.Add(ctx, "p1", "keep")
	if _, err := s.Update(ctx, n.ID, ""); !errors.Is(err, ErrEmptyNote) {
		t.Fatalf("Update to empty error = %v", err)
	}
	if got := s.ForListing("p1"); got[0].Text != "keep" {
		t.Fatalf("rejected update changed text to %q", got[0].Text)
	}
}

func TestDelete_Persists(t *testing.T) {
	ctx := context.Background()
	slot := &persist.MemorySlots{}
	s, _ := newStore(slot)
	n, _ := s.Add(ctx, "p1", "gone soon")
	if !s.Delete(ctx, n.ID) {
		t.Fatal("Delete = false")
	}

	reloaded, _ := newStore(slot)
	if got := reloaded.Load(ctx); got != 0 {
		t.Fatalf("Load after delete = %d, want 0", got)
	}
}

func TestLoad_CorruptDocumentStartsEmpty(t *testing.T) {
	ctx := context.Background()
	slot := &persist.MemorySlots{}
	if err := slot.Put(ctx, DefaultKey, []byte("{not json")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	s, _ := newStore(slot)
	if got := s.Load(ctx); got != 0 {
		t.Fatalf("Load = %d, want 0", got)
	}
	if _, err := s.Add(ctx, "p1", "fresh start"); err != nil {
		t.Fatalf("Add: %v", err)
	}
}
