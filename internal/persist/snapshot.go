package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/five82/flatmatch/internal/listing"
)

// DefaultKey is the slot holding the catalog snapshot.
const DefaultKey = "flatmatch:listings:v1"

var (
	// ErrNoSnapshot means the slot has never been written or was cleared.
	ErrNoSnapshot = errors.New("no snapshot")
	// ErrCorrupt means the slot holds something that is not a snapshot.
	ErrCorrupt = errors.New("corrupt snapshot")
	// ErrUnavailable means the storage backend itself failed.
	ErrUnavailable = errors.New("storage unavailable")
)

// Snapshot is the whole-catalog envelope written to the slot.
type Snapshot struct {
	Popular []listing.Listing `json:"popular"`
	Nearby  []listing.Listing `json:"nearby"`
	SavedAt int64             `json:"savedAt"`
}

// SavedTime returns SavedAt as a time.
func (s Snapshot) SavedTime() time.Time {
	if s.SavedAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.SavedAt)
}

// Adapter reads and writes the catalog snapshot in a named slot.
type Adapter struct {
	slot Slot
	key  string
	now  func() time.Time
}

// NewAdapter returns an adapter over slot. An empty key uses DefaultKey.
func NewAdapter(slot Slot, key string) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	return &Adapter{slot: slot, key: key, now: time.Now}
}

// Key returns the slot key the adapter writes to.
func (a *Adapter) Key() string { return a.key }

// Load returns the stored snapshot. The error wraps ErrNoSnapshot,
// ErrCorrupt or ErrUnavailable so callers can decide how loudly to report
// it; in every case the returned snapshot is the zero value. A successful
// load always returns non-nil partitions.
func (a *Adapter) Load(ctx context.Context) (Snapshot, error) {
	if a == nil || a.slot == nil {
		return Snapshot{}, fmt.Errorf("load %s: %w", a.keyOrDefault(), ErrUnavailable)
	}
	data, err := a.slot.Get(ctx, a.key)
	if err != nil {
		if errors.Is(err, ErrSlotEmpty) {
			return Snapshot{}, fmt.Errorf("load %s: %w", a.key, ErrNoSnapshot)
		}
		return Snapshot{}, fmt.Errorf("load %s: %w: %w", a.key, ErrUnavailable, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Snapshot{}, fmt.Errorf("load %s: %w", a.key, ErrNoSnapshot)
	}
	return decodeSnapshot(a.key, data)
}

func decodeSnapshot(key string, data []byte) (Snapshot, error) {
	var raw struct {
		Popular json.RawMessage `json:"popular"`
		Nearby  json.RawMessage `json:"nearby"`
		SavedAt int64           `json:"savedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("load %s: %w: %w", key, ErrCorrupt, err)
	}
	if !isArray(raw.Popular) || !isArray(raw.Nearby) {
		return Snapshot{}, fmt.Errorf("load %s: %w: partitions must be arrays", key, ErrCorrupt)
	}
	snap := Snapshot{SavedAt: raw.SavedAt}
	if err := json.Unmarshal(raw.Popular, &snap.Popular); err != nil {
		return Snapshot{}, fmt.Errorf("load %s: %w: popular: %w", key, ErrCorrupt, err)
	}
	if err := json.Unmarshal(raw.Nearby, &snap.Nearby); err != nil {
		return Snapshot{}, fmt.Errorf("load %s: %w: nearby: %w", key, ErrCorrupt, err)
	}
	return snap, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// Save replaces the stored snapshot. A zero SavedAt is stamped with the
// current time. Nil partitions are written as empty arrays, so they load
// back as empty non-nil slices. Errors wrap ErrUnavailable.
func (a *Adapter) Save(ctx context.Context, snap Snapshot) error {
	if a == nil || a.slot == nil {
		return fmt.Errorf("save %s: %w", a.keyOrDefault(), ErrUnavailable)
	}
	if snap.SavedAt == 0 {
		snap.SavedAt = a.now().UnixMilli()
	}
	if snap.Popular == nil {
		snap.Popular = []listing.Listing{}
	}
	if snap.Nearby == nil {
		snap.Nearby = []listing.Listing{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("save %s: marshal: %w", a.key, err)
	}
	if err := a.slot.Put(ctx, a.key, data); err != nil {
		return fmt.Errorf("save %s: %w: %w", a.key, ErrUnavailable, err)
	}
	return nil
}

// Clear removes the stored snapshot.
func (a *Adapter) Clear(ctx context.Context) error {
	if a == nil || a.slot == nil {
		return fmt.Errorf("clear %s: %w", a.keyOrDefault(), ErrUnavailable)
	}
	if err := a.slot.Delete(ctx, a.key); err != nil {
		return fmt.Errorf("clear %s: %w: %w", a.key, ErrUnavailable, err)
	}
	return nil
}

func (a *Adapter) keyOrDefault() string {
	if a == nil || a.key == "" {
		return DefaultKey
	}
	return a.key
}
