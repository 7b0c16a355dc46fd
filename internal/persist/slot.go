package persist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrSlotEmpty is returned by Slot.Get when nothing is stored under the key.
var ErrSlotEmpty = errors.New("slot empty")

// Slot is durable key/value storage for whole serialized documents.
// Implementations replace the stored value atomically on Put.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// MemorySlots keeps documents in process memory. The zero value is ready
// to use.
type MemorySlots struct {
	mu   sync.Mutex
	data map[string][]byte
}

var _ Slot = (*MemorySlots)(nil)

// Get returns a copy of the stored document.
func (m *MemorySlots) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), data...), nil
}

// Put stores a copy of data under key.
func (m *MemorySlots) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

// Delete removes key. Missing keys are not an error.
func (m *MemorySlots) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Close is a no-op.
func (m *MemorySlots) Close() error { return nil }

// FileSlots stores each key as a JSON file inside a directory.
type FileSlots struct {
	dir string
}

var _ Slot = (*FileSlots)(nil)

// NewFileSlots returns file-backed slots rooted at dir. The directory is
// created on first write.
func NewFileSlots(dir string) (*FileSlots, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, fmt.Errorf("slot dir is empty")
	}
	return &FileSlots{dir: trimmed}, nil
}

// Get reads the file for key.
func (f *FileSlots) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("read slot %q: %w", key, err)
	}
	return data, nil
}

// Put writes data to a temp file and renames it over the slot file so a
// crash mid-write never leaves a truncated document behind.
func (f *FileSlots) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("create slot dir: %w", err)
	}
	tmp, err := os.CreateTemp(f.dir, ".slot-*")
	if err != nil {
		return fmt.Errorf("create temp slot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close slot %q: %w", key, err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace slot %q: %w", key, err)
	}
	return nil
}

// Delete removes the file for key.
func (f *FileSlots) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete slot %q: %w", key, err)
	}
	return nil
}

// Close is a no-op.
func (f *FileSlots) Close() error { return nil }

func (f *FileSlots) path(key string) string {
	return filepath.Join(f.dir, fileName(key))
}

// fileName maps a slot key such as "flatmatch:listings:v1" to a portable
// file name.
func fileName(key string) string {
	replacer := strings.NewReplacer(":", "_", "/", "_", "\\", "_")
	return replacer.Replace(strings.TrimSpace(key)) + ".json"
}
