package catalog

import (
	"context"
	"time"
)

// scheduleFlushLocked (re)starts the debounce timer. Must be called with mu
// held for writing.
func (s *Store) scheduleFlushLocked() {
	if s.closed || s.adapter == nil {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.flush(context.Background())
	})
}

// stopTimerLocked cancels a pending debounced write. Must be called with
// mu held for writing.
func (s *Store) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// flush writes the catalog as it is right now. Persistence failures are
// logged and otherwise ignored; the in-memory catalog stays authoritative.
func (s *Store) flush(ctx context.Context) {
	if s.adapter == nil {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	s.dirty = false
	s.mu.Unlock()

	if err := s.adapter.Save(ctx, snap); err != nil {
		s.logger.Warn("persist catalog failed", "error", err)
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return
	}
	s.logger.Debug("catalog persisted",
		"popular", len(snap.Popular),
		"nearby", len(snap.Nearby),
		"saved_at", snap.SavedAt)
}

// Flush cancels any pending debounced write and writes the catalog now.
func (s *Store) Flush(ctx context.Context) {
	s.ensureInit()
	s.mu.Lock()
	s.stopTimerLocked()
	s.dirty = true
	s.mu.Unlock()
	s.flush(ctx)
}

// Close stops the debounce timer, writes any pending changes and closes
// subscriber channels. Mutations after Close still apply in memory but
// are no longer written out.
func (s *Store) Close(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopTimerLocked()
	pending := s.dirty
	s.mu.Unlock()

	if pending {
		s.flush(ctx)
	}

	// Holding writeMu waits out a timer-driven write already in progress.
	s.writeMu.Lock()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.writeMu.Unlock()
	s.closeSubscribers()
}

// Pending reports whether there are changes not yet written out.
func (s *Store) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}
