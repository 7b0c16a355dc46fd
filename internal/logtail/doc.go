// Package logtail reads the end of the flatmatch diagnostics log for the
// in-app log view.
//
// # Reading
//
// Read returns the last N lines using a ring buffer of N entries, so the
// whole file is scanned once but never held in memory:
//
//	lines, err := logtail.Read(cfg.LogPath(), 400)
//
// A missing file is not an error; it yields no lines.
//
// # Parsing
//
// The log is written by slog.NewTextHandler. Parse splits such a line into
// time, level, message and the remaining key=value attributes:
//
//	time=2024-06-10T12:00:00.000Z level=INFO msg="catalog initialized" origin=seed popular=4
//
// Lines that are not slog output (a panic trace, say) keep their raw text
// and are treated as INFO so they still show up.
//
// # Filtering
//
// Filter keeps entries at or above a level; the log view cycles through
// DEBUG, INFO, WARN and ERROR with a key.
package logtail
