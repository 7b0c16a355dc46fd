// Package persist caches whole-document state on the local machine.
//
// # Slots
//
// A Slot is a named place holding one serialized document. Three backends
// exist:
//
//   - FileSlots: one JSON file per key in the data directory
//   - SQLiteSlots: a key/value table in a local sqlite database
//   - MemorySlots: process memory only, for tests and ephemeral sessions
//
// Writes always replace the whole document. Nothing is ever patched in
// place, so a reader sees either the previous or the next version.
//
// # Catalog snapshot
//
// Adapter stores the listing catalog under DefaultKey as
//
//	{"popular": [...], "nearby": [...], "savedAt": 1718000000000}
//
// Load classifies failures instead of hiding them:
//
//	snap, err := adapter.Load(ctx)
//	switch {
//	case errors.Is(err, persist.ErrNoSnapshot): // first run
//	case errors.Is(err, persist.ErrCorrupt):    // unparsable or wrong shape
//	case errors.Is(err, persist.ErrUnavailable): // backend failure
//	}
//
// Callers treat all three as "no snapshot" and fall back to seed data; the
// classification only decides how the failure is logged.
package persist
