// Package catalog holds the listing catalog for a flatmatch session.
//
// # Overview
//
// Store owns two partitions of listings, "popular" and "nearby", and is the
// only place they change. The UI reads copies, issues mutations, and
// listens for change events. Persistence happens behind its back.
//
// # Boot
//
//	┌───────────────────┐
//	│ Initialize(ctx)   │
//	└────────┬──────────┘
//	         │
//	         ├──> adapter.Load()        cached snapshot (OriginSnapshot)
//	         ├──> source.FetchAll()     when no usable snapshot (OriginSeed)
//	         ├──> seed.FixturePayload() when the source fails (OriginFixtures)
//	         └──> attach flatmates      from the side table, by listing id
//
// Initialize runs once. Every other method initializes lazily with a
// background context, so a zero-configured store is always usable.
//
// # Mutations
//
//   - ToggleSaved(id): flips the bookmark
//   - PatchListing(id, patch): merges the non-nil patch fields
//   - AddListing(ctx, req): prepends a new listing to popular
//   - Refresh(ctx): drops local edits and the cache, then reseeds
//   - HydrateImages(ctx, src, limit): fills in missing galleries
//
// Unknown ids are a silent no-op reported as false. Each mutation swaps
// in a fresh partition slice; slices handed out earlier are never written.
//
// # Write policy
//
// ToggleSaved, PatchListing and HydrateImages schedule a write after an
// idle window (DefaultFlushDelay). Every mutation restarts the window, so
// a burst of edits becomes one write of the state at fire time.
// AddListing and Refresh cancel the pending timer and write immediately.
// Close writes anything still pending.
//
// Write failures are logged and otherwise ignored. The in-memory catalog
// remains authoritative for the session.
//
// # Events
//
//	events, cancel := store.Subscribe()
//	defer cancel()
//	for ev := range events {
//		// ev.Kind, ev.ID
//	}
//
// Delivery never blocks a mutation. Slow subscribers drop events.
package catalog
