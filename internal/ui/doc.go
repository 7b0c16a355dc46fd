// Package ui is the flatmatch terminal interface, built on Bubble Tea.
//
// # Views
//
// Four list views share one list renderer and differ only in where their
// rows come from:
//
//   - Popular and Nearby: the two catalog collections in display order
//   - Saved: every saved listing, popular first
//   - Search: all listings run through view.Apply with the current filters
//
// Wide terminals show a preview of the selected listing beside the list.
// Enter opens the detail view; n and r open the notes and reviews of the
// selected listing; l opens the diagnostics log; a opens the form for
// listing a new room.
//
// # Data flow
//
// Model never blocks in Update. Writes (new listings, notes) and reads
// that may be slow (reviews, log tail) run as tea.Cmd closures and report
// back with a message. Catalog changes arrive through a subscription:
// waitForEvent blocks on the event channel and Update re-arms it after
// every event, so rows, counts and the saved marker always reflect the
// store.
//
// Search filters and the theme are written to the prefs file whenever
// they change.
package ui
