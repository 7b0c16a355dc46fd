// Package app is the composition root for flatmatch.
//
// Run loads configuration, opens the diagnostics log and the storage
// backend, builds the catalog and notes stores, and hands them to the TUI:
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()          TOML, .env, FLATMATCH_* env
//	       ├─────> openLogger()           <data_dir>/flatmatch.log
//	       ├─────> prefs.Load()           theme and last search
//	       ├─────> build()                slot, catalog, notes, reviews
//	       ├─────> catalog.Initialize()   snapshot, seed or fixtures
//	       ├─────> StartHydration()       galleries in the background
//	       └─────> ui.Run()               blocks until quit
//
// When the UI returns, Run waits for the hydration pass, then the deferred
// close flushes the catalog and closes the storage backend.
package app
