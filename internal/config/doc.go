// Package config loads flatmatch's startup configuration.
//
// # Resolution order
//
// Later sources win:
//
//  1. Built-in defaults (Default)
//  2. TOML file, ~/.config/flatmatch/config.toml unless a path is given
//  3. A dotenv file, ./.env by default
//  4. FLATMATCH_* process environment variables
//
// A missing TOML or dotenv file is not an error. Unparsable TOML is.
// Values that are present but invalid (an unknown storage backend, a
// negative flush delay, an unknown log level) fall back to defaults.
//
// # TOML format
//
//	data_dir       = "~/.local/share/flatmatch"
//	storage        = "file"        # file | sqlite | memory
//	seed_url       = ""            # listings API; empty uses built-in fixtures
//	reviews_url    = ""            # reviews API; empty uses built-in fixtures
//	manifest_dir   = ""            # <dir>/<listing id>/manifest.json
//	manifest_url   = ""            # same layout over HTTP
//	manifest_rate  = 4             # manifest requests per second, 0 = unpaced
//	flush_delay_ms = 200
//	log_level      = "info"
//
// Environment names are the upper-cased keys with the FLATMATCH_ prefix,
// e.g. FLATMATCH_STORAGE=sqlite.
//
// # Derived paths
//
//   - LogPath: <data_dir>/flatmatch.log
//   - DatabasePath: <data_dir>/flatmatch.db
//   - SlotDir: <data_dir>/slots
//
// Tilde expansion is applied to data_dir and manifest_dir.
package config
