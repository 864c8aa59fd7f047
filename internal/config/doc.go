// Package config handles loading and parsing the rolodex configuration file.
//
// # Overview
//
// Settings live in a TOML file. A missing file is not an error: every field
// has a default, and empty or zero values in the file also fall back to
// the defaults. Paths accept a leading ~ and are returned absolute.
//
// # Configuration Discovery
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/rolodex/config.toml
//  3. If the file doesn't exist, use Default()
//
// # Default Values
//
//   - database: ~/.local/share/rolodex/contacts.db
//   - log_file: ~/.local/state/rolodex/rolodex.log
//   - log_level: info
//   - alphabet: " ABCDEFGHIJKLMNOPQRSTUVWXYZ"
//   - two_pane_min_width: 100 columns
//   - poll_seconds: 10
//   - images.workers: 3
//   - images.thumbnail_size: 16 pixels
//   - images.memory_budget_bytes: 4 MiB
//   - images.disk_cache_dir: ~/.cache/rolodex/thumbs ("" disables it)
//   - images.miss_ttl_seconds: 30
//
// # TOML Format
//
//	database = "~/contacts.db"
//	log_level = "debug"
//	two_pane_min_width = 120
//
//	[images]
//	workers = 2
//	disk_cache_dir = ""
//
// # Error Handling
//
// Load returns an error when the file exists but cannot be read, is not
// valid TOML ("parse config: ...") or names an unknown log level.
package config
