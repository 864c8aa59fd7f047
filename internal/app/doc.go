// Package app provides the orchestration layer for the rolodex application.
//
// # Overview
//
// This package wires together configuration, logging, the contacts store,
// the image cache, the browser engine and the UI. It is the composition
// root: every dependency is created here and handed to the components that
// use it.
//
// # Startup
//
//  1. Load configuration from ~/.config/rolodex/config.toml
//  2. Open the JSON log file and install it as the default slog logger
//  3. Load preferences and the saved session
//  4. Open the SQLite contacts store (fatal when unavailable)
//  5. Open the two-level image cache
//  6. Build the browser, restore the session and run the first query
//  7. Start the database watcher and the background poller
//  8. Start the TUI and block until the user exits or the context ends
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()          Read config
//	       ├─────> contacts.Open()        SQLite pool
//	       ├─────> imagecache.New()       memory LRU + leveldb
//	       ├─────> browser.New()          engine facade
//	       ├─────> WatchDatabase()        fsnotify on the db directory
//	       ├─────> StartPoller()          background refresh
//	       └─────> ui.Run()               Start TUI (blocks)
//
//	Background Poller Loop:
//	┌─────────────────────────────────────────┐
//	│ StartPoller() goroutine                 │
//	│  ├─> wait for tick or db change         │
//	│  ├─> browser.Refresh()                  │
//	│  │   └─> state.Store.Update()           │
//	│  └─> bridge.PublishSnapshot()           │
//	│      └─> UI applies it on its thread    │
//	└─────────────────────────────────────────┘
//
// # Polling Behavior
//
// The poller refreshes the current search at the configured interval
// (default 10 seconds) and immediately after the watcher sees the database
// or its WAL change. While queries keep failing the interval doubles up to
// 30 seconds. Query failures never stop the poller.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration file invalid
//   - Log file cannot be opened
//   - Contacts database missing or without a contacts table
//   - Image disk cache cannot be opened
//
// Recoverable errors (logged, the list keeps its last rows):
//   - Query failures during refresh
//   - Photo fetch and decode failures
//   - Watcher setup failures (polling continues)
//
// # Import
//
// Import creates the database when needed and loads a YAML contacts
// document into it. It backs the --import flag.
package app
