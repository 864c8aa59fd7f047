// Package state holds the latest contacts query result shared between the
// background refreshers and the UI.
//
// # Overview
//
// Query results arrive from three places: the periodic poller, the
// database file watcher and the UI itself when the search term changes.
// All of them write through Store.Update; the UI reads Store.Snapshot
// when it rebinds the list.
//
//	Producers:                       Consumer (UI):
//	┌──────────────────┐            ┌──────────────────┐
//	│ poller tick      │            │                  │
//	│ watcher event    │──Update───→│ Snapshot()       │
//	│ search change    │  (mutex)   │   ↓              │
//	└──────────────────┘            │ browser.Apply    │
//	                                └──────────────────┘
//
// # Update Semantics
//
//	// Success: replace the result
//	store.Update(term, records, nil)
//	→ Records = records, LastError = nil, ConsecutiveFailures = 0
//
//	// Failure for the stored term: keep the rows, record the error
//	store.Update(term, nil, err)
//	→ Records = <unchanged>, LastError = err
//
//	// Failure for a new term: degrade to an empty result
//	store.Update(newTerm, nil, err)
//	→ Term = newTerm, Records = [], LastError = err
//
// Version only moves when the term or the records actually change, so a
// poller re-reading identical rows does not make the UI rebind.
//
// # Defensive Copying
//
// Records are copied on the way in and on the way out, and errors are
// re-wrapped, so neither side can mutate what the other sees. Records are
// small value structs; copying a few thousand of them is cheap.
//
// # Testing Considerations
//
// The zero Store is ready to use and returns a zero Snapshot.
package state
