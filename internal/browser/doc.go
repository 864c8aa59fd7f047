// Package browser is the host-facing engine of rolodex.
//
// A Browser owns the search state and connects the contacts source, the
// list binder and section indexer, the image loader and the selection
// coordinator. Hosts drive it with events and lifecycle calls and observe
// it through Callbacks; nothing here depends on a particular UI toolkit.
//
// # Query cycle
//
// SearchTermChanged and SearchCollapsed update the term and report whether
// a re-query is needed. Refresh queries the source and records the result
// in a state.Store; Apply binds a snapshot to rows. Refresh may run on any
// goroutine. Apply drops snapshots for a term that is no longer current, so
// a slow query can never overwrite a newer search.
//
// # Images
//
// BindSlot hands a row's photo reference to the image loader. Deliveries
// arrive through Callbacks.ImageReady on loader goroutines and must be
// confirmed with AcceptImage on the display thread before use.
//
// # Session state
//
// SaveState and RestoreState round-trip the search term and selected row.
// A restored row is re-selected once, after the first search query.
package browser
