// Package contacts is the record source behind the contact list.
//
// # Overview
//
// Contacts live in a SQLite database accessed through a zombiezen
// sqlitex.Pool. Every query materializes an immutable []Record snapshot so
// the list binder never iterates a live cursor while the store changes
// underneath it.
//
// # Query Contract
//
// Query(term) returns visible contacts with a non-empty display name sorted
// by sort key under the SortCollation collation, which every pooled
// connection registers from NewCollator. A non-empty term adds a
// case-insensitive substring filter on the display name. The projection is
// the same in both cases.
//
// # Errors
//
//   - ErrUnavailable: the database file or contacts table is missing. Open
//     returns it and the application refuses to start.
//   - Per-query failures are wrapped and returned by Store; Adapter logs
//     them and hands back an empty sequence instead.
//
// # Import
//
// Import loads a YAML contact list into a store created with Create. Sort
// keys are derived from display names when the document omits them.
package contacts
