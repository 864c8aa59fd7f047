// Package logtail reads the end of the rolodex log file for the in-app log
// view.
//
// # Overview
//
// The application logs JSON lines through log/slog to a file so the TUI
// keeps the terminal. Read returns the last N raw lines; ReadEntries parses
// them back into Entry values (time, level, message and sorted attributes)
// that the UI renders with its own styles.
//
// # Ring Buffer Algorithm
//
// Read scans the file once, keeping a circular buffer of maxLines:
//
//	1. Allocate ring buffer of size maxLines
//	2. For each line: store at idx, advance idx modulo maxLines
//	3. If fewer lines than maxLines were seen, return them in order
//	4. Otherwise return the buffer starting at idx (the oldest line)
//
// Memory use is O(maxLines) regardless of file size. A missing file is
// treated as an empty log.
//
// # Non-JSON Lines
//
// Anything that is not a JSON object (a panic trace, a line written before
// logging was configured) is kept verbatim in Entry.Raw.
package logtail
