package ui

import "time"

// Screen regions, in terminal rows.
const (
	headerHeight     = 1
	commandBarHeight = 1
)

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which header labels shorten.
	LayoutCompactWidth = 100

	// ListPaneMaxWidth caps the list column in the two-pane layout.
	ListPaneMaxWidth = 48

	// PortraitSize is the width of the detail portrait in cells.
	PortraitSize = 16
)

// Log display limits.
const (
	// LogFetchLimit is the maximum number of log entries shown.
	LogFetchLimit = 2000
)

// Input limits.
const searchCharLimit = 64

// Timing constants.
const (
	// flingSettle is how long the list must sit still after a page jump
	// before decode work resumes.
	flingSettle = 150 * time.Millisecond

	// detailLookupTimeout bounds a single detail query.
	detailLookupTimeout = 2 * time.Second
)
