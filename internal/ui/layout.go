package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutSplitWidth is the minimum width for the list + preview split.
	LayoutSplitWidth = 120

	// LayoutExtraWideWidth gives the preview pane more room.
	LayoutExtraWideWidth = 160
)

// Log display limits.
const (
	// LogTailLines is how many lines of the diagnostics log are read.
	LogTailLines = 1000
)

// Timing constants.
const (
	// LogRefreshInterval is how often a followed log is re-read.
	LogRefreshInterval = 2 * time.Second

	// StatusTTL is how long a flash message stays in the header.
	StatusTTL = 4 * time.Second

	// ReviewsTimeout bounds a reviews fetch.
	ReviewsTimeout = 5 * time.Second

	// WriteTimeout bounds catalog and note writes issued from the UI.
	WriteTimeout = 5 * time.Second
)

// Max price filter steps for the [ and ] keys.
const (
	maxPriceStep  = 50
	maxPriceStart = 500
	maxPriceCap   = 1000
)
