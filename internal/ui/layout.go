package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the legend moves under
	// the chart instead of beside it.
	LayoutCompactWidth = 100

	// LayoutLegendWidth is the column reserved for the legend in wide layouts.
	LayoutLegendWidth = 32
)

// Pane sizes.
const (
	// headerLines covers the header and the command bar.
	headerLines = 2

	// DetailPaneHeight is the number of rows given to the point detail pane.
	DetailPaneHeight = 12

	// ExcerptRadius is how many source lines are shown around a match.
	ExcerptRadius = 3

	// LogTailLines is the number of application log lines shown by the log view.
	LogTailLines = 500
)

// Timing constants.
const (
	// DefaultUIInterval is the default refresh interval while the UI polls the store.
	DefaultUIInterval = 200 * time.Millisecond
)
