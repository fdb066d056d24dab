// Package ui provides the interactive logdog terminal interface.
//
// The UI is a single Bubble Tea model with five views:
//
//   - Setup: text inputs for folder, color, label and the phrase list, plus
//     the list of folders added so far
//   - Browse: a directory picker that fills the folder field
//   - Scanning: a progress bar driven by the state.Store snapshot
//   - Chart: the terminal chart, legend and detail pane for the selected point
//   - Log: the tail of the application log file
//
// # Event Flow
//
//  1. Run() builds the Model and starts the Bubble Tea program
//  2. ctrl+r validates the session and calls Options.StartScan, which runs the
//     scan in the background and reports into the store
//  3. A tick command polls store.Snapshot(); when the current generation ends
//     the model moves to the chart view or back to the form
//  4. Errors never mutate the session; they open a modal dialog instead
//
// Theme, mode and the last browse directory are written to the prefs file as
// they change.
package ui
