// Package app wires configuration, preferences, the scan session and the
// status store into the interactive UI.
//
// Run is the entry point for `logdog ui`. StartScan is handed to the UI so
// it can launch scans without importing this package.
package app
