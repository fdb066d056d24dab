// Package scanner extracts timestamped matches from individual log files.
package scanner

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifies the file format a match was read from.
type Kind string

const (
	KindText Kind = "text"
	KindEvtx Kind = "evtx"
)

// ErrFileNotFound wraps open failures for paths that do not exist.
var ErrFileNotFound = errors.New("file does not exist")

// Match is a single line or record that contained a target phrase.
type Match struct {
	// At is the timestamp extracted from the line or record.
	At time.Time

	// Text is the raw line, or the rendered record for EVTX files.
	Text string

	// Source is the file path the match came from.
	Source string

	// Line is the 1-based line number (text) or record number (EVTX).
	Line int

	Kind Kind
}

// Result is the outcome of scanning one file.
type Result struct {
	Matches []Match

	// Processed counts lines (text) or records (EVTX) read.
	Processed int

	// Truncated is set when an EVTX scan stopped at the record cap
	// while more records remained.
	Truncated bool
}

// TimestampError reports a matching line whose leading tokens are not a
// valid timestamp. It aborts the scan of the file it occurred in.
type TimestampError struct {
	Source string
	Line   int
	Value  string
	Err    error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("%s:%d: invalid timestamp %q: %v", e.Source, e.Line, e.Value, e.Err)
}

func (e *TimestampError) Unwrap() error {
	return e.Err
}
