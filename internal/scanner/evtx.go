package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"

	"github.com/five82/logdog/internal/match"
)

// Defaults for EVTX scanning.
const (
	DefaultMaxRecords = 10000
	DefaultLogEvery   = 1000

	// LevelError is the System/Level value of error-severity events.
	LevelError = 2
)

// Record is one decoded EVTX event.
type Record struct {
	// Number is the event record id, or the position in the file when the
	// record has none.
	Number int

	// Level is System/Level, or -1 when absent.
	Level int

	// SystemTime is the raw TimeCreated/SystemTime attribute.
	SystemTime string

	// Text is the rendered record used for phrase matching and display.
	Text string
}

// RecordReader iterates the records of one EVTX file.
// Next returns io.EOF when no records remain.
type RecordReader interface {
	Next() (Record, error)
	Close() error
}

// OpenFunc opens a RecordReader for path.
type OpenFunc func(path string) (RecordReader, error)

// EvtxOptions tune ScanEvtx.
type EvtxOptions struct {
	// MaxRecords bounds the number of records read. Zero uses DefaultMaxRecords.
	MaxRecords int

	// Levels lists the severities that may match. Empty means LevelError only.
	Levels []int

	// LogEvery logs progress after this many records. Zero uses DefaultLogEvery.
	LogEvery int

	Verbose bool

	// Open overrides the EVTX decoder; nil uses OpenEvtxFile.
	Open OpenFunc
}

func (o EvtxOptions) withDefaults() EvtxOptions {
	if o.MaxRecords <= 0 {
		o.MaxRecords = DefaultMaxRecords
	}
	if len(o.Levels) == 0 {
		o.Levels = []int{LevelError}
	}
	if o.LogEvery <= 0 {
		o.LogEvery = DefaultLogEvery
	}
	if o.Open == nil {
		o.Open = OpenEvtxFile
	}
	return o
}

// ScanEvtx reads records from an EVTX file and returns the error-severity
// records containing a target phrase. It stops after MaxRecords records.
func ScanEvtx(ctx context.Context, path string, m *match.Matcher, opts EvtxOptions) (Result, error) {
	opts = opts.withDefaults()

	reader, err := opts.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Result{}, fmt.Errorf("open evtx %s: %w", path, err)
	}
	defer reader.Close()

	levels := make(map[int]bool, len(opts.Levels))
	for _, l := range opts.Levels {
		levels[l] = true
	}

	var res Result
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read evtx %s: %w", path, err)
		}

		if res.Processed == opts.MaxRecords {
			res.Truncated = true
			log.Printf("evtx %s: stopped after %d records", path, res.Processed)
			break
		}
		res.Processed++
		if res.Processed%opts.LogEvery == 0 {
			log.Printf("evtx %s: processed %d records, %d matches", path, res.Processed, len(res.Matches))
		}

		if !levels[rec.Level] || !m.Match(rec.Text) {
			continue
		}
		ts, err := ParseEvtxTime(rec.SystemTime)
		if err != nil {
			return res, &TimestampError{Source: path, Line: rec.Number, Value: rec.SystemTime, Err: err}
		}
		if opts.Verbose {
			log.Printf("match %s record %d at %s", path, rec.Number, ts.Format(TextLayout))
		}
		res.Matches = append(res.Matches, Match{
			At:     ts,
			Text:   rec.Text,
			Source: path,
			Line:   rec.Number,
			Kind:   KindEvtx,
		})
	}
	return res, nil
}
