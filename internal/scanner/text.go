package scanner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/five82/logdog/internal/match"
)

// TextOptions tune ScanText.
type TextOptions struct {
	// Verbose logs every match.
	Verbose bool
}

// ScanText reads a text log line by line and returns every line containing a
// target phrase, timestamped from its first two tokens.
//
// A matching line without a valid timestamp stops the scan with a
// *TimestampError; matches found before it are still returned.
func ScanText(ctx context.Context, path string, m *match.Matcher, opts TextOptions) (Result, error) {
	file, err := os.Open(path) // #nosec G304 -- user-selected log folders are expected
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Result{}, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	var res Result
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Processed++
		line := scanner.Text()
		if !m.Match(line) {
			continue
		}

		ts, value, err := ParseLineTimestamp(line)
		if err != nil {
			return res, &TimestampError{Source: path, Line: res.Processed, Value: value, Err: err}
		}
		if opts.Verbose {
			log.Printf("match %s:%d: %s", path, res.Processed, strings.TrimSpace(line))
		}
		res.Matches = append(res.Matches, Match{
			At:     ts,
			Text:   line,
			Source: path,
			Line:   res.Processed,
			Kind:   KindText,
		})
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("read %s: %w", path, err)
	}
	return res, nil
}
