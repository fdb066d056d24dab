// Package excerpt reads small windows of log files for display: the lines
// around a match, or the tail of a file.
package excerpt

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// maxLineBytes bounds a single line; longer lines fail the read.
const maxLineBytes = 1024 * 1024

// Line is one numbered line of a file.
type Line struct {
	Number int
	Text   string

	// Focus marks the requested line in an excerpt.
	Focus bool
}

// Around returns up to radius lines before and after the 1-based line
// number target, plus the target itself. A missing file returns nil.
func Around(path string, target, radius int) ([]Line, error) {
	if target < 1 {
		return nil, fmt.Errorf("line %d out of range", target)
	}
	radius = max(radius, 0)

	file, err := os.Open(path) // #nosec G304 -- files come from the scanned folders
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	first := max(target-radius, 1)
	last := target + radius
	lines := make([]Line, 0, last-first+1)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	n := 0
	for scanner.Scan() {
		n++
		if n < first {
			continue
		}
		lines = append(lines, Line{Number: n, Text: scanner.Text(), Focus: n == target})
		if n >= last {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if n < target {
		return nil, fmt.Errorf("line %d out of range (file has %d lines)", target, n)
	}
	return lines, nil
}

// Tail returns at most maxLines from the end of the file at path. A missing
// file returns nil.
func Tail(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path) // #nosec G304 -- path is logdog's own log file
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	count, idx := 0, 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}
