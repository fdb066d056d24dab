// Package walker scans every supported log file in a folder.
package walker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/five82/logdog/internal/match"
	"github.com/five82/logdog/internal/scanner"
)

// ErrFolderUnreadable wraps failures to enumerate a folder.
var ErrFolderUnreadable = errors.New("cannot read folder")

// DefaultTextExtensions are dispatched to the text scanner.
var DefaultTextExtensions = []string{".txt", ".log"}

// EvtxExtension is dispatched to the EVTX scanner.
const EvtxExtension = ".evtx"

// Options configure a folder walk.
type Options struct {
	// TextExtensions lists extensions scanned as text. Empty uses
	// DefaultTextExtensions. Matching is case-insensitive.
	TextExtensions []string

	// Include is an optional doublestar pattern matched against file names.
	Include string

	Text scanner.TextOptions
	Evtx scanner.EvtxOptions
}

// Status describes what happened to one file.
type Status string

const (
	StatusScanned Status = "scanned"
	StatusSkipped Status = "skipped"
	StatusMissing Status = "missing"
	StatusFailed  Status = "failed"
)

// FileReport is delivered to the progress sink after each file.
type FileReport struct {
	Path      string
	Kind      scanner.Kind
	Status    Status
	Matches   int
	Processed int
	Truncated bool
	Err       error
}

// ProgressFunc receives one report per regular file, in walk order.
type ProgressFunc func(FileReport)

// Validate checks the include pattern.
func (o Options) Validate() error {
	if o.Include != "" && !doublestar.ValidatePattern(o.Include) {
		return fmt.Errorf("invalid include pattern %q", o.Include)
	}
	return nil
}

// CountFiles returns the number of reports Walk will deliver for dir.
func CountFiles(dir string) (int, error) {
	files, err := regularFiles(dir)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// Walk scans the immediate regular files of dir. Unsupported extensions are
// skipped and failures are logged per file; only an unreadable folder or a
// cancelled context stops the walk.
func Walk(ctx context.Context, dir string, m *match.Matcher, opts Options, onFile ProgressFunc) ([]scanner.Match, error) {
	files, err := regularFiles(dir)
	if err != nil {
		return nil, err
	}
	textExt := opts.TextExtensions
	if len(textExt) == 0 {
		textExt = DefaultTextExtensions
	}

	var all []scanner.Match
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		report := scanFile(ctx, path, m, opts, textExt)
		if errors.Is(report.Err, context.Canceled) || errors.Is(report.Err, context.DeadlineExceeded) {
			return all, report.Err
		}
		all = append(all, report.matches...)
		if onFile != nil {
			onFile(report.FileReport)
		}
	}
	return all, nil
}

type fileOutcome struct {
	FileReport
	matches []scanner.Match
}

func scanFile(ctx context.Context, path string, m *match.Matcher, opts Options, textExt []string) fileOutcome {
	out := fileOutcome{FileReport: FileReport{Path: path, Status: StatusSkipped}}
	name := filepath.Base(path)

	if opts.Include != "" {
		if ok, _ := doublestar.Match(opts.Include, name); !ok {
			log.Printf("skipping %s: does not match %q", path, opts.Include)
			return out
		}
	}

	var (
		res scanner.Result
		err error
	)
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case hasExtension(textExt, ext):
		log.Printf("processing file: %s", path)
		out.Kind = scanner.KindText
		res, err = scanner.ScanText(ctx, path, m, opts.Text)
	case ext == EvtxExtension:
		log.Printf("processing event log: %s", path)
		out.Kind = scanner.KindEvtx
		res, err = scanner.ScanEvtx(ctx, path, m, opts.Evtx)
	default:
		log.Printf("skipping unsupported file: %s", path)
		return out
	}

	out.matches = res.Matches
	out.Matches = len(res.Matches)
	out.Processed = res.Processed
	out.Truncated = res.Truncated
	out.Status = StatusScanned
	if err != nil {
		out.Err = err
		out.Status = StatusFailed
		if errors.Is(err, scanner.ErrFileNotFound) {
			out.Status = StatusMissing
			log.Printf("the file %s does not exist", path)
		} else {
			log.Printf("error scanning %s: %v", path, err)
		}
	}
	return out
}

func hasExtension(exts []string, ext string) bool {
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// regularFiles lists dir's entries that are regular files, following
// symlinks, sorted by name.
func regularFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrFolderUnreadable, dir, err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}
