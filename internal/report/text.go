package report

import (
	"context"
	"fmt"
	"io"
	"strings"
)

const timeLayout = "2006-01-02 15:04:05"

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "logdog: %d folders, %d files, %d matches\n",
		report.Summary.Folders, report.Summary.Files, report.Summary.Matches)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	var b strings.Builder
	b.WriteString("=== logdog scan report ===\n")
	fmt.Fprintf(&b, "Phrases: %s\n", quoteList(report.Metadata.Phrases))
	fmt.Fprintf(&b, "Mode: %s\n\n", report.Metadata.Mode)

	for _, fs := range report.Folders {
		fmt.Fprintf(&b, "[%s] %s\n", fs.Label, fs.Path)
		if fs.Error != "" {
			fmt.Fprintf(&b, "  Error: %s\n\n", fs.Error)
			continue
		}
		fmt.Fprintf(&b, "  Files: %d", fs.Files)
		if fs.Failed > 0 {
			fmt.Fprintf(&b, " (%d failed)", fs.Failed)
		}
		b.WriteString("\n")
		if fs.Matches == 0 {
			b.WriteString("  No matches\n\n")
			continue
		}
		fmt.Fprintf(&b, "  Matches: %d (peak %d/s)\n", fs.Matches, fs.Peak)
		if n := len(fs.Buckets); n > 0 {
			fmt.Fprintf(&b, "  First: %s\n", fs.Buckets[0].At.Format(timeLayout))
			fmt.Fprintf(&b, "  Last:  %s\n", fs.Buckets[n-1].At.Format(timeLayout))
		}
		if f.opts.Verbose {
			for _, p := range fs.Points {
				fmt.Fprintf(&b, "    %s %s:%d %s\n", p.At.Format(timeLayout), p.Source, p.Line, firstLine(p.Text))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n")
	fmt.Fprintf(&b, "Summary: %d folders, %d files, %d matches in %d series\n",
		report.Summary.Folders, report.Summary.Files, report.Summary.Matches, report.Summary.Series)
	if f.opts.Verbose {
		fmt.Fprintf(&b, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}
	if report.Metadata.ChartFile != "" {
		fmt.Fprintf(&b, "Chart: %s\n", report.Metadata.ChartFile)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
