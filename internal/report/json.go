package report

import (
	"context"
	"encoding/json"
	"io"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format renders the report as JSON. Points are included only when verbose.
func (f *JSONFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if f.opts.Quiet {
		return encoder.Encode(report.Summary)
	}
	if f.opts.Verbose {
		return encoder.Encode(report)
	}

	trimmed := *report
	trimmed.Folders = make([]FolderSummary, len(report.Folders))
	for i, fs := range report.Folders {
		fs.Points = nil
		trimmed.Folders[i] = fs
	}
	return encoder.Encode(&trimmed)
}
