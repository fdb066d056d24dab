// Package report summarises scan results for headless output.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/five82/logdog/internal/aggregate"
	"github.com/five82/logdog/internal/series"
	"github.com/five82/logdog/internal/session"
)

// Report is the complete scan output.
type Report struct {
	Summary  Summary         `json:"summary"`
	Folders  []FolderSummary `json:"folders"`
	Metadata Metadata        `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	Folders int        `json:"folders"`
	Files   int        `json:"files"`
	Matches int        `json:"matches"`
	Series  int        `json:"series"`
	First   *time.Time `json:"first,omitempty"`
	Last    *time.Time `json:"last,omitempty"`
}

// FolderSummary describes one scanned folder.
type FolderSummary struct {
	Label   string             `json:"label"`
	Path    string             `json:"path"`
	Color   string             `json:"color"`
	Files   int                `json:"files"`
	Failed  int                `json:"failed,omitempty"`
	Matches int                `json:"matches"`
	Peak    int                `json:"peak_per_second"`
	Error   string             `json:"error,omitempty"`
	Buckets []aggregate.Bucket `json:"buckets,omitempty"`
	Points  []PointSummary     `json:"points,omitempty"`
}

// PointSummary is one plotted point with its payload.
type PointSummary struct {
	At     time.Time `json:"at"`
	Value  float64   `json:"value"`
	Source string    `json:"source"`
	Line   int       `json:"line"`
	Text   string    `json:"text"`
}

// Metadata provides context about the scan run.
type Metadata struct {
	Phrases    []string      `json:"phrases"`
	Mode       series.Mode   `json:"mode"`
	ConfigFile string        `json:"config_file,omitempty"`
	ChartFile  string        `json:"chart_file,omitempty"`
	AnalyzedAt time.Time     `json:"analyzed_at"`
	Duration   time.Duration `json:"duration_ns"`
}

// NewReport builds a Report from a finished run.
func NewReport(res *session.Result, configFile string) *Report {
	r := &Report{
		Metadata: Metadata{
			ConfigFile: configFile,
			AnalyzedAt: res.Started.Add(res.Elapsed),
			Duration:   res.Elapsed,
		},
	}
	if res.Matcher != nil {
		r.Metadata.Phrases = res.Matcher.Phrases()
	}
	coll := res.Collection
	if coll != nil {
		r.Metadata.Mode = coll.Mode
	}

	next := 0
	for _, fr := range res.Folders {
		fs := FolderSummary{
			Label:   fr.Entry.Label,
			Path:    fr.Entry.Path,
			Color:   fr.Entry.Color,
			Files:   fr.Files,
			Failed:  fr.Failed,
			Matches: fr.Matches,
		}
		if fr.Err != nil {
			fs.Error = fr.Err.Error()
		}
		if fr.Matches > 0 {
			if s := coll.Series(next); s != nil {
				fs.Buckets = bucketsOf(s)
				fs.Peak = aggregate.Peak(fs.Buckets)
				fs.Points = pointsOf(s)
			}
			next++
		}
		r.Folders = append(r.Folders, fs)
		r.Summary.Files += fr.Files
		r.Summary.Matches += fr.Matches
	}
	r.Summary.Folders = len(res.Folders)
	r.Summary.Series = coll.Len()

	if b := coll.Bounds(); !b.Empty {
		first, last := b.Start, b.End
		r.Summary.First, r.Summary.Last = &first, &last
	}
	return r
}

func bucketsOf(s *series.Series) []aggregate.Bucket {
	counts := make(map[time.Time]int)
	for _, p := range s.Points {
		counts[p.At.Truncate(time.Second)] += p.Count
	}
	return aggregate.Sorted(counts)
}

func pointsOf(s *series.Series) []PointSummary {
	out := make([]PointSummary, 0, len(s.Points))
	for _, p := range s.Points {
		out = append(out, PointSummary{At: p.At, Value: p.Value, Source: p.Source, Line: p.Line, Text: p.Payload})
	}
	return out
}

// HasMatches reports whether any folder matched.
func (r *Report) HasMatches() bool {
	return r.Summary.Matches > 0
}

// Formatter renders a report in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose includes every matched line.
	Verbose bool

	// Quiet prints the summary only.
	Quiet bool
}

// NewFormatter returns the formatter called name.
func NewFormatter(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "", "text":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (must be text or json)", name)
	}
}
