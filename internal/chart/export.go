package chart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/five82/logdog/internal/series"
)

// ErrNothingToPlot is returned when no visible series has points.
var ErrNothingToPlot = errors.New("no visible points to plot")

// Format is an image export format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// FormatFromPath picks the export format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".svg":
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unsupported chart format %q (want .png or .svg)", filepath.Ext(path))
	}
}

// ExportOptions control image export.
type ExportOptions struct {
	Format Format
	Title  string
	Width  int
	Height int
	From   time.Time
	To     time.Time
}

// Defaults for exported image size.
const (
	DefaultExportWidth  = 1200
	DefaultExportHeight = 600
)

// Build assembles the go-chart definition for the visible series of c.
func Build(c *series.Collection, opts ExportOptions) (gochart.Chart, error) {
	bounds := c.Bounds()
	if bounds.Empty {
		return gochart.Chart{}, ErrNothingToPlot
	}
	start, end := TimeRange(bounds, opts.From, opts.To)

	var list []gochart.Series
	for _, s := range c.Visible() {
		ts := gochart.TimeSeries{
			Name: s.Label,
			Style: gochart.Style{
				StrokeWidth: 0,
				DotWidth:    4,
				DotColor:    drawingColor(s.Color),
			},
		}
		for _, p := range s.Points {
			if p.At.Before(start) || p.At.After(end) {
				continue
			}
			ts.XValues = append(ts.XValues, p.At)
			ts.YValues = append(ts.YValues, p.Value)
		}
		if len(ts.XValues) == 0 {
			continue
		}
		list = append(list, ts)
	}
	if len(list) == 0 {
		return gochart.Chart{}, ErrNothingToPlot
	}

	yAxis := gochart.YAxis{Name: "Occurrences"}
	if c.Mode != series.ModeCounts {
		yAxis.Range = &gochart.ContinuousRange{Min: 0, Max: 2}
		yAxis.Ticks = []gochart.Tick{{Value: 0, Label: "0"}, {Value: 1, Label: "1"}, {Value: 2, Label: "2"}}
	} else {
		yAxis.Range = &gochart.ContinuousRange{Min: 0, Max: valueMax(c.Mode, bounds) + 1}
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = DefaultExportWidth
	}
	if height <= 0 {
		height = DefaultExportHeight
	}

	ch := gochart.Chart{
		Title:      opts.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 48, Left: 16, Right: 16, Bottom: 96}},
		XAxis: gochart.XAxis{
			Name:           "Timestamp",
			ValueFormatter: gochart.TimeValueFormatterWithFormat(TimeLayout),
			Range: &gochart.ContinuousRange{
				Min: gochart.TimeToFloat64(start),
				Max: gochart.TimeToFloat64(end),
			},
			Style: gochart.Style{TextRotationDegrees: 45},
		},
		YAxis:  yAxis,
		Series: list,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch, nil
}

// Export renders the visible series of c to w as PNG or SVG.
func Export(w io.Writer, c *series.Collection, opts ExportOptions) error {
	ch, err := Build(c, opts)
	if err != nil {
		return err
	}
	provider := gochart.PNG
	if opts.Format == FormatSVG {
		provider = gochart.SVG
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// ExportFile writes the chart to path, choosing the format from its extension.
func ExportFile(path string, c *series.Collection, opts ExportOptions) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	opts.Format = format

	f, err := os.Create(path) // #nosec G304 -- user-chosen output path
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := Export(f, c, opts); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close chart file: %w", err)
	}
	return nil
}
