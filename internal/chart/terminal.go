// Package chart draws series collections in the terminal and exports them
// as images.
package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/logdog/internal/series"
)

// TimeLayout formats axis tick labels.
const TimeLayout = "2006-01-02 15:04:05"

const (
	pointGlyph    = '●'
	selectedGlyph = '◆'
	minPlotWidth  = 10
	minPlotHeight = 3
)

// Options control terminal rendering.
type Options struct {
	// Width and Height bound the whole rendering, axes included.
	Width  int
	Height int

	// Selected highlights one point; nil means none.
	Selected *series.Ref

	// From and To clamp the time axis when non-zero.
	From time.Time
	To   time.Time

	AxisColor     string
	SelectedColor string
}

// Title returns the chart heading for a quoted phrase list.
func Title(phrases string) string {
	return fmt.Sprintf("Occurrences of %s over time", phrases)
}

type cell struct {
	series   int
	selected bool
	set      bool
}

// Render draws the visible points of c as a character grid with a value
// axis on the left and time ticks underneath.
func Render(c *series.Collection, opts Options) string {
	bounds := c.Bounds()
	if bounds.Empty {
		return "No visible points. Toggle a series with 1-9."
	}

	yMax := valueMax(c.Mode, bounds)
	yLabels := []string{formatValue(yMax), formatValue(yMax / 2), "0"}
	yw := 0
	for _, l := range yLabels {
		yw = max(yw, len(l))
	}

	pw := max(opts.Width-yw-1, minPlotWidth)
	ph := max(opts.Height-2, minPlotHeight)
	start, end := TimeRange(bounds, opts.From, opts.To)
	span := end.Sub(start)

	grid := make([][]cell, ph)
	for i := range grid {
		grid[i] = make([]cell, pw)
	}
	for si, s := range c.All() {
		if !s.Visible {
			continue
		}
		for pi, p := range s.Points {
			if p.At.Before(start) || p.At.After(end) {
				continue
			}
			col := int(math.Round(float64(p.At.Sub(start)) / float64(span) * float64(pw-1)))
			row := int(math.Round((1 - p.Value/yMax) * float64(ph-1)))
			row = min(max(row, 0), ph-1)
			sel := opts.Selected != nil && *opts.Selected == series.Ref{Series: si, Index: pi}
			if grid[row][col].selected && !sel {
				continue
			}
			grid[row][col] = cell{series: si, selected: sel, set: true}
		}
	}

	axis := lipgloss.NewStyle()
	if opts.AxisColor != "" {
		axis = axis.Foreground(lipgloss.Color(opts.AxisColor))
	}
	selStyle := lipgloss.NewStyle().Bold(true)
	if opts.SelectedColor != "" {
		selStyle = selStyle.Foreground(lipgloss.Color(opts.SelectedColor))
	}
	pointStyles := make([]lipgloss.Style, c.Len())
	for i, s := range c.All() {
		pointStyles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(hexOr(s.Color, "#7f7f7f")))
	}

	var b strings.Builder
	for r := 0; r < ph; r++ {
		label := ""
		switch r {
		case 0:
			label = yLabels[0]
		case (ph - 1) / 2:
			label = yLabels[1]
		case ph - 1:
			label = yLabels[2]
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s", yw, label)))
		if label != "" {
			b.WriteString(axis.Render("┤"))
		} else {
			b.WriteString(axis.Render("│"))
		}
		for _, cl := range grid[r] {
			switch {
			case !cl.set:
				b.WriteByte(' ')
			case cl.selected:
				b.WriteString(selStyle.Render(string(selectedGlyph)))
			default:
				b.WriteString(pointStyles[cl.series].Render(string(pointGlyph)))
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString(axis.Render(strings.Repeat(" ", yw) + "└" + strings.Repeat("─", pw)))
	b.WriteByte('\n')
	b.WriteString(axis.Render(strings.Repeat(" ", yw+1) + tickLine(start, end, pw)))
	return b.String()
}

// TimeRange returns the x extent for bounds, clamped by from and to when
// they are set. A zero-width range is widened by a second on each side.
func TimeRange(bounds series.Bounds, from, to time.Time) (time.Time, time.Time) {
	start, end := bounds.Start, bounds.End
	if !from.IsZero() {
		start = from
	}
	if !to.IsZero() {
		end = to
	}
	if !end.After(start) {
		mid := start
		start, end = mid.Add(-time.Second), mid.Add(time.Second)
	}
	return start, end
}

// valueMax is the top of the y axis: 2 in points mode so every point sits
// on the middle line, the peak count otherwise.
func valueMax(mode series.Mode, bounds series.Bounds) float64 {
	if mode != series.ModeCounts {
		return 2
	}
	return math.Max(bounds.Max, 1)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// tickLine places start, middle and end labels on a line of width runes,
// dropping those that would collide.
func tickLine(start, end time.Time, width int) string {
	line := []rune(strings.Repeat(" ", width))
	place := func(pos int, label string) bool {
		r := []rune(label)
		if pos < 0 || pos+len(r) > width {
			return false
		}
		for i := pos; i < pos+len(r); i++ {
			if line[i] != ' ' {
				return false
			}
		}
		// keep one blank column between labels
		if pos > 0 && line[pos-1] != ' ' {
			return false
		}
		copy(line[pos:], r)
		return true
	}

	startLabel := start.Format(TimeLayout)
	endLabel := end.Format(TimeLayout)
	n := len([]rune(startLabel))
	place(0, startLabel)
	place(width-n, endLabel)
	mid := start.Add(end.Sub(start) / 2)
	place(width/2-n/2, mid.Format(TimeLayout))
	return strings.TrimRight(string(line), " ")
}

// RenderLegend lists every series with its toggle key, visibility box,
// color swatch and match count.
func RenderLegend(c *series.Collection) string {
	var b strings.Builder
	for i, s := range c.All() {
		box := "[ ]"
		if s.Visible {
			box = "[x]"
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(hexOr(s.Color, "#7f7f7f"))).Render(string(pointGlyph))
		key := " "
		if i < 9 {
			key = strconv.Itoa(i + 1)
		}
		fmt.Fprintf(&b, "%s %s %s %s (%d)", key, box, swatch, s.Label, s.Matches())
		if i < c.Len()-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
