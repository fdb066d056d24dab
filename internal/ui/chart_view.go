package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/logdog/internal/chart"
	"github.com/five82/logdog/internal/excerpt"
	"github.com/five82/logdog/internal/scanner"
	"github.com/five82/logdog/internal/series"
	"github.com/five82/logdog/internal/session"
)

// showResult switches to the chart view for res.
func (m *Model) showResult(res *session.Result) {
	m.result = res
	m.view = ViewChart
	m.timeline = m.windowTimeline(res.Collection)
	m.selected = 0
	m.refreshDetail()
}

// windowTimeline lists the selectable points: visible and inside the chart
// window, the same set Render draws.
func (m Model) windowTimeline(c *series.Collection) []series.Ref {
	from, to := m.sess.Window()
	return c.TimelineBetween(from, to)
}

func (m Model) collection() *series.Collection {
	if m.result == nil {
		return nil
	}
	return m.result.Collection
}

func (m Model) chartTitle() string {
	if m.result == nil || m.result.Matcher == nil {
		return chart.Title(strings.Join(m.sess.Phrases(), ", "))
	}
	return chart.Title(m.result.Matcher.String())
}

// selectedRef returns the highlighted point, if any.
func (m Model) selectedRef() (series.Ref, bool) {
	if m.selected < 0 || m.selected >= len(m.timeline) {
		return series.Ref{}, false
	}
	return m.timeline[m.selected], true
}

// handleChartKey processes keyboard input for the chart view.
func (m Model) handleChartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
	case key.Matches(msg, m.keys.Logs):
		return m.openLogs()
	case key.Matches(msg, m.keys.Back):
		m.view = ViewForm
		return m, m.focusInput(m.focus)
	case key.Matches(msg, m.keys.Rescan):
		return m.startRun()
	case key.Matches(msg, m.keys.Export):
		m.status = "Saving chart..."
		return m, m.exportCmd()
	case key.Matches(msg, m.keys.ToggleSeries):
		m.toggleSeries(int(msg.Runes[0] - '1'))
	case key.Matches(msg, m.keys.PrevPoint):
		m.moveSelection(m.selected - 1)
	case key.Matches(msg, m.keys.NextPoint):
		m.moveSelection(m.selected + 1)
	case key.Matches(msg, m.keys.FirstPoint):
		m.moveSelection(0)
	case key.Matches(msg, m.keys.LastPoint):
		m.moveSelection(len(m.timeline) - 1)
	case key.Matches(msg, m.keys.ScrollDown):
		m.detail.ScrollDown(1)
	case key.Matches(msg, m.keys.ScrollUp):
		m.detail.ScrollUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.detail.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.detail.HalfPageUp()
	}
	return m, nil
}

func (m *Model) moveSelection(i int) {
	if len(m.timeline) == 0 {
		m.selected = 0
		return
	}
	i = min(max(i, 0), len(m.timeline)-1)
	if i == m.selected {
		return
	}
	m.selected = i
	m.refreshDetail()
}

// toggleSeries flips the visibility of series i and keeps the selection on
// the same point, or the next one in time when that point was hidden.
func (m *Model) toggleSeries(i int) {
	c := m.collection()
	if c == nil || i < 0 || i >= c.Len() {
		return
	}
	prev, hadPrev := m.selectedRef()
	var prevAt time.Time
	if hadPrev {
		if p, ok := c.Point(prev); ok {
			prevAt = p.At
		}
	}

	visible := c.Toggle(i)
	m.timeline = m.windowTimeline(c)
	if visible {
		m.status = c.Series(i).Label + " shown"
	} else {
		m.status = c.Series(i).Label + " hidden"
	}

	m.selected = 0
	if hadPrev {
		for j, ref := range m.timeline {
			if ref == prev {
				m.selected = j
				break
			}
			if p, ok := c.Point(ref); ok && !p.At.Before(prevAt) {
				m.selected = j
				break
			}
			m.selected = j
		}
	}
	m.detail.GotoTop()
	m.refreshDetail()
}

// refreshDetail fills the detail pane with the selected point and its
// surrounding source lines.
func (m *Model) refreshDetail() {
	c := m.collection()
	ref, ok := m.selectedRef()
	if c == nil || !ok {
		m.detail.SetContent(m.theme.Styles().FaintText.Render("No point selected."))
		return
	}
	p, ok := c.Point(ref)
	if !ok {
		m.detail.SetContent("")
		return
	}
	s := c.Series(ref.Series)
	styles := m.theme.Styles()
	label := styles.MutedText.Width(9)

	var b strings.Builder
	b.WriteString(label.Render("Series"))
	b.WriteString(m.swatch(s.Color) + " " + styles.Text.Render(s.Label))
	b.WriteString("\n")
	b.WriteString(label.Render("Time"))
	b.WriteString(styles.Text.Render(p.At.Format(chart.TimeLayout)))
	b.WriteString(styles.FaintText.Render(fmt.Sprintf("  (%d of %d)", m.selected+1, len(m.timeline))))
	b.WriteString("\n")
	if c.Mode == series.ModeCounts {
		b.WriteString(label.Render("Count"))
		b.WriteString(styles.Text.Render(fmt.Sprintf("%d", p.Count)))
		b.WriteString("\n")
	}
	b.WriteString(label.Render("Source"))
	b.WriteString(styles.Text.Render(sourceLabel(p)))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Width(maxInt(m.detail.Width-2, 10)).Render(p.Payload))
	b.WriteString("\n")

	if p.Kind == scanner.KindText && p.Line > 0 {
		lines, err := excerpt.Around(p.Source, p.Line, ExcerptRadius)
		switch {
		case err != nil:
			b.WriteString("\n")
			b.WriteString(styles.DangerText.Render("context unavailable: " + err.Error()))
			b.WriteString("\n")
		case len(lines) > 0:
			b.WriteString("\n")
			b.WriteString(renderExcerpt(lines, styles, m.detail.Width))
		}
	}
	m.detail.SetContent(b.String())
}

func sourceLabel(p series.Point) string {
	switch {
	case p.Kind == scanner.KindEvtx && p.Line > 0:
		return fmt.Sprintf("%s (record %d)", p.Source, p.Line)
	case p.Line > 0:
		return fmt.Sprintf("%s:%d", p.Source, p.Line)
	default:
		return p.Source
	}
}

func renderExcerpt(lines []excerpt.Line, styles Styles, width int) string {
	numWidth := len(fmt.Sprint(lines[len(lines)-1].Number))
	var b strings.Builder
	for _, l := range lines {
		marker := "  "
		textStyle := styles.MutedText
		if l.Focus {
			marker = "> "
			textStyle = styles.WarningText
		}
		prefix := fmt.Sprintf("%s%*d │ ", marker, numWidth, l.Number)
		b.WriteString(styles.FaintText.Render(prefix))
		b.WriteString(textStyle.Render(truncate(l.Text, maxInt(width-len([]rune(prefix))-1, 10))))
		b.WriteString("\n")
	}
	return b.String()
}

// exportCmd saves the visible series as a PNG in the export directory.
// The collection is copied so later toggles do not race the render.
func (m Model) exportCmd() tea.Cmd {
	c := m.collection()
	if c == nil {
		return nil
	}
	var visible []*series.Series
	for _, s := range c.Visible() {
		cp := *s
		visible = append(visible, &cp)
	}
	snapshot := series.NewCollection(c.Mode, visible...)

	from, to := m.sess.Window()
	opts := chart.ExportOptions{
		Format: chart.FormatPNG,
		Title:  m.chartTitle(),
		From:   from,
		To:     to,
	}
	dir := m.exportDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, fmt.Sprintf("logdog-%s.png", time.Now().Format("20060102-150405")))

	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportDoneMsg{path: path, err: fmt.Errorf("create export dir: %w", err)}
		}
		return exportDoneMsg{path: path, err: chart.ExportFile(path, snapshot, opts)}
	}
}

// renderChart renders the terminal chart, the legend and the detail pane.
func (m Model) renderChart() string {
	styles := m.theme.Styles()
	c := m.collection()
	if c == nil {
		return styles.FaintText.Render("No results.")
	}

	title := styles.AccentText.Bold(true).Render(m.chartTitle())
	if m.status != "" {
		title += "  " + styles.WarningText.Render(m.status)
	}

	legend := chart.RenderLegend(c)
	compact := m.width < LayoutCompactWidth
	chartWidth := m.width
	chartHeight := m.height - headerLines - DetailPaneHeight - 1
	if compact {
		chartHeight -= c.Len() + 1
	} else {
		chartWidth = m.width - LayoutLegendWidth - 1
	}
	chartHeight = maxInt(chartHeight, 5)

	opts := chart.Options{
		Width:         chartWidth,
		Height:        chartHeight,
		AxisColor:     m.theme.Faint,
		SelectedColor: m.theme.Warning,
	}
	opts.From, opts.To = m.sess.Window()
	if ref, ok := m.selectedRef(); ok {
		opts.Selected = &ref
	}
	plot := chart.Render(c, opts)

	var body string
	if compact {
		body = lipgloss.JoinVertical(lipgloss.Left, plot, "", legend)
	} else {
		legendBox := lipgloss.NewStyle().Width(LayoutLegendWidth).PaddingLeft(1).Render(legend)
		body = lipgloss.JoinHorizontal(lipgloss.Top, plot, legendBox)
	}

	detail := styles.FocusPanel.Width(maxInt(m.width-2, 10)).Render(m.detail.View())
	return lipgloss.JoinVertical(lipgloss.Left, title, body, detail)
}
