package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) newProgress() progress.Model {
	p := progress.New(
		progress.WithSolidFill(m.theme.Accent),
		progress.WithWidth(maxInt(m.width-8, 10)),
	)
	p.EmptyColor = m.theme.SurfaceAlt
	return p
}

// handleScanningKey processes keyboard input while a scan runs.
func (m Model) handleScanningKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		if m.cancelScan != nil && !m.cancelling {
			m.cancelScan()
			m.cancelling = true
		}
		return m, nil
	case key.Matches(msg, m.keys.Logs):
		return m.openLogs()
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil
	}
	return m, nil
}

// renderScanning renders the progress bar and the current file.
func (m Model) renderScanning() string {
	styles := m.theme.Styles()
	snap := m.snapshot
	var b strings.Builder

	title := "Scanning"
	if m.cancelling {
		title = "Cancelling"
	}
	b.WriteString(styles.AccentText.Bold(true).Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.progress.ViewAs(snap.Fraction()))
	b.WriteString("\n\n")

	b.WriteString(styles.Text.Render(fmt.Sprintf("Files    %d / %d", snap.FilesDone, snap.FilesTotal)))
	b.WriteString("\n")
	b.WriteString(styles.Text.Render(fmt.Sprintf("Matches  %d", snap.Matches)))
	b.WriteString("\n")
	b.WriteString(styles.Text.Render("Elapsed  " + formatElapsed(snap.Elapsed())))
	b.WriteString("\n\n")

	limit := maxInt(m.width-10, 20)
	if snap.Folder != "" {
		b.WriteString(styles.MutedText.Render("Folder   " + truncateMiddle(snap.Folder, limit)))
		b.WriteString("\n")
	}
	if snap.File != "" {
		b.WriteString(styles.MutedText.Render("File     " + truncateMiddle(snap.File, limit)))
		b.WriteString("\n")
	}
	if len(snap.Recent) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("Recent"))
		b.WriteString("\n")
		for _, f := range snap.Recent {
			b.WriteString(styles.FaintText.Render("  " + truncate(filepath.Base(f), limit)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// formatElapsed renders d as m:ss or h:mm:ss.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	mins := int(d/time.Minute) % 60
	secs := int(d/time.Second) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}
