package ui

import (
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/logdog/internal/excerpt"
)

// openLogs shows the tail of the application log.
func (m Model) openLogs() (tea.Model, tea.Cmd) {
	m.returnView = m.view
	m.view = ViewLogs
	m.loadLogs()
	return m, nil
}

func (m *Model) loadLogs() {
	styles := m.theme.Styles()
	if m.logPath == "" {
		m.logs.SetContent(styles.FaintText.Render("Logging to a file is disabled."))
		return
	}
	lines, err := excerpt.Tail(m.logPath, LogTailLines)
	if err != nil {
		log.Printf("read log tail: %v", err)
		m.logs.SetContent(styles.DangerText.Render(err.Error()))
		return
	}
	if len(lines) == 0 {
		m.logs.SetContent(styles.FaintText.Render("Log is empty: " + m.logPath))
		return
	}
	m.logs.SetContent(strings.Join(lines, "\n"))
	m.logs.GotoBottom()
}

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Logs), key.Matches(msg, m.keys.FormLogs):
		m.view = m.returnView
		if m.view == ViewForm {
			return m, m.focusInput(m.focus)
		}
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Rescan):
		m.loadLogs()
	case key.Matches(msg, m.keys.ScrollDown):
		m.logs.ScrollDown(1)
	case key.Matches(msg, m.keys.ScrollUp):
		m.logs.ScrollUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logs.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logs.HalfPageUp()
	case key.Matches(msg, m.keys.FirstPoint):
		m.logs.GotoTop()
	case key.Matches(msg, m.keys.LastPoint):
		m.logs.GotoBottom()
	}
	return m, nil
}
