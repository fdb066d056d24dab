package ui

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/logdog/internal/chart"
	"github.com/five82/logdog/internal/prefs"
	"github.com/five82/logdog/internal/session"
)

// Form fields, in focus order.
const (
	fieldFolder = iota
	fieldColor
	fieldLabel
	fieldPhrases
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldFolder:  "Folder",
	fieldColor:   "Color",
	fieldLabel:   "Label",
	fieldPhrases: "Phrases",
}

func newFormInputs(sess *session.Controller) []textinput.Model {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 4096
		inputs[i] = ti
	}
	inputs[fieldFolder].Placeholder = "/var/log/app (ctrl+o to browse)"
	inputs[fieldColor].Placeholder = chart.PaletteColor(len(sess.Entries()))
	inputs[fieldLabel].Placeholder = "legend label"
	inputs[fieldPhrases].Placeholder = `timeout, "disk full, retrying"`
	inputs[fieldPhrases].SetValue(sess.PhraseInput())
	return inputs
}

// focusInput moves focus to field i.
func (m *Model) focusInput(i int) tea.Cmd {
	m.focus = i
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == i {
			cmd = m.inputs[j].Focus()
			continue
		}
		m.inputs[j].Blur()
	}
	return cmd
}

// handleFormKey processes keyboard input for the form view.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.FormHelp):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Browse):
		return m.openBrowser()

	case key.Matches(msg, m.keys.FormLogs):
		return m.openLogs()

	case key.Matches(msg, m.keys.RunScan):
		if err := m.sess.SetPhrases(m.inputs[fieldPhrases].Value()); err != nil {
			m.modal = newErrorModal("Cannot run", err)
			return m, nil
		}
		return m.startRun()

	case key.Matches(msg, m.keys.ToggleMode):
		mode := m.sess.ToggleMode()
		m.status = "Mode: " + modeLabel(mode)
		if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.Mode = string(mode) }); err != nil {
			log.Printf("save prefs: %v", err)
		}
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		return m, m.focusInput((m.focus + 1) % fieldCount)

	case key.Matches(msg, m.keys.PrevField):
		return m, m.focusInput((m.focus + fieldCount - 1) % fieldCount)

	case key.Matches(msg, m.keys.Submit):
		if m.focus == fieldPhrases {
			return m.submitPhrases()
		}
		return m.submitEntry()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submitEntry adds the folder entry from the first three fields.
func (m Model) submitEntry() (tea.Model, tea.Cmd) {
	path := m.inputs[fieldFolder].Value()
	color := m.inputs[fieldColor].Value()
	label := m.inputs[fieldLabel].Value()
	if err := m.sess.AddEntry(path, color, label); err != nil {
		m.modal = newErrorModal("Invalid folder entry", err)
		return m, nil
	}
	for _, i := range []int{fieldFolder, fieldColor, fieldLabel} {
		m.inputs[i].Reset()
	}
	m.inputs[fieldColor].Placeholder = chart.PaletteColor(len(m.sess.Entries()))
	m.status = fmt.Sprintf("Added %s", strings.TrimSpace(label))
	return m, m.focusInput(fieldFolder)
}

func (m Model) submitPhrases() (tea.Model, tea.Cmd) {
	if err := m.sess.SetPhrases(m.inputs[fieldPhrases].Value()); err != nil {
		m.modal = newErrorModal("Invalid phrases", err)
		return m, nil
	}
	m.status = fmt.Sprintf("%d phrases set", len(m.sess.Phrases()))
	return m, nil
}

// renderForm renders the folder entry form and the entry list.
func (m Model) renderForm() string {
	styles := m.theme.Styles()
	var b strings.Builder

	labelStyle := styles.MutedText.Width(10)
	for i, in := range m.inputs {
		name := fieldLabels[i]
		if i == m.focus {
			b.WriteString(styles.AccentText.Bold(true).Width(10).Render(name))
		} else {
			b.WriteString(labelStyle.Render(name))
		}
		b.WriteString(" ")
		b.WriteString(in.View())
		b.WriteString("\n")
		if i == fieldLabel {
			b.WriteString(styles.FaintText.Render(padRight("", 11) + "enter adds the folder"))
			b.WriteString("\n\n")
		}
	}
	b.WriteString("\n")

	entries := m.sess.Entries()
	b.WriteString(styles.AccentText.Bold(true).Render(fmt.Sprintf("Folders (%d)", len(entries))))
	b.WriteString("\n")
	if len(entries) == 0 {
		b.WriteString(styles.FaintText.Render("No folders yet. Fill in folder, color and label, then press enter."))
		b.WriteString("\n")
	}
	for i, e := range entries {
		b.WriteString(fmt.Sprintf("%2d ", i+1))
		b.WriteString(m.swatch(e.Color))
		b.WriteString(" ")
		b.WriteString(styles.Text.Render(padRight(truncate(e.Label, 20), 20)))
		b.WriteString(" ")
		b.WriteString(styles.MutedText.Render(truncateMiddle(e.Path, maxInt(m.width-30, 20))))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styles.WarningText.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

// swatch renders a color sample block.
func (m Model) swatch(color string) string {
	hex, err := chart.Hex(color)
	if err != nil {
		hex = m.theme.Muted
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██")
}
