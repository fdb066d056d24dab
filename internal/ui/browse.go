package ui

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/logdog/internal/config"
	"github.com/five82/logdog/internal/prefs"
)

// openBrowser shows the directory picker.
func (m Model) openBrowser() (tea.Model, tea.Cmd) {
	fp := filepicker.New()
	fp.CurrentDirectory = m.browseStart()
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.ShowPermissions = false
	fp.ShowSize = false
	fp.Height = maxInt(m.height-headerLines-4, 3)

	accent := lipgloss.Color(m.theme.Accent)
	warn := lipgloss.Color(m.theme.Warning)
	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(warn)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(accent)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(warn).Bold(true)
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Faint))
	fp.Styles.DisabledFile = fp.Styles.File

	m.picker = fp
	m.view = ViewBrowse
	return m, fp.Init()
}

// browseStart picks the first existing directory among the folder field,
// the remembered browse directory and the home directory.
func (m Model) browseStart() string {
	candidates := []string{m.inputs[fieldFolder].Value(), m.browseDir}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, home)
	}
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		expanded, err := config.ExpandPath(c)
		if err != nil {
			continue
		}
		if info, err := os.Stat(expanded); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(expanded); err == nil {
				return abs
			}
			return expanded
		}
	}
	return "."
}

// handleBrowseKey processes keyboard input for the directory picker.
func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.view = ViewForm
		return m, m.focusInput(fieldFolder)
	case key.Matches(msg, m.keys.PickCurrent):
		return m.pickDirectory(m.picker.CurrentDirectory)
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		return m.pickDirectory(path)
	}
	return m, cmd
}

// pickDirectory fills the folder field with dir and returns to the form.
func (m Model) pickDirectory(dir string) (tea.Model, tea.Cmd) {
	m.inputs[fieldFolder].SetValue(dir)
	if strings.TrimSpace(m.inputs[fieldLabel].Value()) == "" {
		m.inputs[fieldLabel].SetValue(filepath.Base(dir))
	}
	if strings.TrimSpace(m.inputs[fieldColor].Value()) == "" {
		m.inputs[fieldColor].SetValue(m.inputs[fieldColor].Placeholder)
	}

	m.browseDir = filepath.Dir(dir)
	parent := m.browseDir
	if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.BrowseDir = parent }); err != nil {
		log.Printf("save prefs: %v", err)
	}

	m.view = ViewForm
	m.status = "Picked " + dir
	return m, m.focusInput(fieldLabel)
}

func (m Model) renderBrowse() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Choose a folder"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(truncateMiddle(m.picker.CurrentDirectory, maxInt(m.width-2, 20))))
	b.WriteString("\n\n")
	b.WriteString(m.picker.View())
	return b.String()
}
