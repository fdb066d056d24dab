package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	items []key.Binding
}

// helpSections lists the sections relevant to v, most specific first.
func (m Model) helpSections(v View) []helpSection {
	k := m.keys
	form := helpSection{
		title: "Form",
		items: []key.Binding{k.NextField, k.PrevField, k.Submit, k.Browse, k.RunScan, k.ToggleMode, k.FormLogs, k.FormHelp},
	}
	chart := helpSection{
		title: "Chart",
		items: []key.Binding{k.ToggleSeries, k.PrevPoint, k.NextPoint, k.FirstPoint, k.LastPoint, k.Export, k.Back, k.Rescan},
	}
	panes := helpSection{
		title: "Detail",
		items: []key.Binding{k.ScrollDown, k.HalfPageDown},
	}
	general := helpSection{
		title: "General",
		items: []key.Binding{k.CycleTheme, k.Logs, k.Help, k.Quit},
	}

	switch v {
	case ViewForm:
		return []helpSection{form, {title: "General", items: []key.Binding{k.ForceQuit}}}
	case ViewChart:
		return []helpSection{chart, panes, general}
	default:
		return []helpSection{general}
	}
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 34)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	sections := m.helpSections(m.view)
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, binding := range section.items {
			h := binding.Help()
			if h.Key == "" {
				continue
			}
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(styles.Text.Render(h.Desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(44)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
