package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the logo, current view and scan status line.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)
	s := styles.WithBackground(m.theme.Surface)

	parts := []string{
		bg.Render("logdog", s.Logo),
		bg.Render(m.view.String(), s.AccentText),
		bg.Render("mode "+modeLabel(m.sess.Mode()), s.MutedText),
		bg.Render(fmt.Sprintf("%d folders", len(m.sess.Entries())), s.MutedText),
	}
	if phrases := m.sess.Phrases(); len(phrases) > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("%d phrases", len(phrases)), s.MutedText))
	}

	left := bg.Join(parts, "  ")
	phase := m.snapshot.Phase.String()
	badge := styles.PhaseStyle(phase).Render(strings.ToUpper(phase))
	right := badge + bg.Space() + bg.Render(m.theme.Name, s.FaintText)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	line := bg.Space() + left
	if gap > 0 {
		line += bg.Spaces(gap) + right
	}
	return bg.FillLine(line, m.width)
}

// renderCommandBar renders the key hints for the active view.
func (m Model) renderCommandBar() string {
	bg := NewBgStyle(m.theme.Background)
	s := m.theme.Styles().WithBackground(m.theme.Background)
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning))

	var parts []string
	for _, binding := range m.keys.ShortHelp(m.view) {
		h := binding.Help()
		parts = append(parts, bg.Render("<"+h.Key+">", keyStyle)+bg.Space()+bg.Render(h.Desc, s.MutedText))
	}
	return bg.FillLine(bg.Space()+bg.Join(parts, "  "), m.width)
}
