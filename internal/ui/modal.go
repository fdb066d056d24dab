package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// messageModal shows a titled message until enter or esc is pressed.
type messageModal struct {
	title   string
	message string
	danger  bool
}

func newErrorModal(title string, err error) messageModal {
	return messageModal{title: title, message: err.Error(), danger: true}
}

func newInfoModal(title, message string) messageModal {
	return messageModal{title: title, message: message}
}

func (d messageModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil, false
	}
	if key.Matches(keyMsg, keys.Escape, keys.Submit) {
		return d, nil, true
	}
	return d, nil, false
}

func (d messageModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	border := theme.Accent
	titleStyle := styles.AccentText.Bold(true)
	if d.danger {
		border = theme.Danger
		titleStyle = styles.DangerText
	}

	modalWidth := 56
	if width > 0 && width-4 < modalWidth {
		modalWidth = maxInt(width-4, 20)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(d.title))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Width(modalWidth - 6).Render(d.message))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("enter/esc to close"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(1, 2).
		Width(modalWidth).
		Render(b.String())

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
