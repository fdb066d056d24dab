package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	ForceQuit  key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Logs       key.Binding
	Escape     key.Binding

	// Form
	NextField  key.Binding
	PrevField  key.Binding
	Submit     key.Binding
	Browse     key.Binding
	RunScan    key.Binding
	ToggleMode key.Binding
	FormHelp   key.Binding
	FormLogs   key.Binding

	// Directory browser
	PickCurrent key.Binding

	// Chart
	ToggleSeries key.Binding
	PrevPoint    key.Binding
	NextPoint    key.Binding
	FirstPoint   key.Binding
	LastPoint    key.Binding
	Export       key.Binding
	Back         key.Binding
	Rescan       key.Binding

	// Detail and log panes
	ScrollDown   key.Binding
	ScrollUp     key.Binding
	HalfPageDown key.Binding
	HalfPageUp   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "Quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Logs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Show application log"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close / cancel"),
		),

		// Form
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Add folder / set phrases"),
		),
		Browse: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "Browse for folder"),
		),
		RunScan: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "Run scan"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "Toggle points/counts"),
		),
		FormHelp: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "Toggle help"),
		),
		FormLogs: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "Show application log"),
		),

		// Directory browser
		PickCurrent: key.NewBinding(
			key.WithKeys("."),
			key.WithHelp(".", "Pick current directory"),
		),

		// Chart
		ToggleSeries: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "Toggle series"),
		),
		PrevPoint: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/left", "Previous point"),
		),
		NextPoint: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/right", "Next point"),
		),
		FirstPoint: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "First point"),
		),
		LastPoint: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Last point"),
		),
		Export: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Save chart as PNG"),
		),
		Back: key.NewBinding(
			key.WithKeys("b", "esc"),
			key.WithHelp("b/esc", "Back to form"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Rescan"),
		),

		// Detail and log panes
		ScrollDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/k", "Scroll detail"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("k", "up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d", "pgdown"),
			key.WithHelp("ctrl+d/u", "Half page down/up"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u", "pgup"),
		),
	}
}

// ShortHelp returns key bindings for the command bar of the given view.
func (k keyMap) ShortHelp(v View) []key.Binding {
	switch v {
	case ViewForm:
		return []key.Binding{k.Submit, k.Browse, k.RunScan, k.ToggleMode, k.FormHelp}
	case ViewBrowse:
		return []key.Binding{k.PickCurrent, k.Escape}
	case ViewScanning:
		return []key.Binding{k.Escape}
	case ViewChart:
		return []key.Binding{k.ToggleSeries, k.PrevPoint, k.NextPoint, k.Export, k.Back, k.Rescan, k.Help}
	case ViewLogs:
		return []key.Binding{k.ScrollDown, k.Escape}
	default:
		return []key.Binding{k.Help, k.Quit}
	}
}

// FullHelp returns grouped key bindings for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Form
		{k.NextField, k.PrevField, k.Submit, k.Browse, k.RunScan, k.ToggleMode, k.FormHelp, k.FormLogs},
		// Chart
		{k.ToggleSeries, k.PrevPoint, k.NextPoint, k.FirstPoint, k.LastPoint, k.Export, k.Back, k.Rescan},
		// Panes
		{k.ScrollDown, k.HalfPageDown, k.PickCurrent},
		// General
		{k.CycleTheme, k.Logs, k.Help, k.Escape, k.Quit, k.ForceQuit},
	}
}
