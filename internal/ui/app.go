package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/logdog/internal/prefs"
	"github.com/five82/logdog/internal/series"
	"github.com/five82/logdog/internal/session"
	"github.com/five82/logdog/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewForm View = iota
	ViewBrowse
	ViewScanning
	ViewChart
	ViewLogs
)

func (v View) String() string {
	switch v {
	case ViewBrowse:
		return "Browse"
	case ViewScanning:
		return "Scanning"
	case ViewChart:
		return "Chart"
	case ViewLogs:
		return "Log"
	default:
		return "Setup"
	}
}

// ScanFunc starts a background scan of sess that reports into store.
type ScanFunc func(ctx context.Context, store *state.Store, sess *session.Controller) (context.CancelFunc, error)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Session   *session.Controller
	Store     *state.Store
	StartScan ScanFunc
	ThemeName string
	PrefsPath string
	BrowseDir string
	ExportDir string
	LogPath   string
	Tick      time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	sess      *session.Controller
	store     *state.Store
	startScan ScanFunc
	prefsPath string
	browseDir string
	exportDir string
	logPath   string
	tick      time.Duration

	// UI state
	keys       keyMap
	theme      Theme
	view       View
	returnView View
	width      int
	height     int
	ready      bool
	status     string

	// Form state
	inputs []textinput.Model
	focus  int

	// Directory browser
	picker filepicker.Model

	// Scan state
	snapshot   state.Snapshot
	generation int
	cancelScan context.CancelFunc
	cancelling bool
	progress   progress.Model

	// Chart state
	result   *session.Result
	timeline []series.Ref
	selected int
	detail   viewport.Model

	// Log view
	logs viewport.Model

	// Overlays
	showHelp bool
	modal    Modal
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	sess := opts.Session
	if sess == nil {
		sess = session.New(session.Options{})
	}
	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Defaults().Theme
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:       ctx,
		sess:      sess,
		store:     store,
		startScan: opts.StartScan,
		prefsPath: prefsPath,
		browseDir: opts.BrowseDir,
		exportDir: opts.ExportDir,
		logPath:   opts.LogPath,
		tick:      tick,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(themeName),
		view:      ViewForm,
		detail:    viewport.New(0, 0),
		logs:      viewport.New(0, 0),
	}
	m.inputs = newFormInputs(sess)
	m.focusInput(fieldFolder)
	m.progress = m.newProgress()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd(m.tick))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		return m, tea.Batch(fetchSnapshotCmd(m.store), tickCmd(m.tick))

	case snapshotMsg:
		return m.handleSnapshot(state.Snapshot(msg))

	case exportDoneMsg:
		if msg.err != nil {
			log.Printf("export chart: %v", msg.err)
			m.modal = newErrorModal("Export failed", msg.err)
			return m, nil
		}
		log.Printf("chart saved to %s", msg.path)
		m.status = "Saved " + msg.path
		return m, nil
	}

	// Everything else belongs to the active component.
	var cmd tea.Cmd
	switch m.view {
	case ViewBrowse:
		m.picker, cmd = m.picker.Update(msg)
	case ViewForm:
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey routes keyboard input to overlays first, then the active view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m.quit()
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch m.view {
	case ViewForm:
		return m.handleFormKey(msg)
	case ViewBrowse:
		return m.handleBrowseKey(msg)
	case ViewScanning:
		return m.handleScanningKey(msg)
	case ViewChart:
		return m.handleChartKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.cancelScan != nil {
		m.cancelScan()
		m.cancelScan = nil
	}
	return m, tea.Quit
}

// cycleTheme switches to the next theme and persists the choice.
func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.progress = m.newProgress()
	m.refreshDetail()
	name := m.theme.Name
	if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.Theme = name }); err != nil {
		log.Printf("save prefs: %v", err)
	}
}

// startRun validates the session and launches a background scan.
func (m Model) startRun() (tea.Model, tea.Cmd) {
	if err := m.sess.Validate(); err != nil {
		m.modal = newErrorModal("Cannot run", err)
		return m, nil
	}
	if m.startScan == nil {
		m.modal = newErrorModal("Cannot run", errors.New("no scanner configured"))
		return m, nil
	}
	cancel, err := m.startScan(m.ctx, m.store, m.sess)
	if err != nil {
		log.Printf("start scan: %v", err)
		m.modal = newErrorModal("Cannot run", err)
		return m, nil
	}
	m.cancelScan = cancel
	m.cancelling = false
	m.snapshot = m.store.Snapshot()
	m.generation = m.snapshot.Generation
	m.view = ViewScanning
	m.status = ""
	return m, fetchSnapshotCmd(m.store)
}

// handleSnapshot records a store snapshot and leaves the scanning view once
// the current generation ends.
func (m Model) handleSnapshot(snap state.Snapshot) (tea.Model, tea.Cmd) {
	m.snapshot = snap
	if m.view != ViewScanning || snap.Generation != m.generation {
		return m, nil
	}

	switch snap.Phase {
	case state.PhaseDone:
		m.endScan()
		res := snap.Result
		failed := folderErrors(res)
		if res == nil || res.Collection.Len() == 0 {
			m.view = ViewForm
			if failed != nil {
				m.modal = newErrorModal("Scan failed", failed)
			} else {
				m.modal = newInfoModal("No matches", noMatchesMessage(res))
			}
			return m, m.focusInput(m.focus)
		}
		m.showResult(res)
		if failed != nil {
			m.status = "Some folders could not be read; see log (L)"
		}
		return m, nil

	case state.PhaseFailed:
		m.endScan()
		m.view = ViewForm
		m.modal = newErrorModal("Scan failed", snap.Err)
		return m, m.focusInput(m.focus)

	case state.PhaseCancelled:
		m.endScan()
		m.view = ViewForm
		m.status = "Scan cancelled"
		return m, m.focusInput(m.focus)
	}
	return m, nil
}

func (m *Model) endScan() {
	if m.cancelScan != nil {
		m.cancelScan()
		m.cancelScan = nil
	}
	m.cancelling = false
}

func folderErrors(res *session.Result) error {
	if res == nil {
		return nil
	}
	var errs []error
	for _, f := range res.Folders {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errors.Join(errs...)
}

func noMatchesMessage(res *session.Result) string {
	if res == nil || res.Matcher == nil {
		return "No matches found."
	}
	return fmt.Sprintf("No lines matched %s in %d files.", res.Matcher, res.FilesDone)
}

// resize recomputes component sizes after a window change.
func (m *Model) resize() {
	bodyHeight := maxInt(m.height-headerLines, 1)
	m.picker.Height = maxInt(bodyHeight-4, 3)
	m.progress.Width = maxInt(m.width-8, 10)
	m.detail.Width = maxInt(m.width-2, 10)
	m.detail.Height = maxInt(DetailPaneHeight-2, 3)
	m.logs.Width = maxInt(m.width, 10)
	m.logs.Height = bodyHeight
	for i := range m.inputs {
		m.inputs[i].Width = maxInt(m.width-24, 10)
	}
	m.refreshDetail()
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	b.WriteString(m.renderContent())
	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.view {
	case ViewForm:
		return m.renderForm()
	case ViewBrowse:
		return m.renderBrowse()
	case ViewScanning:
		return m.renderScanning()
	case ViewChart:
		return m.renderChart()
	case ViewLogs:
		return m.logs.View()
	default:
		return ""
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type exportDoneMsg struct {
	path string
	err  error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
