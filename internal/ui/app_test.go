package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/logdog/internal/prefs"
	"github.com/five82/logdog/internal/series"
	"github.com/five82/logdog/internal/session"
	"github.com/five82/logdog/internal/state"
)

const sampleLog = "2025-03-03 02:26:10.123456 service fail: timeout\n" +
	"2025-03-03 02:26:11.000000 service ok\n" +
	"2025-03-03 02:26:12.500000 service fail: disk\n"

// syncScan runs the whole scan before returning so tests can read the
// final snapshot immediately.
func syncScan(ctx context.Context, store *state.Store, sess *session.Controller) (context.CancelFunc, error) {
	plan, err := sess.Plan(ctx)
	if err != nil {
		return nil, err
	}
	gen := store.Begin(plan.FilesTotal)
	res, err := sess.Run(ctx, plan, func(p session.Progress) { store.Advance(gen, p) })
	store.Finish(gen, res, err)
	return func() {}, nil
}

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.PrefsPath == "" {
		opts.PrefsPath = filepath.Join(t.TempDir(), "prefs.toml")
	}
	return update(t, New(opts), tea.WindowSizeMsg{Width: 120, Height: 40})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want ui.Model", next)
	}
	return out
}

func keyMsg(name string) tea.KeyMsg {
	switch name {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	case "f1":
		return tea.KeyMsg{Type: tea.KeyF1}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = update(t, m, keyMsg(k))
	}
	return m
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func fillEntry(t *testing.T, m Model, path, color, label string) Model {
	t.Helper()
	m = typeText(t, m, path)
	m = press(t, m, "tab")
	m = typeText(t, m, color)
	m = press(t, m, "tab")
	m = typeText(t, m, label)
	return press(t, m, "enter")
}

func logDir(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "service.log"), []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return dir
}

// scannedModel returns a model in the chart view after scanning sampleLog
// for "fail".
func scannedModel(t *testing.T, opts Options) Model {
	t.Helper()
	return scannedModelWith(t, opts, session.Options{})
}

func scannedModelWith(t *testing.T, opts Options, sessOpts session.Options) Model {
	t.Helper()
	sess := session.New(sessOpts)
	if err := sess.AddEntry(logDir(t, sampleLog), "red", "web"); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if err := sess.SetPhrases("fail"); err != nil {
		t.Fatalf("SetPhrases: %v", err)
	}
	opts.Session = sess
	opts.Store = &state.Store{}
	opts.StartScan = syncScan
	m := newTestModel(t, opts)
	m.inputs[fieldPhrases].SetValue("fail")

	m = press(t, m, "ctrl+r")
	if m.view != ViewScanning {
		t.Fatalf("view after ctrl+r = %v, want Scanning (modal %v)", m.view, m.modal)
	}
	m = update(t, m, snapshotMsg(opts.Store.Snapshot()))
	if m.view != ViewChart {
		t.Fatalf("view after scan = %v, want Chart (modal %v)", m.view, m.modal)
	}
	return m
}

func TestFormAddsEntry(t *testing.T) {
	sess := session.New(session.Options{})
	m := newTestModel(t, Options{Session: sess})

	m = fillEntry(t, m, t.TempDir(), "red", "web")
	if m.modal != nil {
		t.Fatalf("unexpected modal %+v", m.modal)
	}
	entries := sess.Entries()
	if len(entries) != 1 || entries[0].Label != "web" || entries[0].Color != "red" {
		t.Fatalf("entries = %+v, want one red web entry", entries)
	}
	for _, i := range []int{fieldFolder, fieldColor, fieldLabel} {
		if v := m.inputs[i].Value(); v != "" {
			t.Fatalf("field %s = %q after add, want empty", fieldLabels[i], v)
		}
	}
	if m.focus != fieldFolder {
		t.Fatalf("focus = %d, want folder field", m.focus)
	}
	if !strings.Contains(m.View(), "web") {
		t.Fatalf("form view does not list the new entry")
	}
}

func TestFormInvalidEntryOpensModal(t *testing.T) {
	tests := []struct {
		name               string
		path, color, label string
	}{
		{name: "missing color", path: "/tmp", label: "web"},
		{name: "missing label", path: "/tmp", color: "red"},
		{name: "bad color", path: "/tmp", color: "notacolor", label: "web"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := session.New(session.Options{})
			m := newTestModel(t, Options{Session: sess})
			m = fillEntry(t, m, tt.path, tt.color, tt.label)

			if m.modal == nil {
				t.Fatalf("modal = nil, want error dialog")
			}
			if n := len(sess.Entries()); n != 0 {
				t.Fatalf("entries = %d, want 0", n)
			}
			if m.inputs[fieldFolder].Value() != tt.path {
				t.Fatalf("folder field cleared on failure")
			}
			m = press(t, m, "esc")
			if m.modal != nil {
				t.Fatalf("modal still open after esc")
			}
		})
	}
}

func TestRunWithoutEntriesShowsModal(t *testing.T) {
	calls := 0
	scan := func(ctx context.Context, store *state.Store, sess *session.Controller) (context.CancelFunc, error) {
		calls++
		return func() {}, nil
	}
	m := newTestModel(t, Options{StartScan: scan})
	m.inputs[fieldPhrases].SetValue("fail")

	m = press(t, m, "ctrl+r")
	if m.modal == nil {
		t.Fatalf("modal = nil, want error dialog")
	}
	if calls != 0 {
		t.Fatalf("StartScan called %d times, want 0", calls)
	}
	if m.view != ViewForm {
		t.Fatalf("view = %v, want Setup", m.view)
	}
}

func TestRunWithoutPhrasesShowsModal(t *testing.T) {
	sess := session.New(session.Options{})
	if err := sess.AddEntry(t.TempDir(), "red", "web"); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	m := newTestModel(t, Options{Session: sess, StartScan: syncScan})
	m = press(t, m, "ctrl+r")
	if m.modal == nil || m.view != ViewForm {
		t.Fatalf("modal = %v, view = %v; want error dialog on Setup", m.modal, m.view)
	}
}

func TestToggleModePersists(t *testing.T) {
	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")
	sess := session.New(session.Options{})
	m := newTestModel(t, Options{Session: sess, PrefsPath: prefsPath})

	m = press(t, m, "ctrl+t")
	if sess.Mode() != series.ModeCounts {
		t.Fatalf("Mode() = %v, want counts", sess.Mode())
	}
	if got := prefs.Load(prefsPath).Mode; got != string(series.ModeCounts) {
		t.Fatalf("saved mode = %q, want counts", got)
	}
	press(t, m, "ctrl+t")
	if sess.Mode() != series.ModePoints {
		t.Fatalf("Mode() = %v, want points", sess.Mode())
	}
}

func TestScanShowsChart(t *testing.T) {
	m := scannedModel(t, Options{})

	if n := len(m.timeline); n != 2 {
		t.Fatalf("timeline length = %d, want 2", n)
	}
	if m.selected != 0 {
		t.Fatalf("selected = %d, want 0", m.selected)
	}
	if !strings.Contains(m.detail.View(), "fail: timeout") {
		t.Fatalf("detail pane missing payload:\n%s", m.detail.View())
	}
	if !strings.Contains(m.View(), "Occurrences of") {
		t.Fatalf("chart view missing title")
	}
}

func TestChartSelectionMoves(t *testing.T) {
	m := scannedModel(t, Options{})

	m = press(t, m, "l")
	if m.selected != 1 {
		t.Fatalf("selected after l = %d, want 1", m.selected)
	}
	m = press(t, m, "right")
	if m.selected != 1 {
		t.Fatalf("selected past end = %d, want 1", m.selected)
	}
	if !strings.Contains(m.detail.View(), "fail: disk") {
		t.Fatalf("detail pane not updated:\n%s", m.detail.View())
	}
	m = press(t, m, "h")
	if m.selected != 0 {
		t.Fatalf("selected after h = %d, want 0", m.selected)
	}
	m = press(t, m, "G")
	if m.selected != 1 {
		t.Fatalf("selected after G = %d, want 1", m.selected)
	}
}

func TestChartSelectionStaysInWindow(t *testing.T) {
	from := time.Date(2025, 3, 3, 2, 26, 11, 0, time.UTC)
	m := scannedModelWith(t, Options{}, session.Options{From: from})

	if n := len(m.timeline); n != 1 {
		t.Fatalf("timeline len = %d, want 1 point inside the window", n)
	}
	m = press(t, m, "h", "h", "l", "G")
	ref, ok := m.selectedRef()
	if !ok {
		t.Fatalf("no point selected")
	}
	p, _ := m.result.Collection.Point(ref)
	if p.At.Before(from) {
		t.Fatalf("selected point at %v lies before the window start %v", p.At, from)
	}

	m = press(t, m, "1", "1")
	if n := len(m.timeline); n != 1 {
		t.Fatalf("timeline after toggling back = %d, want 1", n)
	}
}

func TestChartToggleSeries(t *testing.T) {
	m := scannedModel(t, Options{})

	m = press(t, m, "1")
	if n := len(m.timeline); n != 0 {
		t.Fatalf("timeline after hiding = %d, want 0", n)
	}
	if m.result.Collection.Series(0).Visible {
		t.Fatalf("series still visible after toggle")
	}
	m = press(t, m, "1")
	if n := len(m.timeline); n != 2 {
		t.Fatalf("timeline after showing = %d, want 2", n)
	}
	// Out of range keys are ignored.
	m = press(t, m, "5")
	if n := len(m.timeline); n != 2 {
		t.Fatalf("timeline after key 5 = %d, want 2", n)
	}
}

func TestChartBackAndRescan(t *testing.T) {
	m := scannedModel(t, Options{})

	m = press(t, m, "b")
	if m.view != ViewForm {
		t.Fatalf("view after b = %v, want Setup", m.view)
	}
	m = press(t, m, "ctrl+r")
	if m.view != ViewScanning {
		t.Fatalf("view after second run = %v, want Scanning", m.view)
	}
}

func TestScanNoMatches(t *testing.T) {
	sess := session.New(session.Options{})
	if err := sess.AddEntry(logDir(t, "2025-03-03 02:26:10.000000 all good\n"), "red", "web"); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	store := &state.Store{}
	m := newTestModel(t, Options{Session: sess, Store: store, StartScan: syncScan})
	m.inputs[fieldPhrases].SetValue("fail")

	m = press(t, m, "ctrl+r")
	m = update(t, m, snapshotMsg(store.Snapshot()))
	if m.view != ViewForm {
		t.Fatalf("view = %v, want Setup", m.view)
	}
	mm, ok := m.modal.(messageModal)
	if !ok || mm.title != "No matches" {
		t.Fatalf("modal = %+v, want No matches dialog", m.modal)
	}
}

func TestScanMissingFolderIsAnError(t *testing.T) {
	sess := session.New(session.Options{})
	if err := sess.AddEntry(filepath.Join(t.TempDir(), "missing"), "red", "web"); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	store := &state.Store{}
	m := newTestModel(t, Options{Session: sess, Store: store, StartScan: syncScan})
	m.inputs[fieldPhrases].SetValue("fail")

	m = press(t, m, "ctrl+r")
	m = update(t, m, snapshotMsg(store.Snapshot()))
	mm, ok := m.modal.(messageModal)
	if !ok || mm.title != "Scan failed" {
		t.Fatalf("modal = %+v, want Scan failed dialog", m.modal)
	}
}

func TestEscCancelsRunningScan(t *testing.T) {
	cancelled := false
	store := &state.Store{}
	scan := func(ctx context.Context, s *state.Store, sess *session.Controller) (context.CancelFunc, error) {
		s.Begin(10)
		return func() { cancelled = true }, nil
	}
	sess := session.New(session.Options{})
	if err := sess.AddEntry(t.TempDir(), "red", "web"); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	m := newTestModel(t, Options{Session: sess, Store: store, StartScan: scan})
	m.inputs[fieldPhrases].SetValue("fail")

	m = press(t, m, "ctrl+r")
	if m.view != ViewScanning {
		t.Fatalf("view = %v, want Scanning", m.view)
	}
	m = press(t, m, "esc")
	if !cancelled || !m.cancelling {
		t.Fatalf("cancelled = %v, cancelling = %v; want both true", cancelled, m.cancelling)
	}
	if !strings.Contains(m.View(), "Cancelling") {
		t.Fatalf("scanning view does not show cancellation")
	}

	store.Finish(store.Snapshot().Generation, nil, context.Canceled)
	m = update(t, m, snapshotMsg(store.Snapshot()))
	if m.view != ViewForm || m.status != "Scan cancelled" {
		t.Fatalf("view = %v, status = %q; want Setup with cancel status", m.view, m.status)
	}
}

func TestStaleSnapshotIgnored(t *testing.T) {
	store := &state.Store{}
	scan := func(ctx context.Context, s *state.Store, sess *session.Controller) (context.CancelFunc, error) {
		s.Begin(1)
		return func() {}, nil
	}
	sess := session.New(session.Options{})
	if err := sess.AddEntry(t.TempDir(), "red", "web"); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	m := newTestModel(t, Options{Session: sess, Store: store, StartScan: scan})
	m.inputs[fieldPhrases].SetValue("fail")
	m = press(t, m, "ctrl+r")

	stale := state.Snapshot{Generation: m.generation - 1, Phase: state.PhaseFailed}
	m = update(t, m, snapshotMsg(stale))
	if m.view != ViewScanning || m.modal != nil {
		t.Fatalf("stale snapshot changed view to %v (modal %v)", m.view, m.modal)
	}
}

func TestCycleThemePersists(t *testing.T) {
	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")
	m := scannedModel(t, Options{PrefsPath: prefsPath, ThemeName: "Nightfox"})

	m = press(t, m, "T")
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	if got := prefs.Load(prefsPath).Theme; got != "Kanagawa" {
		t.Fatalf("saved theme = %q, want Kanagawa", got)
	}
}

func TestHelpOverlay(t *testing.T) {
	m := scannedModel(t, Options{})

	m = press(t, m, "?")
	if !m.showHelp {
		t.Fatalf("showHelp = false after ?")
	}
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not rendered")
	}
	m = press(t, m, "x")
	if m.showHelp {
		t.Fatalf("help still open after a key")
	}

	m = press(t, m, "b", "f1")
	if !m.showHelp {
		t.Fatalf("f1 does not open help on the form")
	}
}

func TestPickDirectoryFillsForm(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nginx")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")
	m := newTestModel(t, Options{PrefsPath: prefsPath})

	next, _ := m.pickDirectory(dir)
	m = next.(Model)
	if m.view != ViewForm {
		t.Fatalf("view = %v, want Setup", m.view)
	}
	if got := m.inputs[fieldFolder].Value(); got != dir {
		t.Fatalf("folder = %q, want %q", got, dir)
	}
	if got := m.inputs[fieldLabel].Value(); got != "nginx" {
		t.Fatalf("label = %q, want nginx", got)
	}
	if got := m.inputs[fieldColor].Value(); got == "" {
		t.Fatalf("color not prefilled")
	}
	if got := prefs.Load(prefsPath).BrowseDir; got != filepath.Dir(dir) {
		t.Fatalf("saved browse dir = %q, want %q", got, filepath.Dir(dir))
	}
}

func TestBrowseEscReturnsToForm(t *testing.T) {
	m := newTestModel(t, Options{BrowseDir: t.TempDir()})
	next, _ := m.openBrowser()
	m = next.(Model)
	if m.view != ViewBrowse {
		t.Fatalf("view = %v, want Browse", m.view)
	}
	m = press(t, m, "esc")
	if m.view != ViewForm {
		t.Fatalf("view after esc = %v, want Setup", m.view)
	}
}

func TestExportWritesPNG(t *testing.T) {
	exportDir := filepath.Join(t.TempDir(), "charts")
	m := scannedModel(t, Options{ExportDir: exportDir})

	_, cmd := m.Update(keyMsg("s"))
	if cmd == nil {
		t.Fatalf("export returned no command")
	}
	msg, ok := cmd().(exportDoneMsg)
	if !ok {
		t.Fatalf("command returned %T, want exportDoneMsg", msg)
	}
	if msg.err != nil {
		t.Fatalf("export error = %v", msg.err)
	}
	if filepath.Dir(msg.path) != exportDir || filepath.Ext(msg.path) != ".png" {
		t.Fatalf("export path = %q, want a .png in %s", msg.path, exportDir)
	}
	info, err := os.Stat(msg.path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("exported file missing or empty: %v", err)
	}

	m = update(t, m, msg)
	if !strings.HasPrefix(m.status, "Saved ") {
		t.Fatalf("status = %q, want Saved prefix", m.status)
	}
}

func TestLogViewShowsTail(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logdog.log")
	if err := os.WriteFile(logPath, []byte("first line\nscan 1 finished\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	m := scannedModel(t, Options{LogPath: logPath})

	m = press(t, m, "L")
	if m.view != ViewLogs {
		t.Fatalf("view = %v, want Log", m.view)
	}
	if !strings.Contains(m.logs.View(), "scan 1 finished") {
		t.Fatalf("log view missing tail:\n%s", m.logs.View())
	}
	m = press(t, m, "esc")
	if m.view != ViewChart {
		t.Fatalf("view after esc = %v, want Chart", m.view)
	}
}
