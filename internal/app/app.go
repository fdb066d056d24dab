package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/logdog/internal/config"
	"github.com/five82/logdog/internal/prefs"
	"github.com/five82/logdog/internal/series"
	"github.com/five82/logdog/internal/session"
	"github.com/five82/logdog/internal/state"
	"github.com/five82/logdog/internal/ui"
)

// EnvLogPath overrides where UI mode writes its log.
const EnvLogPath = "LOGDOG_LOG"

// Options configure the interactive application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/logdog/prefs.toml
	LogPath    string // empty uses $LOGDOG_LOG or $TMPDIR/logdog.log
	Verbose    bool
}

// DefaultLogPath returns the UI log location.
func DefaultLogPath() string {
	if p := os.Getenv(EnvLogPath); p != "" {
		return p
	}
	return filepath.Join(os.TempDir(), "logdog.log")
}

// Run boots the logdog TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	logPath := opts.LogPath
	if logPath == "" {
		logPath = DefaultLogPath()
	}
	logFile, err := tea.LogToFile(logPath, "logdog")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	sess, err := session.FromConfig(cfg, opts.Verbose)
	if err != nil {
		return fmt.Errorf("init session: %w", err)
	}
	if opts.ConfigPath == "" && userPrefs.Mode != "" {
		if mode, err := series.ParseMode(userPrefs.Mode); err == nil {
			sess.SetMode(mode)
		}
	}
	log.Printf("logdog starting: %d folders from config", len(sess.Entries()))

	return ui.Run(ui.Options{
		Context:   ctx,
		Session:   sess,
		Store:     &state.Store{},
		StartScan: StartScan,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		BrowseDir: userPrefs.BrowseDir,
		ExportDir: userPrefs.ExportDir,
		LogPath:   logPath,
	})
}
