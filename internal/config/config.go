package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/five82/logdog/internal/chart"
	"github.com/five82/logdog/internal/match"
)

// Config is the scan configuration loaded from TOML or YAML.
type Config struct {
	Phrases         []string       `toml:"phrases" yaml:"phrases"`
	Mode            string         `toml:"mode" yaml:"mode"`
	CaseInsensitive bool           `toml:"case_insensitive" yaml:"case_insensitive"`
	TextExtensions  []string       `toml:"text_extensions" yaml:"text_extensions"`
	Include         string         `toml:"include" yaml:"include"`
	Evtx            EvtxConfig     `toml:"evtx" yaml:"evtx"`
	Window          WindowConfig   `toml:"window" yaml:"window"`
	Folders         []FolderConfig `toml:"folders" yaml:"folders"`
}

// EvtxConfig tunes Windows event log scanning.
type EvtxConfig struct {
	// MaxRecords caps the records read per file.
	MaxRecords int `toml:"max_records" yaml:"max_records"`

	// Levels lists System/Level values that may match (2 = Error).
	Levels []int `toml:"levels" yaml:"levels"`

	// LogEvery logs progress after this many records.
	LogEvery int `toml:"log_every" yaml:"log_every"`
}

// WindowConfig clamps the chart's time axis. Values are RFC 3339 or
// "2006-01-02 15:04:05".
type WindowConfig struct {
	From string `toml:"from" yaml:"from"`
	To   string `toml:"to" yaml:"to"`
}

// FolderConfig is one folder to scan and how to draw it.
type FolderConfig struct {
	Path  string `toml:"path" yaml:"path"`
	Color string `toml:"color" yaml:"color"`
	Label string `toml:"label" yaml:"label"`
}

// Load reads, normalises and validates the config at path. An empty path
// yields DefaultConfig with environment overrides applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) != "" {
		resolved, err := expandPath(path)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(resolved) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := decode(resolved, data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config format %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}
}

// normalize trims fields, expands folder paths and fills in default
// colors and labels.
func (c *Config) normalize() error {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode == "" {
		c.Mode = DefaultMode
	}
	for i := range c.Folders {
		f := &c.Folders[i]
		f.Path = strings.TrimSpace(f.Path)
		f.Color = strings.TrimSpace(f.Color)
		f.Label = strings.TrimSpace(f.Label)
		if f.Path == "" {
			continue
		}
		expanded, err := expandPath(f.Path)
		if err != nil {
			return fmt.Errorf("folders[%d]: %w", i, err)
		}
		f.Path = expanded
		if f.Color == "" {
			f.Color = chart.PaletteColor(i)
		}
		if f.Label == "" {
			f.Label = filepath.Base(f.Path)
		}
	}
	return nil
}

// Validate checks a configuration for errors.
func Validate(cfg *Config) error {
	if _, err := match.New(cfg.Phrases, cfg.CaseInsensitive); err != nil && !errors.Is(err, match.ErrNoPhrases) {
		return fmt.Errorf("phrases: %w", err)
	}

	switch cfg.Mode {
	case "", "points", "counts":
	default:
		return fmt.Errorf("mode: invalid value %q (must be points or counts)", cfg.Mode)
	}

	for i, ext := range cfg.TextExtensions {
		if strings.TrimSpace(ext) == "" {
			return fmt.Errorf("text_extensions[%d]: extension is empty", i)
		}
	}

	if cfg.Include != "" && !doublestar.ValidatePattern(cfg.Include) {
		return fmt.Errorf("include: invalid pattern %q", cfg.Include)
	}

	if cfg.Evtx.MaxRecords < 0 {
		return errors.New("evtx.max_records: must be >= 0")
	}
	if cfg.Evtx.LogEvery < 0 {
		return errors.New("evtx.log_every: must be >= 0")
	}
	for i, lvl := range cfg.Evtx.Levels {
		if lvl < 0 || lvl > 5 {
			return fmt.Errorf("evtx.levels[%d]: level %d out of range 0-5", i, lvl)
		}
	}

	from, to, err := cfg.Window.Bounds()
	if err != nil {
		return fmt.Errorf("window: %w", err)
	}
	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		return errors.New("window: to must be after from")
	}

	for i, f := range cfg.Folders {
		if f.Path == "" {
			return fmt.Errorf("folders[%d]: path is required", i)
		}
		if f.Color != "" {
			if _, err := chart.ParseColor(f.Color); err != nil {
				return fmt.Errorf("folders[%d] (%s): %w", i, f.Path, err)
			}
		}
	}
	return nil
}

// Bounds parses the window. Unset ends are returned as zero times.
func (w WindowConfig) Bounds() (time.Time, time.Time, error) {
	from, err := parseWindowTime(w.From)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("from: %w", err)
	}
	to, err := parseWindowTime(w.To)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("to: %w", err)
	}
	return from, to, nil
}

var windowLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"}

func parseWindowTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range windowLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", value)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

// ExpandPath resolves ~ and relative paths to an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}
