// Package session owns the scan inputs collected from the user and runs the
// scan → aggregate → plot pipeline over them.
package session

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/five82/logdog/internal/chart"
	"github.com/five82/logdog/internal/config"
	"github.com/five82/logdog/internal/match"
	"github.com/five82/logdog/internal/scanner"
	"github.com/five82/logdog/internal/series"
	"github.com/five82/logdog/internal/walker"
)

var (
	// ErrNoEntries is returned when a scan is requested without folders.
	ErrNoEntries = errors.New("add at least one folder before running")

	// ErrRequiredField is returned when a folder entry field is blank.
	ErrRequiredField = errors.New("field is required")

	// ErrNoPhrases is returned when no target phrase has been set.
	ErrNoPhrases = match.ErrNoPhrases
)

// Entry is one folder to scan and how to draw it.
type Entry struct {
	Path  string
	Color string
	Label string
}

// Options seed a Controller.
type Options struct {
	Mode            series.Mode
	CaseInsensitive bool
	Walk            walker.Options

	// From and To clamp the chart window when non-zero.
	From time.Time
	To   time.Time
}

// Controller holds the folder list, phrases and mode. It is not safe for
// concurrent use; Run works from an immutable Plan instead.
type Controller struct {
	opts        Options
	entries     []Entry
	phraseInput string
	phrases     []string
}

// New returns an empty controller.
func New(opts Options) *Controller {
	if opts.Mode == "" {
		opts.Mode = series.ModePoints
	}
	return &Controller{opts: opts}
}

// FromConfig builds a controller seeded with cfg's folders and phrases.
func FromConfig(cfg *config.Config, verbose bool) (*Controller, error) {
	mode, err := series.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	from, to, err := cfg.Window.Bounds()
	if err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	c := New(Options{
		Mode:            mode,
		CaseInsensitive: cfg.CaseInsensitive,
		From:            from,
		To:              to,
		Walk: walker.Options{
			TextExtensions: cfg.TextExtensions,
			Include:        cfg.Include,
			Text:           scanner.TextOptions{Verbose: verbose},
			Evtx: scanner.EvtxOptions{
				MaxRecords: cfg.Evtx.MaxRecords,
				Levels:     cfg.Evtx.Levels,
				LogEvery:   cfg.Evtx.LogEvery,
				Verbose:    verbose,
			},
		},
	})
	for i, f := range cfg.Folders {
		if err := c.AddEntry(f.Path, f.Color, f.Label); err != nil {
			return nil, fmt.Errorf("folders[%d]: %w", i, err)
		}
	}
	if len(cfg.Phrases) > 0 {
		c.phrases = append([]string(nil), cfg.Phrases...)
		c.phraseInput = strings.Join(quoteAll(cfg.Phrases), ", ")
	}
	return c, nil
}

// AddEntry appends a folder entry. All fields are required and color must
// parse; nothing changes when validation fails.
func (c *Controller) AddEntry(path, color, label string) error {
	e := Entry{
		Path:  strings.TrimSpace(path),
		Color: strings.TrimSpace(color),
		Label: strings.TrimSpace(label),
	}
	switch {
	case e.Path == "":
		return fmt.Errorf("folder path: %w", ErrRequiredField)
	case e.Color == "":
		return fmt.Errorf("color: %w", ErrRequiredField)
	case e.Label == "":
		return fmt.Errorf("label: %w", ErrRequiredField)
	}
	if _, err := chart.ParseColor(e.Color); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	c.entries = append(c.entries, e)
	log.Printf("added folder %s (color %s, label %s)", e.Path, e.Color, e.Label)
	return nil
}

// Entries returns a copy of the folder list.
func (c *Controller) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// SetPhrases parses a comma separated phrase list. Quoted phrases may
// contain commas. On error the previous phrases are kept.
func (c *Controller) SetPhrases(input string) error {
	phrases, err := match.ParsePhrases(input)
	if err != nil {
		return err
	}
	c.phraseInput = input
	c.phrases = phrases
	return nil
}

// Phrases returns the parsed phrase list.
func (c *Controller) Phrases() []string {
	return append([]string(nil), c.phrases...)
}

// PhraseInput returns the raw text last accepted by SetPhrases.
func (c *Controller) PhraseInput() string {
	return c.phraseInput
}

// Mode returns the plot mode.
func (c *Controller) Mode() series.Mode {
	return c.opts.Mode
}

// SetMode changes the plot mode.
func (c *Controller) SetMode(m series.Mode) {
	c.opts.Mode = m
}

// ToggleMode switches between points and counts and returns the new mode.
func (c *Controller) ToggleMode() series.Mode {
	if c.opts.Mode == series.ModeCounts {
		c.opts.Mode = series.ModePoints
	} else {
		c.opts.Mode = series.ModeCounts
	}
	return c.opts.Mode
}

// Window returns the configured chart window.
func (c *Controller) Window() (time.Time, time.Time) {
	return c.opts.From, c.opts.To
}

// Validate reports whether the controller is ready to run.
func (c *Controller) Validate() error {
	if len(c.entries) == 0 {
		return ErrNoEntries
	}
	if len(c.phrases) == 0 {
		return ErrNoPhrases
	}
	return c.opts.Walk.Validate()
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		if strings.ContainsAny(s, ",\"") {
			out[i] = `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
			continue
		}
		out[i] = s
	}
	return out
}
