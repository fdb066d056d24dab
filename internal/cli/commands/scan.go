package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/logdog/internal/chart"
	"github.com/five82/logdog/internal/config"
	"github.com/five82/logdog/internal/match"
	"github.com/five82/logdog/internal/report"
	"github.com/five82/logdog/internal/session"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// ScanOptions holds command-line options for the scan command.
type ScanOptions struct {
	Config     string
	Folders    []string
	Phrases    string
	Mode       string
	IgnoreCase bool
	Output     string
	Chart      string
	From       string
	To         string
	Verbose    bool
	Quiet      bool
}

// NewScanCommand creates the scan command.
func NewScanCommand() *cobra.Command {
	opts := &ScanOptions{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan folders for phrases without the UI",
		Long: `Scan folders of .txt/.log files and Windows .evtx event logs for target
phrases and print a per-folder summary. Optionally save the chart as PNG or SVG.

Folders are given as path[,color[,label]]; color defaults to the palette and
label to the folder name. Flags override values from --config.

Exit codes:
  0 - Matches found
  1 - No matches found
  2 - Configuration or runtime error`,
		Example: `  logdog scan --folder /var/log/web,red,web --folder ~/logs/db --phrases "timeout, \"disk full\""
  logdog scan --config scan.toml --output json --chart out.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Config file (.toml, .yaml)")
	cmd.Flags().StringArrayVarP(&opts.Folders, "folder", "f", nil, "Folder to scan as path[,color[,label]] (can be repeated)")
	cmd.Flags().StringVarP(&opts.Phrases, "phrases", "p", "", `Comma separated phrases; quote phrases containing commas`)
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", "", "Plot mode (points|counts)")
	cmd.Flags().BoolVarP(&opts.IgnoreCase, "ignore-case", "i", false, "Match phrases case-insensitively")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.Chart, "chart", "", "Save the chart to this .png or .svg file")
	cmd.Flags().StringVar(&opts.From, "from", "", "Start of the chart window (RFC3339)")
	cmd.Flags().StringVar(&opts.To, "to", "", "End of the chart window (RFC3339)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show every matched line")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no logging")

	return cmd
}

func runScan(cmd *cobra.Command, opts *ScanOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Quiet {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(cmd.ErrOrStderr())
	}

	formatter, err := report.NewFormatter(opts.Output, report.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	cfg, err := loadScanConfig(opts)
	if err != nil {
		return err
	}

	sess, err := session.FromConfig(cfg, opts.Verbose)
	if err != nil {
		return fmt.Errorf("preparing scan: %w", err)
	}
	plan, err := sess.Plan(ctx)
	if err != nil {
		return fmt.Errorf("preparing scan: %w", err)
	}
	res, err := sess.Run(ctx, plan, nil)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	rep := report.NewReport(res, opts.Config)
	if opts.Chart != "" && res.Collection.Len() > 0 {
		from, to := sess.Window()
		err := chart.ExportFile(opts.Chart, res.Collection, chart.ExportOptions{
			Title: chart.Title(res.Matcher.String()),
			From:  from,
			To:    to,
		})
		if err != nil {
			return fmt.Errorf("saving chart: %w", err)
		}
		rep.Metadata.ChartFile = opts.Chart
	}

	if err := formatter.Format(ctx, rep, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	var folderErrs []error
	for _, f := range res.Folders {
		if f.Err != nil {
			folderErrs = append(folderErrs, f.Err)
		}
	}
	if len(folderErrs) > 0 {
		return fmt.Errorf("%d of %d folders could not be read: %w", len(folderErrs), len(res.Folders), errors.Join(folderErrs...))
	}

	if !rep.HasMatches() {
		ExitCode = 1
	}
	return nil
}

// loadScanConfig loads the optional config file and applies flag overrides.
func loadScanConfig(opts *ScanOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if len(opts.Folders) > 0 {
		cfg.Folders = cfg.Folders[:0]
		for i, spec := range opts.Folders {
			f, err := ParseFolderSpec(spec, i)
			if err != nil {
				return nil, err
			}
			cfg.Folders = append(cfg.Folders, f)
		}
	}
	if strings.TrimSpace(opts.Phrases) != "" {
		phrases, err := match.ParsePhrases(opts.Phrases)
		if err != nil {
			return nil, fmt.Errorf("--phrases: %w", err)
		}
		cfg.Phrases = phrases
	}
	if opts.Mode != "" {
		cfg.Mode = strings.ToLower(strings.TrimSpace(opts.Mode))
	}
	if opts.IgnoreCase {
		cfg.CaseInsensitive = true
	}
	if opts.From != "" {
		cfg.Window.From = opts.From
	}
	if opts.To != "" {
		cfg.Window.To = opts.To
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if len(cfg.Folders) == 0 {
		return nil, fmt.Errorf("no folders: use --folder or a config file: %w", session.ErrNoEntries)
	}
	if len(cfg.Phrases) == 0 {
		return nil, fmt.Errorf("no phrases: use --phrases or a config file: %w", session.ErrNoPhrases)
	}
	return cfg, nil
}

// ParseFolderSpec parses path[,color[,label]]. Missing colors come from the
// palette by index; missing labels from the folder name.
func ParseFolderSpec(spec string, index int) (config.FolderConfig, error) {
	parts := strings.SplitN(spec, ",", 3)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if parts[0] == "" {
		return config.FolderConfig{}, fmt.Errorf("--folder %q: path is required", spec)
	}
	path, err := config.ExpandPath(parts[0])
	if err != nil {
		return config.FolderConfig{}, fmt.Errorf("--folder %q: %w", spec, err)
	}

	f := config.FolderConfig{Path: path, Color: chart.PaletteColor(index), Label: filepath.Base(path)}
	if len(parts) > 1 && parts[1] != "" {
		f.Color = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		f.Label = parts[2]
	}
	return f, nil
}
