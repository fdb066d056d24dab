package commands

import (
	"github.com/spf13/cobra"

	"github.com/five82/logdog/internal/app"
)

// UIOptions holds command-line options for the interactive UI.
type UIOptions struct {
	Config  string
	Prefs   string
	Log     string
	Verbose bool
}

// AddUIFlags registers the UI flags on cmd.
func AddUIFlags(cmd *cobra.Command, opts *UIOptions) {
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Config file to seed folders and phrases (.toml, .yaml)")
	cmd.Flags().StringVar(&opts.Prefs, "prefs", "", "Preferences file (default ~/.config/logdog/prefs.toml)")
	cmd.Flags().StringVar(&opts.Log, "log", "", "Log file (default $LOGDOG_LOG or $TMPDIR/logdog.log)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log every matched line")
}

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	opts := &UIOptions{}
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive UI",
		Long: `Open the interactive UI.

Add folders with a color and a legend label, enter the phrases to look for
and press ctrl+r to scan. The chart view lets you toggle series, step
through matches and save the chart as a PNG.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunUI(cmd, opts)
		},
	}
	AddUIFlags(cmd, opts)
	return cmd
}

// RunUI starts the interactive UI until the user quits.
func RunUI(cmd *cobra.Command, opts *UIOptions) error {
	return app.Run(cmd.Context(), app.Options{
		ConfigPath: opts.Config,
		PrefsPath:  opts.Prefs,
		LogPath:    opts.Log,
		Verbose:    opts.Verbose,
	})
}
