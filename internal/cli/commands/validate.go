package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/logdog/internal/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a logdog configuration file without scanning.

Checks:
  - TOML or YAML syntax
  - Phrase list, mode and EVTX settings
  - Folder colors and the chart window
  - Folder existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	out := cmd.OutOrStdout()

	_, _ = fmt.Fprintf(out, "Validating %s...\n", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration valid!\n")
	_, _ = fmt.Fprintf(out, "  Phrases: %d\n", len(cfg.Phrases))
	for _, p := range cfg.Phrases {
		_, _ = fmt.Fprintf(out, "    - %q\n", p)
	}
	_, _ = fmt.Fprintf(out, "  Mode:    %s\n", cfg.Mode)
	if cfg.Window.From != "" || cfg.Window.To != "" {
		_, _ = fmt.Fprintf(out, "  Window:  %s .. %s\n", orDash(cfg.Window.From), orDash(cfg.Window.To))
	}

	_, _ = fmt.Fprintf(out, "\nFolders: %d\n", len(cfg.Folders))
	for i, f := range cfg.Folders {
		_, _ = fmt.Fprintf(out, "  %d. [%s] %s  %s\n", i+1, f.Color, f.Label, f.Path)
		if info, err := os.Stat(f.Path); err != nil || !info.IsDir() {
			_, _ = fmt.Fprintf(out, "     Warning: folder not found\n")
		}
	}
	if len(cfg.Phrases) == 0 {
		_, _ = fmt.Fprintf(out, "\nWarning: no phrases configured; set them in the UI or with --phrases\n")
	}
	return nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
