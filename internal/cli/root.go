// Package cli provides the command-line interface for logdog.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/five82/logdog/internal/cli/commands"
)

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	return run(ctx, NewRootCommand(), os.Args[1:])
}

func run(ctx context.Context, rootCmd *cobra.Command, args []string) int {
	commands.ExitCode = 0
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// SilenceErrors keeps cobra from printing this itself
		_, _ = fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command. Without a subcommand it
// starts the interactive UI.
func NewRootCommand() *cobra.Command {
	uiOpts := &commands.UIOptions{}

	rootCmd := &cobra.Command{
		Use:   "logdog",
		Short: "Chart when phrases occur across folders of logs",
		Long: `logdog scans folders of text logs and Windows event logs for target
phrases and charts when they occurred, one series per folder.

Run without a command to open the interactive UI, or use "logdog scan" for
headless output.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunUI(cmd, uiOpts)
		},
	}
	commands.AddUIFlags(rootCmd, uiOpts)

	rootCmd.AddCommand(commands.NewUICommand())
	rootCmd.AddCommand(commands.NewScanCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
