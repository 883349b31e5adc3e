// Package cli provides the command-line interface for tfind.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/domgalati/tfind/internal/cli/commands"
	"github.com/domgalati/tfind/internal/cli/plugins"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	// Check if the first argument might be a plugin command
	if len(os.Args) > 1 {
		potentialCommand := os.Args[1]
		// Skip flags (start with -)
		if len(potentialCommand) > 0 && potentialCommand[0] != '-' {
			if !isBuiltinCommand(rootCmd, potentialCommand) {
				if pluginPath, err := plugins.FindPlugin(potentialCommand); err == nil {
					// Plugin found - execute it with remaining args
					return plugins.Execute(pluginPath, os.Args[2:])
				}
				// No plugin either; this is the normal case where the
				// first argument is the log file for the root search.
			}
		}
	}

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Usage or configuration error
	}
	return commands.ExitCode
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	// Also check for special commands like help and completion
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command. The root command
// itself is the search: tfind <logfile> <start> <end>.
func NewRootCommand() *cobra.Command {
	opts := &commands.SearchOptions{}

	rootCmd := &cobra.Command{
		Use:   "tfind [flags] <logfile> <start> <end>",
		Short: "Find the time range of a log file",
		Long: `tfind locates and prints the lines of a log file whose timestamps
fall between two boundaries, using binary search over byte offsets so
large files never need a full scan.

The timestamp format is auto-detected from a sample of the file, or
pinned with --pattern/--layout or --example. Boundaries may be full
timestamps, dates, bare clock times (completed from a dated line found
in the file), or Unix epochs.

Examples:
  tfind app.log "2025-08-08 13:00:00" "2025-08-08 14:00:00"
  tfind app.log 13:00 14:00
  tfind --example "08/Aug/2025:13:00:00 +0000" access.log 13:00 14:00

Exit codes:
  0 - Range printed (an empty range is still success)
  1 - Undetectable format, unparseable boundary, or I/O error
  2 - Usage or configuration error

PLUGINS:
  tfind supports plugins for extended functionality. Plugins are
  standalone binaries named tfind-<command> that are automatically
  discovered and invoked.

  Plugin locations (searched in order):
    1. Same directory as the tfind binary
    2. ~/.tfind/plugins/
    3. Anywhere in PATH`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunSearch(cmd, args, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	opts.AddFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
