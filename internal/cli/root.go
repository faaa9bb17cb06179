package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the luasharp command. Run with a working directory
// it builds the project; subcommands inspect single files and projects.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	buildOpts := &BuildOptions{RootOptions: opts}

	cmd := &cobra.Command{
		Use:   "luasharp <working-dir>",
		Short: "luasharp - C# to Lua transpiler",
		Long: `Transpile the C# sources of a project into Lua tables.

The working directory must contain luasharp.settings.json naming the
SourceDirectory and OutputDirectory. Every .cs file below the source
directory becomes a .lua file at the same relative path in the output
directory. With --watch, files are rebuilt as they change.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				formatter := newFormatter(opts, cmd)
				msg := "working directory argument is required"
				_ = formatter.Error(ErrCodeUsage, msg, nil)
				return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", ErrCodeUsage, msg))
			}
			return runBuild(buildOpts, args[0], cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.Flags().BoolVarP(&buildOpts.Watch, "watch", "w", false, "rebuild continuously as sources change")
	cmd.Flags().BoolVar(&buildOpts.NoCache, "no-cache", false, "ignore and do not update the build cache")

	cmd.AddCommand(NewASTCommand(opts))
	cmd.AddCommand(NewEmitCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Diagnostics go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// newLogger returns the structured logger for a command: text records on
// w, Debug level when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
