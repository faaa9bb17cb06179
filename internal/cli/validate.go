package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/luasharp/internal/build"
	"github.com/roach88/luasharp/internal/config"
)

// ValidationResult is the JSON payload of the validate command.
type ValidationResult struct {
	Valid           bool   `json:"valid"`
	SourceDirectory string `json:"source_directory"`
	OutputDirectory string `json:"output_directory"`
	SourceFiles     int    `json:"source_files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <working-dir>",
		Short: "Check project settings without building",
		Long: `Load and validate luasharp.settings.json in the working directory and
count the source files a build would process. Nothing is written.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, workDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	settings, err := config.Load(workDir)
	if err != nil {
		return configError(formatter, err)
	}

	b, err := build.New(build.Options{SourceDir: settings.SourcePath(), OutputDir: settings.OutputPath()})
	if err != nil {
		return outputBuildError(formatter, ErrCodeGeneric, err)
	}
	files, err := b.SourceFiles()
	if err != nil {
		return outputBuildError(formatter, ErrCodeGeneric, err)
	}
	for _, f := range files {
		formatter.VerboseLog("  %s", f)
	}

	result := ValidationResult{
		Valid:           true,
		SourceDirectory: settings.SourcePath(),
		OutputDirectory: settings.OutputPath(),
		SourceFiles:     len(files),
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Settings valid: %d source file(s) in %s\n", result.SourceFiles, result.SourceDirectory)
	return nil
}
