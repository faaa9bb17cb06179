package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/luasharp/internal/config"
	"github.com/roach88/luasharp/internal/store"
)

// StatusResult is the JSON payload of the status command.
type StatusResult struct {
	LastBuild *store.Build      `json:"last_build,omitempty"`
	Files     []store.FileRecord `json:"files"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "status <working-dir>",
		Short:         "Show the last build and per-file state from the build cache",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, args[0], cmd)
		},
	}
}

func runStatus(opts *RootOptions, workDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	settings, err := config.Load(workDir)
	if err != nil {
		return configError(formatter, err)
	}

	result := StatusResult{Files: []store.FileRecord{}}

	path := cachePath(settings)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return outputStatus(formatter, result)
	}

	s, err := store.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeCache, err.Error(), map[string]string{"path": path})
		return WrapExitError(ExitCommandError, ErrCodeCache, err)
	}
	defer s.Close()

	ctx := cmd.Context()
	last, ok, err := s.LastBuild(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeCache, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeCache, err)
	}
	if ok {
		result.LastBuild = &last
	}
	files, err := s.Files(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeCache, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeCache, err)
	}
	if files != nil {
		result.Files = files
	}
	return outputStatus(formatter, result)
}

func outputStatus(formatter *OutputFormatter, result StatusResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if result.LastBuild == nil {
		fmt.Fprintln(w, "No builds recorded")
		return nil
	}
	b := result.LastBuild
	fmt.Fprintf(w, "Last build %s (%s, #%d): built %d, skipped %d, failed %d\n",
		b.ID, b.Mode, b.Seq, b.Built, b.Skipped, b.Failed)
	if !b.Finished {
		fmt.Fprintln(w, "  (interrupted)")
	}
	for _, f := range result.Files {
		if f.Status == store.StatusFailed {
			fmt.Fprintf(w, "  %-7s %s: %s\n", f.Status, f.SourcePath, f.Message)
			continue
		}
		fmt.Fprintf(w, "  %-7s %s -> %s\n", f.Status, f.SourcePath, f.OutputPath)
	}
	return nil
}
