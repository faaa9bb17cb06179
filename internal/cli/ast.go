package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/luasharp/internal/compiler"
	"github.com/roach88/luasharp/internal/ir"
)

// NewASTCommand creates the ast command.
func NewASTCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ast <file>",
		Short: "Print the normalized tree of a C# file",
		Long: `Parse one C# file and print the normalized tree the emitter works from:
usings, namespaces, classes and methods with their parameters and return
types. With --format json the full tree is printed as JSON.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAST(rootOpts, args[0], cmd)
		},
	}
}

func runAST(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	unit, err := compileFile(formatter, cmd, path)
	if err != nil {
		return err
	}

	if formatter.JSON() {
		return formatter.Success(unit)
	}
	fmt.Fprint(formatter.Writer, ir.FormatTree(unit))
	return nil
}

// compileFile reads and compiles one file, reporting failures through the
// formatter.
func compileFile(formatter *OutputFormatter, cmd *cobra.Command, path string) (*ir.Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeReadFailed, fmt.Sprintf("reading %s: %v", path, err), nil)
		return nil, WrapExitError(ExitCommandError, ErrCodeReadFailed, err)
	}
	formatter.VerboseLog("Read %d bytes from %s", len(src), path)

	unit, err := compiler.CompileSource(cmd.Context(), path, src)
	if err != nil {
		_ = formatter.Error(ErrCodeTranspile, fmt.Sprintf("%s: %v", path, err), nil)
		return nil, WrapExitError(ExitFailure, ErrCodeTranspile, err)
	}
	return unit, nil
}
