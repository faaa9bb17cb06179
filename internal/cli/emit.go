package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/luasharp/internal/emitter"
	"github.com/roach88/luasharp/internal/typemap"
)

// EmitOptions holds flags for the emit command.
type EmitOptions struct {
	*RootOptions
	TypeMap map[string]string
}

// EmitResult is the JSON payload of the emit command.
type EmitResult struct {
	Path string `json:"path"`
	Lua  string `json:"lua"`
}

// NewEmitCommand creates the emit command.
func NewEmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "emit <file>",
		Short: "Transpile one C# file to stdout",
		Long: `Transpile a single C# file and print the generated Lua without writing
any files or touching the build cache.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringToStringVar(&opts.TypeMap, "type-map", nil, "return placeholder overrides (Type=expr,...)")

	return cmd
}

func runEmit(opts *EmitOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	unit, err := compileFile(formatter, cmd, path)
	if err != nil {
		return err
	}

	lua := emitter.New(typemap.New(opts.TypeMap)).Emit(unit)
	if formatter.JSON() {
		return formatter.Success(EmitResult{Path: path, Lua: lua})
	}
	fmt.Fprint(formatter.Writer, lua)
	return nil
}
