package compiler

import (
	"context"
	"fmt"

	"github.com/roach88/luasharp/internal/ir"
	"github.com/roach88/luasharp/internal/syntax"
)

// CompileSource parses C# source and normalizes it into a validated unit.
// path is recorded on the unit for diagnostics only.
func CompileSource(ctx context.Context, path string, src []byte) (*ir.Unit, error) {
	tree, err := syntax.Parse(ctx, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	unit, err := Normalize(tree.Root())
	if err != nil {
		return nil, err
	}
	unit.Path = path

	if errs := Validate(unit); len(errs) > 0 {
		return nil, fmt.Errorf("invalid IR (%d error(s)): %w", len(errs), errs[0])
	}
	return unit, nil
}
