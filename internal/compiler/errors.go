package compiler

import "fmt"

// CompileError reports input the normalizer cannot work with at all.
// Unsupported constructs are not errors; see Normalize.
type CompileError struct {
	Field   string
	Message string
	Line    int
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
