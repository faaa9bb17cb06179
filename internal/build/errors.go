package build

import "fmt"

// Stage names the step of a file build that failed.
type Stage string

const (
	StageRead      Stage = "read"
	StageTranspile Stage = "transpile"
	StageWrite     Stage = "write"
	StageRemove    Stage = "remove"
)

// FileError is a failure confined to one source file.
type FileError struct {
	Path  string // source path relative to the source directory
	Stage Stage
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// PanicError wraps a value recovered from a panicking file build.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
