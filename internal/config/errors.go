package config

import "fmt"

// Configuration error codes (E010-E019). Every one of them is fatal to the
// session: no file is touched.
const (
	ErrCodeWorkDirMissing  = "E010" // working directory missing or not a directory
	ErrCodeSettingsMissing = "E011" // luasharp.settings.json not found
	ErrCodeSettingsInvalid = "E012" // settings unreadable or schema violation
	ErrCodeSourceMissing   = "E013" // SourceDirectory does not exist
	ErrCodeVersionMismatch = "E014" // ToolVersion constraint not satisfied
	ErrCodeNotOnPath       = "E015" // executable not run from PATH
)

// Error is a fatal configuration error.
type Error struct {
	Code    string
	Message string
	Path    string // file or directory the error is about, if any
	Line    int    // line in the settings file, if known
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", e.Path, e.Line, e.Code, e.Message)
	case e.Path != "":
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}
