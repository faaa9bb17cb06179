package ir

// Version constants for the IR schema and the tool.
const (
	// IRVersion is the IR schema version.
	IRVersion = "1"

	// ToolVersion is the luasharp release version. Project settings may
	// constrain it with a semver range.
	ToolVersion = "0.4.0"
)
