// Package config loads and validates luasharp.settings.json.
//
// The settings file is decoded through an embedded CUE schema so that
// missing or mistyped fields are reported with their position in the file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/Masterminds/semver/v3"

	"github.com/roach88/luasharp/internal/ir"
)

// FileName is the settings file expected at the root of a working directory.
const FileName = "luasharp.settings.json"

// DefaultWatchDebounce is used when WatchDebounceMillis is absent.
const DefaultWatchDebounce = 200 * time.Millisecond

//go:embed settings.cue
var schemaSource string

// Settings is the decoded settings file.
type Settings struct {
	SourceDirectory     string            `json:"SourceDirectory"`
	OutputDirectory     string            `json:"OutputDirectory"`
	ToolVersion         string            `json:"ToolVersion,omitempty"`
	TypeMap             map[string]string `json:"TypeMap,omitempty"`
	Cache               *bool             `json:"Cache,omitempty"`
	WatchDebounceMillis *int              `json:"WatchDebounceMillis,omitempty"`

	workDir string
}

// WorkDir is the absolute working directory the settings were loaded from.
func (s *Settings) WorkDir() string { return s.workDir }

// SourcePath is the absolute source directory.
func (s *Settings) SourcePath() string { return s.resolve(s.SourceDirectory) }

// OutputPath is the absolute output directory.
func (s *Settings) OutputPath() string { return s.resolve(s.OutputDirectory) }

// CacheEnabled reports whether the build cache is on. Defaults to true.
func (s *Settings) CacheEnabled() bool {
	return s.Cache == nil || *s.Cache
}

// WatchDebounce is the quiet period watch mode waits for before rebuilding.
func (s *Settings) WatchDebounce() time.Duration {
	if s.WatchDebounceMillis == nil {
		return DefaultWatchDebounce
	}
	return time.Duration(*s.WatchDebounceMillis) * time.Millisecond
}

func (s *Settings) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(s.workDir, dir)
}

// Load reads FileName from workDir, validates it and checks that the source
// directory exists. All failures are returned as *Error.
func Load(workDir string) (*Settings, error) {
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return nil, &Error{Code: ErrCodeWorkDirMissing, Message: err.Error(), Path: workDir}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &Error{Code: ErrCodeWorkDirMissing, Message: "working directory not found", Path: abs}
	}
	if !info.IsDir() {
		return nil, &Error{Code: ErrCodeWorkDirMissing, Message: "not a directory", Path: abs}
	}

	path := filepath.Join(abs, FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &Error{Code: ErrCodeSettingsMissing, Message: "settings file not found", Path: path}
	}
	if err != nil {
		return nil, &Error{Code: ErrCodeSettingsInvalid, Message: fmt.Sprintf("reading settings: %v", err), Path: path}
	}

	s, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	s.workDir = abs

	src := s.SourcePath()
	info, err = os.Stat(src)
	if err != nil || !info.IsDir() {
		return nil, &Error{Code: ErrCodeSourceMissing, Message: fmt.Sprintf("source directory %q does not exist", s.SourceDirectory), Path: src}
	}
	return s, nil
}

// Parse validates raw settings JSON against the schema and decodes it.
// filename is used in error positions only. The returned settings resolve
// relative directories against the current directory until loaded via Load.
func Parse(filename string, data []byte) (*Settings, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("settings.cue"))
	if err := schema.Err(); err != nil {
		// The schema is embedded; failure here is a build defect.
		return nil, fmt.Errorf("compile settings schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Settings"))

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, cueError(filename, "malformed settings", err)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(filename, "invalid settings", err)
	}

	var s Settings
	if err := unified.Decode(&s); err != nil {
		return nil, cueError(filename, "decoding settings", err)
	}
	if err := checkToolVersion(filename, s.ToolVersion); err != nil {
		return nil, err
	}
	return &s, nil
}

// checkToolVersion verifies the running tool satisfies the configured range.
func checkToolVersion(filename, constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return &Error{Code: ErrCodeSettingsInvalid, Message: fmt.Sprintf("ToolVersion %q: %v", constraint, err), Path: filename}
	}
	current := semver.MustParse(ir.ToolVersion)
	if !c.Check(current) {
		return &Error{
			Code:    ErrCodeVersionMismatch,
			Message: fmt.Sprintf("settings require luasharp %s, running %s", constraint, ir.ToolVersion),
			Path:    filename,
		}
	}
	return nil
}

// cueError converts the first CUE error into an *Error with its line.
func cueError(filename, prefix string, err error) *Error {
	out := &Error{Code: ErrCodeSettingsInvalid, Message: fmt.Sprintf("%s: %v", prefix, err), Path: filename}
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return out
	}
	first := list[0]
	out.Message = fmt.Sprintf("%s: %s", prefix, first.Error())
	for _, pos := range cueerrors.Positions(first) {
		if pos.Filename() == filename && pos.Line() > 0 {
			out.Line = pos.Line()
			break
		}
	}
	return out
}
