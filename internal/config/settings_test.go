package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWorkDir(t *testing.T, settings string, dirs ...string) string {
	t.Helper()
	dir := t.TempDir()
	if settings != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(settings), 0o644))
	}
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, d), 0o755))
	}
	return dir
}

func requireCode(t *testing.T, err error, code string) *Error {
	t.Helper()
	require.Error(t, err)
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, code, cfgErr.Code, cfgErr.Error())
	return cfgErr
}

func TestLoadMinimal(t *testing.T) {
	dir := writeWorkDir(t, `{"SourceDirectory": "src", "OutputDirectory": "out"}`, "src")

	s, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "src"), s.SourcePath())
	assert.Equal(t, filepath.Join(dir, "out"), s.OutputPath())
	assert.True(t, s.CacheEnabled())
	assert.Equal(t, DefaultWatchDebounce, s.WatchDebounce())
	assert.Empty(t, s.TypeMap)
}

func TestLoadAllFields(t *testing.T) {
	dir := writeWorkDir(t, `{
	"SourceDirectory": "Scripts",
	"OutputDirectory": "/tmp/lua-out",
	"ToolVersion": ">= 0.1.0",
	"TypeMap": {"Vector3": "Vector3.new()"},
	"Cache": false,
	"WatchDebounceMillis": 50,
	"Comment": "unknown fields are ignored"
}`, "Scripts")

	s, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/lua-out", s.OutputPath())
	assert.Equal(t, map[string]string{"Vector3": "Vector3.new()"}, s.TypeMap)
	assert.False(t, s.CacheEnabled())
	assert.Equal(t, 50*time.Millisecond, s.WatchDebounce())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		settings string
		dirs     []string
		code     string
	}{
		{"missing settings", "", nil, ErrCodeSettingsMissing},
		{"malformed json", `{"SourceDirectory": `, []string{"src"}, ErrCodeSettingsInvalid},
		{"missing output", `{"SourceDirectory": "src"}`, []string{"src"}, ErrCodeSettingsInvalid},
		{"empty source", `{"SourceDirectory": "", "OutputDirectory": "out"}`, nil, ErrCodeSettingsInvalid},
		{"wrong type", `{"SourceDirectory": "src", "OutputDirectory": 3}`, []string{"src"}, ErrCodeSettingsInvalid},
		{"negative debounce", `{"SourceDirectory": "src", "OutputDirectory": "out", "WatchDebounceMillis": -1}`, []string{"src"}, ErrCodeSettingsInvalid},
		{"source missing", `{"SourceDirectory": "nope", "OutputDirectory": "out"}`, nil, ErrCodeSourceMissing},
		{"bad version range", `{"SourceDirectory": "src", "OutputDirectory": "out", "ToolVersion": "banana"}`, []string{"src"}, ErrCodeSettingsInvalid},
		{"version mismatch", `{"SourceDirectory": "src", "OutputDirectory": "out", "ToolVersion": ">= 99.0.0"}`, []string{"src"}, ErrCodeVersionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeWorkDir(t, tt.settings, tt.dirs...)
			_, err := Load(dir)
			requireCode(t, err, tt.code)
		})
	}
}

func TestLoadMissingWorkDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent"))
	requireCode(t, err, ErrCodeWorkDirMissing)
}

func TestLoadWorkDirIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err := Load(file)
	requireCode(t, err, ErrCodeWorkDirMissing)
}

func TestParseReportsLine(t *testing.T) {
	_, err := Parse("settings.json", []byte("{\n  \"SourceDirectory\": \"src\",\n  \"OutputDirectory\": true\n}\n"))
	cfgErr := requireCode(t, err, ErrCodeSettingsInvalid)
	assert.Equal(t, 3, cfgErr.Line)
	assert.Contains(t, cfgErr.Error(), "settings.json:3:")
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "E011: boom", (&Error{Code: "E011", Message: "boom"}).Error())
	assert.Equal(t, "a.json: E012: bad", (&Error{Code: "E012", Message: "bad", Path: "a.json"}).Error())
	assert.Equal(t, "a.json:2: E012: bad", (&Error{Code: "E012", Message: "bad", Path: "a.json", Line: 2}).Error())
}

func TestSessionPinsSettingsPath(t *testing.T) {
	dir := writeWorkDir(t, `{"SourceDirectory": "src", "OutputDirectory": "out"}`, "src")

	sess, err := StartSession(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), sess.SettingsPath())
	assert.Equal(t, "out", sess.Settings().OutputDirectory)

	require.NoError(t, os.WriteFile(sess.SettingsPath(), []byte(`{"SourceDirectory": "src", "OutputDirectory": "lua"}`), 0o644))
	next, err := sess.Reload()
	require.NoError(t, err)
	assert.Equal(t, "lua", next.OutputDirectory)
	assert.Same(t, next, sess.Settings())

	require.NoError(t, os.WriteFile(sess.SettingsPath(), []byte(`{}`), 0o644))
	_, err = sess.Reload()
	require.Error(t, err)
	assert.Equal(t, "lua", sess.Settings().OutputDirectory, "failed reload keeps previous settings")
}

func TestOnPath(t *testing.T) {
	bin := t.TempDir()
	other := t.TempDir()
	pathEnv := other + string(os.PathListSeparator) + bin

	assert.True(t, OnPath(bin, pathEnv))
	assert.True(t, OnPath(bin+string(filepath.Separator), pathEnv))
	assert.False(t, OnPath(t.TempDir(), pathEnv))
	assert.False(t, OnPath(bin, ""))
}

func TestCheckInstalledOverride(t *testing.T) {
	t.Setenv(AllowOutsidePathEnv, "1")
	assert.NoError(t, CheckInstalled())
}

func TestCheckInstalledOutsidePath(t *testing.T) {
	t.Setenv(AllowOutsidePathEnv, "")
	t.Setenv("PATH", t.TempDir())
	requireCode(t, CheckInstalled(), ErrCodeNotOnPath)
}
