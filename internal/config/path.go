package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// AllowOutsidePathEnv disables the PATH check when set to "1".
const AllowOutsidePathEnv = "LUASHARP_ALLOW_OUTSIDE_PATH"

// CheckInstalled returns an *Error unless the running executable lives in a
// directory listed on PATH.
func CheckInstalled() error {
	if os.Getenv(AllowOutsidePathEnv) == "1" {
		return nil
	}
	exe, err := os.Executable()
	if err != nil {
		return &Error{Code: ErrCodeNotOnPath, Message: "cannot locate executable: " + err.Error()}
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	if !OnPath(filepath.Dir(exe), os.Getenv("PATH")) {
		return &Error{
			Code:    ErrCodeNotOnPath,
			Message: "luasharp must be run from a directory on PATH (set " + AllowOutsidePathEnv + "=1 to override)",
			Path:    exe,
		}
	}
	return nil
}

// OnPath reports whether dir is one of the entries of pathEnv.
func OnPath(dir, pathEnv string) bool {
	want := filepath.Clean(dir)
	if resolved, err := filepath.EvalSymlinks(want); err == nil {
		want = resolved
	}
	for _, entry := range filepath.SplitList(pathEnv) {
		if entry == "" {
			continue
		}
		got := filepath.Clean(entry)
		if resolved, err := filepath.EvalSymlinks(got); err == nil {
			got = resolved
		}
		if samePath(got, want) {
			return true
		}
	}
	return false
}

func samePath(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
