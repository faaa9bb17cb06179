package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/luasharp/internal/config"
)

const sampleSource = `namespace A
{
    class B
    {
        int Foo(string x) { return x.Length; }
    }
}
`

// newWorkDir creates a project with default settings and the given source
// files under src/.
func newWorkDir(t *testing.T, files map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	writeSettings(t, dir, `{"SourceDirectory": "src", "OutputDirectory": "out"}`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	for rel, data := range files {
		writeSource(t, dir, rel, data)
	}
	return dir
}

func writeSettings(t *testing.T, dir, settings string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(settings), 0o644))
}

func writeSource(t *testing.T, dir, rel string, data []byte) {
	t.Helper()
	p := filepath.Join(dir, "src", filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
}

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}
