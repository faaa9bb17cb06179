package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders the file results and generated Lua of a result as text.
// Failure messages are reduced to the stage so snapshots stay stable.
func Snapshot(result *Result) []byte {
	var buf strings.Builder
	if result.Report == nil {
		return nil
	}
	for _, f := range result.Report.Files {
		fmt.Fprintf(&buf, "=== %s [%s]\n", f.Path, f.Status)
		if f.Err != nil {
			fmt.Fprintf(&buf, "stage: %s\n", f.Err.Stage)
			continue
		}
		buf.WriteString(result.Outputs[f.Output])
	}
	return []byte(buf.String())
}

// RunWithGolden executes a scenario, fails the test on unmet expectations
// and compares the snapshot with testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	AssertGolden(t, scenario.Name, result)
	return nil
}

// AssertGolden compares an existing result against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(result))
}
