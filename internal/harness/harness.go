package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/luasharp/internal/build"
	"github.com/roach88/luasharp/internal/store"
	"github.com/roach88/luasharp/internal/typemap"
)

// Harness runs scenarios in throwaway project directories.
type Harness struct {
	logger *slog.Logger
}

// New creates a harness. A nil logger discards build diagnostics.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// Run executes a scenario with a harness that discards logs.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return New(nil).Run(ctx, scenario)
}

// Run executes a scenario and evaluates its expectations.
//
// Execution flow:
//  1. Write the scenario files into a fresh temp project
//  2. Open an in-memory build cache
//  3. Build the project scenario.Runs times
//  4. Read back every output and evaluate the expectations
//
// The returned error covers harness failures only; per-file build failures
// are part of the result.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	root, err := os.MkdirTemp("", "luasharp-scenario-")
	if err != nil {
		return nil, fmt.Errorf("failed to create project dir: %w", err)
	}
	defer os.RemoveAll(root)

	srcDir := filepath.Join(root, "src")
	outDir := filepath.Join(root, "out")
	if err := writeFiles(srcDir, scenario.Files); err != nil {
		return nil, err
	}

	cache, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory cache: %w", err)
	}
	defer cache.Close()

	b, err := build.New(build.Options{
		SourceDir: srcDir,
		OutputDir: outDir,
		Types:     typemap.New(scenario.TypeMap),
		Cache:     cache,
		Logger:    h.logger.With("scenario", scenario.Name),
	})
	if err != nil {
		return nil, err
	}

	runs := scenario.Runs
	if runs == 0 {
		runs = 1
	}

	result := NewResult()
	for i := 0; i < runs; i++ {
		report, err := b.BuildAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		result.Report = report
	}

	if result.Outputs, err = readOutputs(outDir); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateExpectations(result, scenario.Expect) {
		result.AddError(msg)
	}
	return result, nil
}

func writeFiles(dir string, files map[string]string) error {
	for _, rel := range sortedKeys(files) {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("failed to write %s: %w", rel, err)
		}
		if err := os.WriteFile(p, []byte(files[rel]), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", rel, err)
		}
	}
	// An empty source directory must still exist.
	return os.MkdirAll(dir, 0o755)
}

// readOutputs loads every file under dir keyed by slash-separated path.
func readOutputs(dir string) (map[string]string, error) {
	out := make(map[string]string)
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read outputs: %w", err)
	}
	return out, nil
}
