package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/luasharp/internal/compiler"
	"github.com/roach88/luasharp/internal/emitter"
	"github.com/roach88/luasharp/internal/ir"
	"github.com/roach88/luasharp/internal/store"
	"github.com/roach88/luasharp/internal/typemap"
)

// SourceExt and OutputExt are the input and output file extensions.
const (
	SourceExt = ".cs"
	OutputExt = ".lua"
)

// Cache is the subset of the build cache the builder uses.
// *store.Store satisfies it.
type Cache interface {
	Lookup(ctx context.Context, sourcePath string) (store.FileRecord, bool, error)
	Record(ctx context.Context, rec store.FileRecord) error
	Forget(ctx context.Context, sourcePath string) error
	BeginBuild(ctx context.Context, mode string) (store.Build, error)
	FinishBuild(ctx context.Context, id string, built, skipped, failed int) error
}

// TranspileFunc turns one source file into Lua text.
type TranspileFunc func(ctx context.Context, path string, src []byte) (string, error)

// Options configures a Builder.
type Options struct {
	SourceDir string
	OutputDir string

	// Types maps C# return types to Lua placeholders. Nil uses the defaults.
	Types *typemap.Mapper

	// Cache enables skipping unchanged files. Nil disables caching.
	Cache Cache

	// Logger receives per-file diagnostics. Nil discards them.
	Logger *slog.Logger

	// Transpile overrides the parse-normalize-emit pipeline.
	Transpile TranspileFunc
}

// Builder transpiles a source tree into an output tree.
type Builder struct {
	sourceDir string
	outputDir string
	cache     Cache
	log       *slog.Logger
	transpile TranspileFunc
	salt      string
}

// New validates opts and returns a Builder.
func New(opts Options) (*Builder, error) {
	if opts.SourceDir == "" {
		return nil, errors.New("build: source directory is required")
	}
	if opts.OutputDir == "" {
		return nil, errors.New("build: output directory is required")
	}

	types := opts.Types
	if types == nil {
		types = typemap.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	b := &Builder{
		sourceDir: filepath.Clean(opts.SourceDir),
		outputDir: filepath.Clean(opts.OutputDir),
		cache:     opts.Cache,
		log:       logger,
		transpile: opts.Transpile,
		// Output depends on the type map and the emitter version as well as
		// the source bytes.
		salt: types.Fingerprint() + "/" + ir.ToolVersion + "/" + ir.IRVersion,
	}
	if b.transpile == nil {
		b.transpile = Pipeline(types)
	}
	return b, nil
}

// Pipeline returns the standard parse-normalize-emit transpiler.
func Pipeline(types *typemap.Mapper) TranspileFunc {
	em := emitter.New(types)
	return func(ctx context.Context, path string, src []byte) (string, error) {
		unit, err := compiler.CompileSource(ctx, path, src)
		if err != nil {
			return "", err
		}
		return em.Emit(unit), nil
	}
}

// SourceFiles lists every source file under the source directory, relative
// and slash separated, in lexical order. Hidden directories and the output
// directory are not descended into.
func (b *Builder) SourceFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(b.sourceDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != b.sourceDir && (strings.HasPrefix(d.Name(), ".") || p == b.outputDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSource(p) {
			return nil
		}
		rel, err := filepath.Rel(b.sourceDir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", b.sourceDir, err)
	}
	sort.Strings(files)
	return files, nil
}

// IsSource reports whether p names a C# source file.
func IsSource(p string) bool {
	return strings.EqualFold(filepath.Ext(p), SourceExt)
}

// BuildAll transpiles every source file.
func (b *Builder) BuildAll(ctx context.Context) (*Report, error) {
	files, err := b.SourceFiles()
	if err != nil {
		return nil, err
	}
	return b.run(ctx, store.ModeFull, files, nil)
}

// Rebuild transpiles the changed files and deletes the outputs of the
// removed ones. Paths may be absolute or relative to the source directory;
// paths outside it and non-source files are ignored.
func (b *Builder) Rebuild(ctx context.Context, changed, removed []string) (*Report, error) {
	return b.run(ctx, store.ModeWatch, b.relAll(changed), b.relAll(removed))
}

func (b *Builder) run(ctx context.Context, mode string, files, removed []string) (*Report, error) {
	report := &Report{Mode: mode}

	if b.cache != nil {
		rec, err := b.cache.BeginBuild(ctx, mode)
		if err != nil {
			b.log.Warn("build cache unavailable", "error", err)
		} else {
			report.BuildID = rec.ID
		}
	}
	if report.BuildID == "" {
		report.BuildID = uuid.Must(uuid.NewV7()).String()
	}
	log := b.log.With("build", report.BuildID)

	for _, rel := range removed {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := b.remove(ctx, rel); err != nil {
			log.Error("remove failed", "path", rel, "error", err)
			report.add(FileResult{
				Path:   rel,
				Output: OutputPath(rel),
				Status: store.StatusFailed,
				Err:    &FileError{Path: rel, Stage: StageRemove, Err: err},
			})
			continue
		}
		report.Removed = append(report.Removed, rel)
	}

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := b.buildFile(ctx, rel, true)
		switch res.Status {
		case store.StatusFailed:
			log.Error("transpile failed", "path", rel, "stage", res.Err.Stage, "error", res.Err.Err)
		case store.StatusSkipped:
			log.Debug("unchanged", "path", rel)
		default:
			log.Debug("built", "path", rel, "output", res.Output)
		}
		b.record(ctx, report.BuildID, res)
		report.add(res)
	}

	if b.cache != nil {
		if err := b.cache.FinishBuild(ctx, report.BuildID, report.Built, report.Skipped, report.Failed); err != nil {
			log.Warn("build cache unavailable", "error", err)
		}
	}
	log.Info("build finished",
		"mode", mode,
		"built", report.Built,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"removed", len(report.Removed),
	)
	return report, nil
}

// BuildFile transpiles a single source file, given relative to the source
// directory, without touching the cache.
func (b *Builder) BuildFile(ctx context.Context, rel string) FileResult {
	return b.buildFile(ctx, filepath.ToSlash(rel), false)
}

func (b *Builder) buildFile(ctx context.Context, rel string, cached bool) (res FileResult) {
	res = FileResult{Path: rel, Output: OutputPath(rel)}
	stage := StageRead
	defer func() {
		if r := recover(); r != nil {
			res.fail(stage, &PanicError{Value: r})
		}
	}()

	src, err := os.ReadFile(b.sourcePath(rel))
	if err != nil {
		res.fail(StageRead, err)
		return res
	}
	res.sourceHash = ir.SourceHash(src, b.salt)

	if cached && b.unchanged(ctx, rel, res.sourceHash) {
		res.Status = store.StatusSkipped
		return res
	}

	stage = StageTranspile
	out, err := b.transpile(ctx, rel, src)
	if err != nil {
		res.fail(StageTranspile, err)
		return res
	}

	stage = StageWrite
	dst := b.outputPath(rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		res.fail(StageWrite, err)
		return res
	}
	if err := os.WriteFile(dst, []byte(out), 0o644); err != nil {
		res.fail(StageWrite, err)
		return res
	}

	res.Status = store.StatusBuilt
	res.outputHash = ir.OutputHash([]byte(out))
	return res
}

// unchanged reports whether the cache proves the output for rel is current:
// same salted source hash, last build succeeded, output file still intact.
func (b *Builder) unchanged(ctx context.Context, rel, sourceHash string) bool {
	if b.cache == nil {
		return false
	}
	rec, ok, err := b.cache.Lookup(ctx, rel)
	if err != nil {
		b.log.Warn("cache lookup failed", "path", rel, "error", err)
		return false
	}
	if !ok || rec.Status == store.StatusFailed || rec.SourceHash != sourceHash {
		return false
	}
	data, err := os.ReadFile(b.outputPath(rel))
	if err != nil {
		return false
	}
	return ir.OutputHash(data) == rec.OutputHash
}

// record stores the result in the cache. Skipped files keep their record
// but are attributed to the current build.
func (b *Builder) record(ctx context.Context, buildID string, res FileResult) {
	if b.cache == nil || res.sourceHash == "" {
		return
	}
	rec := store.FileRecord{
		SourcePath: res.Path,
		SourceHash: res.sourceHash,
		OutputPath: res.Output,
		OutputHash: res.outputHash,
		Status:     res.Status,
		BuildID:    buildID,
	}
	if res.Status == store.StatusSkipped {
		prev, ok, err := b.cache.Lookup(ctx, res.Path)
		if err != nil || !ok {
			return
		}
		rec.OutputHash = prev.OutputHash
	}
	if res.Err != nil {
		rec.Message = res.Err.Err.Error()
	}
	if err := b.cache.Record(ctx, rec); err != nil {
		b.log.Warn("cache write failed", "path", res.Path, "error", err)
	}
}

// remove deletes the output generated for rel and its cache record.
func (b *Builder) remove(ctx context.Context, rel string) error {
	if err := os.Remove(b.outputPath(rel)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if b.cache != nil {
		if err := b.cache.Forget(ctx, rel); err != nil {
			b.log.Warn("cache forget failed", "path", rel, "error", err)
		}
	}
	return nil
}

// relAll converts paths to sorted, de-duplicated source-relative paths.
func (b *Builder) relAll(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		rel, ok := b.Rel(p)
		if !ok || seen[rel] {
			continue
		}
		seen[rel] = true
		out = append(out, rel)
	}
	sort.Strings(out)
	return out
}

// Rel converts p to a slash-separated path relative to the source directory.
// It reports false for paths outside the source directory and for
// non-source files.
func (b *Builder) Rel(p string) (string, bool) {
	if !IsSource(p) {
		return "", false
	}
	if filepath.IsAbs(p) {
		r, err := filepath.Rel(b.sourceDir, p)
		if err != nil {
			return "", false
		}
		p = r
	}
	rel := path.Clean(filepath.ToSlash(p))
	if rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
		return "", false
	}
	return rel, true
}

// OutputPath maps a relative source path to its relative output path.
func OutputPath(rel string) string {
	return strings.TrimSuffix(rel, path.Ext(rel)) + OutputExt
}

func (b *Builder) sourcePath(rel string) string {
	return filepath.Join(b.sourceDir, filepath.FromSlash(rel))
}

func (b *Builder) outputPath(rel string) string {
	return filepath.Join(b.outputDir, filepath.FromSlash(OutputPath(rel)))
}

func (r *FileResult) fail(stage Stage, err error) {
	r.Status = store.StatusFailed
	r.Err = &FileError{Path: r.Path, Stage: stage, Err: err}
}
