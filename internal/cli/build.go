package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/luasharp/internal/build"
	"github.com/roach88/luasharp/internal/config"
	"github.com/roach88/luasharp/internal/store"
	"github.com/roach88/luasharp/internal/typemap"
	"github.com/roach88/luasharp/internal/watch"
)

// BuildOptions holds flags for the build (root) command.
type BuildOptions struct {
	*RootOptions
	Watch   bool
	NoCache bool
}

// BuildSummary is the machine-readable result of one build.
type BuildSummary struct {
	BuildID  string        `json:"build_id"`
	Mode     string        `json:"mode"`
	Built    int           `json:"built"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Removed  []string      `json:"removed,omitempty"`
	Failures []FileFailure `json:"failures,omitempty"`
}

// FileFailure describes one file that failed to transpile.
type FileFailure struct {
	Path    string `json:"path"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

func runBuild(opts *BuildOptions, workDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	sess, err := config.StartSession(workDir)
	if err != nil {
		return configError(formatter, err)
	}
	settings := sess.Settings()
	formatter.VerboseLog("Using settings %s", sess.SettingsPath())

	cache := openCache(settings, opts.NoCache, logger)
	if cache != nil {
		defer cache.Close()
	}

	types := typemap.New(settings.TypeMap)
	builder, err := newBuilder(settings, types, cache, logger)
	if err != nil {
		return outputBuildError(formatter, ErrCodeGeneric, err)
	}

	ctx := cmd.Context()
	report, err := builder.BuildAll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return outputBuildError(formatter, ErrCodeGeneric, err)
	}
	writeSummary(formatter, report)

	if !opts.Watch {
		return reportExit(report)
	}
	return watchLoop(ctx, &watchSession{
		sess:      sess,
		settings:  settings,
		types:     types,
		builder:   builder,
		cache:     cache,
		formatter: formatter,
		logger:    logger,
	})
}

// watchSession is the state carried across watch batches.
type watchSession struct {
	sess      *config.Session
	settings  *config.Settings
	types     *typemap.Mapper
	builder   *build.Builder
	cache     *store.Store
	formatter *OutputFormatter
	logger    *slog.Logger
}

// watchLoop rebuilds changed files until ctx is cancelled. The settings file
// is re-read before each batch: a changed type map triggers a full build, and
// a changed source or output directory also restarts the watcher on the new
// source tree.
func watchLoop(ctx context.Context, ws *watchSession) error {
	for {
		restart, err := ws.watch(ctx)
		if err != nil || !restart || ctx.Err() != nil {
			return err
		}
	}
}

// watch runs one watcher over the current source directory. It reports
// whether it stopped because the directories moved.
func (ws *watchSession) watch(ctx context.Context) (bool, error) {
	settings := ws.settings
	w, err := watch.New(settings.SourcePath(), watch.Options{
		Debounce: settings.WatchDebounce(),
		Match:    build.IsSource,
		Logger:   ws.logger,
	})
	if err != nil {
		return false, outputBuildError(ws.formatter, ErrCodeGeneric, fmt.Errorf("watch %s: %w", settings.SourcePath(), err))
	}
	defer w.Close()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	restart := false
	ws.logger.Info("watching for changes", "dir", settings.SourcePath(), "debounce", settings.WatchDebounce())
	err = w.Run(runCtx, func(_ context.Context, batch watch.Batch) error {
		moved, err := ws.handle(ctx, batch)
		if moved {
			restart = true
			stop()
		}
		return err
	})
	return restart, err
}

// handle processes one batch and reports whether the source or output
// directory changed.
func (ws *watchSession) handle(ctx context.Context, batch watch.Batch) (bool, error) {
	next, err := ws.sess.Reload()
	if err != nil {
		ws.logger.Warn("settings reload failed; keeping previous settings", "error", err)
		return false, ws.rebuild(ctx, batch)
	}

	moved := next.SourcePath() != ws.settings.SourcePath() || next.OutputPath() != ws.settings.OutputPath()
	nextTypes := typemap.New(next.TypeMap)
	if !moved && nextTypes.Fingerprint() == ws.types.Fingerprint() {
		ws.settings = next
		return false, ws.rebuild(ctx, batch)
	}

	builder, err := newBuilder(next, nextTypes, ws.cache, ws.logger)
	if err != nil {
		return false, err
	}
	ws.settings, ws.types, ws.builder = next, nextTypes, builder
	if moved {
		ws.logger.Info("directories changed; rebuilding everything",
			"source", next.SourcePath(), "output", next.OutputPath())
	} else {
		ws.logger.Info("type map changed; rebuilding everything")
	}

	report, err := ws.builder.BuildAll(ctx)
	if err != nil {
		return moved, err
	}
	writeSummary(ws.formatter, report)
	return moved, nil
}

func (ws *watchSession) rebuild(ctx context.Context, batch watch.Batch) error {
	report, err := ws.builder.Rebuild(ctx, batch.Changed, batch.Removed)
	if err != nil {
		return err
	}
	writeSummary(ws.formatter, report)
	return nil
}

func newBuilder(settings *config.Settings, types *typemap.Mapper, cache *store.Store, logger *slog.Logger) (*build.Builder, error) {
	opts := build.Options{
		SourceDir: settings.SourcePath(),
		OutputDir: settings.OutputPath(),
		Types:     types,
		Logger:    logger,
	}
	// A nil *store.Store must not become a non-nil interface.
	if cache != nil {
		opts.Cache = cache
	}
	return build.New(opts)
}

// openCache opens the build cache, or returns nil when caching is off or
// the cache cannot be opened. The cache only speeds builds up, so failures
// are logged and the build continues without it.
func openCache(settings *config.Settings, noCache bool, logger *slog.Logger) *store.Store {
	if noCache || !settings.CacheEnabled() {
		return nil
	}
	path := cachePath(settings)
	s, err := store.Open(path)
	if err != nil {
		logger.Warn("build cache disabled", "path", path, "error", err)
		return nil
	}
	return s
}

func cachePath(settings *config.Settings) string {
	return filepath.Join(settings.WorkDir(), filepath.FromSlash(store.DefaultPath))
}

func summarize(report *build.Report) BuildSummary {
	s := BuildSummary{
		BuildID: report.BuildID,
		Mode:    report.Mode,
		Built:   report.Built,
		Skipped: report.Skipped,
		Failed:  report.Failed,
		Removed: report.Removed,
	}
	for _, fe := range report.Errors() {
		s.Failures = append(s.Failures, FileFailure{
			Path:    fe.Path,
			Stage:   string(fe.Stage),
			Message: fe.Err.Error(),
		})
	}
	return s
}

func writeSummary(formatter *OutputFormatter, report *build.Report) {
	summary := summarize(report)
	if formatter.JSON() {
		if report.OK() {
			_ = formatter.Success(summary)
		} else {
			_ = formatter.Error(ErrCodeBuildFailed, fmt.Sprintf("%d file(s) failed", report.Failed), summary)
		}
		return
	}

	mark := "✓"
	if !report.OK() {
		mark = "✗"
	}
	fmt.Fprintf(formatter.Writer, "%s Built %d, skipped %d, failed %d\n", mark, summary.Built, summary.Skipped, summary.Failed)
	for _, p := range summary.Removed {
		fmt.Fprintf(formatter.Writer, "  removed %s\n", p)
	}
	for _, f := range summary.Failures {
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n", f.Path, f.Stage, f.Message)
	}
	formatter.VerboseLog("Build %s (%s)", summary.BuildID, summary.Mode)
}

func reportExit(report *build.Report) error {
	if report.OK() {
		return nil
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%s: %d file(s) failed", ErrCodeBuildFailed, report.Failed))
}

// configError reports a settings error. Configuration errors are fatal to
// the session (exit code 2).
func configError(formatter *OutputFormatter, err error) error {
	var cfgErr *config.Error
	if !errors.As(err, &cfgErr) {
		return outputBuildError(formatter, ErrCodeGeneric, err)
	}
	details := map[string]any{}
	if cfgErr.Path != "" {
		details["path"] = cfgErr.Path
	}
	if cfgErr.Line > 0 {
		details["line"] = cfgErr.Line
	}
	_ = formatter.Error(cfgErr.Code, cfgErr.Message, details)
	return WrapExitError(ExitCommandError, "configuration error", err)
}

func outputBuildError(formatter *OutputFormatter, code string, err error) error {
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}
