// Package watch reports debounced batches of file changes under a directory
// tree using OS-native notifications.
package watch

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Batch is one debounced set of changes. Paths are absolute and sorted.
// A path appears in Changed if it existed when the batch was flushed and in
// Removed otherwise.
type Batch struct {
	Changed []string
	Removed []string
}

// Empty reports whether the batch carries no paths.
func (b Batch) Empty() bool { return len(b.Changed) == 0 && len(b.Removed) == 0 }

// Handler processes a batch. A returned error is logged; watching goes on.
type Handler func(ctx context.Context, b Batch) error

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period after the last event before a batch is
	// flushed.
	Debounce time.Duration

	// Match selects the files of interest. Nil matches every file.
	Match func(path string) bool

	// Logger receives watcher diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Watcher watches a directory tree. Directories created after the watcher
// starts are added as they appear; hidden directories are ignored.
type Watcher struct {
	root string
	w    *fsnotify.Watcher
	opts Options
	log  *slog.Logger
}

// New starts watching root and every directory below it.
func New(root string, opts Options) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	w := &Watcher{root: filepath.Clean(root), w: fw, opts: opts, log: logger}
	if _, err := w.addTree(w.root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops the underlying notifier.
func (w *Watcher) Close() error { return w.w.Close() }

// Run delivers batches to handle until ctx is cancelled or the watcher is
// closed. It returns nil in both cases.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if !w.collect(ev, pending) {
				continue
			}
			timer.Reset(w.opts.Debounce)
			fire = timer.C

		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)

		case <-fire:
			fire = nil
			batch := flush(pending)
			pending = make(map[string]struct{})
			if batch.Empty() {
				continue
			}
			if err := handle(ctx, batch); err != nil {
				w.log.Error("rebuild failed", "error", err)
			}
		}
	}
}

// collect records the paths affected by ev and reports whether any were.
func (w *Watcher) collect(ev fsnotify.Event, pending map[string]struct{}) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			// Files may land in a new directory before it is watched.
			files, err := w.addTree(ev.Name)
			if err != nil {
				w.log.Warn("watch directory", "path", ev.Name, "error", err)
			}
			for _, f := range files {
				pending[f] = struct{}{}
			}
			return len(files) > 0
		}
	}
	if !w.match(ev.Name) {
		return false
	}
	pending[ev.Name] = struct{}{}
	return true
}

// addTree watches dir and its subdirectories and returns the matching files
// already present.
func (w *Watcher) addTree(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// A subdirectory vanished while walking.
			if p != dir && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if p != w.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return w.w.Add(p)
		}
		if w.match(p) {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func (w *Watcher) match(p string) bool {
	return w.opts.Match == nil || w.opts.Match(p)
}

func flush(pending map[string]struct{}) Batch {
	var b Batch
	for p := range pending {
		if info, err := os.Stat(p); err == nil {
			if !info.IsDir() {
				b.Changed = append(b.Changed, p)
			}
			continue
		}
		b.Removed = append(b.Removed, p)
	}
	sort.Strings(b.Changed)
	sort.Strings(b.Removed)
	return b
}
