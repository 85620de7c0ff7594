// Package watch triggers rescans when files below a project root change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"dirscope/internal/ignore"
	"dirscope/pkg/logger"
)

// Options configures a Watcher
type Options struct {
	Debounce time.Duration
	// OnChange receives the root-relative paths changed during one burst
	OnChange func(paths []string)
}

// Watcher registers the root and every non-excluded directory below it
type Watcher struct {
	rootAbs   string
	set       *ignore.Set
	debouncer *Debouncer

	watcher   *fsnotify.Watcher
	closeOnce sync.Once
	closed    chan struct{}
}

// New creates a watcher for root. set decides which directories are
// watched and which events are reported; a nil set watches everything.
func New(root string, set *ignore.Set, opts Options) (*Watcher, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	if opts.OnChange == nil {
		return nil, errors.New("watch: OnChange callback is required")
	}
	if set == nil {
		set = ignore.NewSet(nil)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		rootAbs:   filepath.Clean(rootAbs),
		set:       set,
		debouncer: NewDebouncer(opts.Debounce),
		watcher:   fsw,
		closed:    make(chan struct{}),
	}
	w.debouncer.OnFire(opts.OnChange)

	if err := w.addDirRecursive(w.rootAbs); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", w.rootAbs, err)
	}
	return w, nil
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closed)
		w.debouncer.Stop()
		err = w.watcher.Close()
	})
	return err
}

// Run dispatches events until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.closed:
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Logger.WithError(err).Warn("File watcher error")
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod {
		return
	}
	rel, ok := w.toRel(ev.Name)
	if !ok {
		return
	}

	isDir := false
	if st, err := os.Stat(ev.Name); err == nil {
		isDir = st.IsDir()
	}
	if w.set.Excluded(rel, isDir) {
		return
	}

	if isDir && ev.Op&(fsnotify.Create|fsnotify.Rename) != 0 {
		if err := w.addDirRecursive(ev.Name); err != nil {
			logger.Logger.WithError(err).WithField("path", rel).Warn("Cannot watch new directory")
		}
	}

	logger.Logger.WithFields(map[string]interface{}{
		"path": rel,
		"op":   ev.Op.String(),
	}).Debug("Change detected")
	w.debouncer.Push(rel)
}

func (w *Watcher) toRel(abs string) (string, bool) {
	if strings.TrimSpace(abs) == "" {
		return "", false
	}

	rel, err := filepath.Rel(w.rootAbs, filepath.Clean(abs))
	if err != nil {
		return "", false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) addDirRecursive(absDir string) error {
	return filepath.WalkDir(filepath.Clean(absDir), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == w.rootAbs {
				return err
			}
			logger.Logger.WithError(err).WithField("path", p).Debug("Skipping unreadable directory")
			return filepath.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.rootAbs {
			rel, ok := w.toRel(p)
			if !ok || w.set.Excluded(rel, true) {
				return filepath.SkipDir
			}
		}
		return w.watcher.Add(p)
	})
}
