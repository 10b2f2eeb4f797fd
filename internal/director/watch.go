package director

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ivlev/sketchplay/internal/logging"
)

// Debounce collapses the burst of events editors emit for one save
const Debounce = 150 * time.Millisecond

// Watcher reloads a storyboard file whenever it is saved
type Watcher struct {
	path string
	w    *fsnotify.Watcher
}

// NewWatcher starts watching the directory of path. Watching the directory
// rather than the file survives editors that save by rename.
func NewWatcher(path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return &Watcher{path: abs, w: w}, nil
}

// Run calls fn with every successfully parsed revision until ctx is done.
// Files that fail to parse are logged and skipped.
func (w *Watcher) Run(ctx context.Context, fn func(*Storyboard)) error {
	defer w.w.Close()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(Debounce)

		case <-pending:
			pending = nil
			sb, err := ReadStoryboard(w.path)
			if err != nil {
				logging.Logger().Warn("storyboard reload failed", "path", w.path, "err", err)
				continue
			}
			logging.Logger().Info("storyboard reloaded", "path", w.path, "elements", len(sb.Elements))
			fn(sb)

		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			logging.Logger().Warn("watch error", "err", err)
		}
	}
}

// Close stops a watcher that was never run
func (w *Watcher) Close() error {
	return w.w.Close()
}
