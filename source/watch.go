package source

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// IncludeWatcher invalidates a Manager's canonical-path fileData cache when
// a watched include directory changes on disk, so a long-lived host (an
// editor integration re-running this front-end on every keystroke) doesn't
// need to recreate a Manager just to pick up an edited header. Off by
// default: spec.md §4.1's "loaded at most once" invariant holds unchanged
// between invalidations.
type IncludeWatcher struct {
	fsw *fsnotify.Watcher
	mgr *Manager
	done chan struct{}
}

// WatchIncludeDirs starts watching dirs for changes and returns a watcher
// that invalidates mgr's file cache on write/remove/rename events. Call
// Close when done.
func (m *Manager) WatchIncludeDirs(dirs []string) (*IncludeWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, d := range dirs {
		if err := fsw.Add(d); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	w := &IncludeWatcher{fsw: fsw, mgr: m, done: make(chan struct{})}
	m.watcher = w
	go w.run()
	return w, nil
}

func (w *IncludeWatcher) run() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				if abs, err := filepath.Abs(ev.Name); err == nil {
					w.mgr.invalidate(abs)
				}
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		case <-w.done:
			return
		}
	}
}

func (w *IncludeWatcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
