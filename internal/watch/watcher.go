// Package watch notifies the view when watched directories change on disk,
// debouncing event bursts into single refresh notifications.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/BurntToasters/IYERIS-sub000/internal/debug"
)

// Watcher wraps fsnotify with per-directory debouncing. A burst of change
// events inside one debounce window produces a single notification, so a
// large copy into a watched directory triggers one refresh, not thousands.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration

	mu       sync.Mutex
	watching map[string]bool

	notify chan string
	done   chan struct{}
}

// New creates a watcher coalescing events within the debounce window.
func New(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		watching: make(map[string]bool),
		notify:   make(chan string, 10),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Notify returns the channel receiving changed directory paths.
func (w *Watcher) Notify() <-chan string { return w.notify }

// Watch adds path to the watch set.
func (w *Watcher) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watching[path] {
		return nil
	}
	if err := w.fsw.Add(path); err != nil {
		return err
	}
	w.watching[path] = true
	debug.Log(debug.WATCH, "watching %s", path)
	return nil
}

// Unwatch removes path from the watch set. Removal errors are swallowed:
// the path may already be gone.
func (w *Watcher) Unwatch(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.watching[path] {
		return
	}
	if err := w.fsw.Remove(path); err != nil {
		debug.Log(debug.WATCH, "unwatch %s: %v", path, err)
	}
	delete(w.watching, path)
}

// SwitchTo replaces the whole watch set with just path, for the common
// single-view case of following the current directory.
func (w *Watcher) SwitchTo(path string) error {
	w.mu.Lock()
	for old := range w.watching {
		if old != path {
			_ = w.fsw.Remove(old)
			delete(w.watching, old)
		}
	}
	already := w.watching[path]
	w.mu.Unlock()
	if already {
		return nil
	}
	return w.Watch(path)
}

// Close shuts the watcher down.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

// run folds raw fsnotify events into debounced per-directory notifications.
func (w *Watcher) run() {
	lastEvent := make(map[string]time.Time)
	pending := make(map[string]bool)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
				continue
			}
			// Events name the changed file; map it to the watched
			// directory containing it.
			dir := filepath.Dir(event.Name)
			w.mu.Lock()
			switch {
			case w.watching[dir]:
			case w.watching[event.Name]:
				dir = event.Name
			default:
				w.mu.Unlock()
				continue
			}
			w.mu.Unlock()
			lastEvent[dir] = time.Now()
			pending[dir] = true
			debug.Log(debug.WATCH, "event %s on %s", event.Op, event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			debug.Log(debug.WATCH, "error: %v", err)

		case now := <-ticker.C:
			for dir := range pending {
				if now.Sub(lastEvent[dir]) < w.debounce {
					continue
				}
				select {
				case w.notify <- dir:
					debug.Log(debug.WATCH, "change notification: %s", dir)
				default:
					// Consumer is behind; drop rather than block.
				}
				delete(pending, dir)
				delete(lastEvent, dir)
			}
		}
	}
}
