package catalog

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"resourcehub/internal/logging"
	"resourcehub/internal/model"
)

// Watcher watches a Loader's catalog directory for on-disk edits and
// invalidates the Loader's in-memory cache so the next LoadIndex or
// LoadResource call picks up the change. Grounded on the teacher's
// MangleWatcher, which does the same for a live-reloaded rule directory.
type Watcher struct {
	loader   *Loader
	watcher  *fsnotify.Watcher
	onChange func(path string)
}

// NewWatcher creates a Watcher over loader's catalog directory. The
// returned Watcher does not start watching until Run is called.
func NewWatcher(loader *Loader) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(loader.base); err != nil {
		_ = w.Close()
		return nil, err
	}
	for _, typ := range model.AllTypes() {
		_ = w.Add(filepath.Join(loader.base, typ.PluralDir()))
	}
	return &Watcher{loader: loader, watcher: w}, nil
}

// OnChange registers a callback invoked after the cache is invalidated in
// response to a write, create, remove, or rename event. fn may be nil.
func (w *Watcher) OnChange(fn func(path string)) {
	w.onChange = fn
}

// Run blocks, invalidating the loader's cache on every relevant fsnotify
// event, until ctx is cancelled or the underlying watcher errors.
func (w *Watcher) Run(ctx context.Context) error {
	log := logging.Get(logging.CategoryCatalog)
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("catalog watcher: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".yaml") {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		return
	}

	logging.Get(logging.CategoryCatalog).Debug("catalog watcher: %s %s", eventType, event.Name)

	w.loader.ClearCache()
	w.loader.ClearDiskCache()
	if w.onChange != nil {
		w.onChange(event.Name)
	}
}

// Close stops the watcher without waiting for Run's context to cancel.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
