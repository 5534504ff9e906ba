package inference

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher bridges on-disk template changes into Store invalidation, for
// templates loaded from a Loader's filesystem rather than edited as LSP
// buffers (spec §4.4: "results are cached until the referenced file's mtime
// or open-buffer version changes"). Grounded on opal-lang-opal/runtime's
// fsnotify watch loop.
type Watcher struct {
	fs     *fsnotify.Watcher
	store  *Store
	log    *zap.Logger
	uriOf  func(path string) string
	done   chan struct{}
}

// NewWatcher creates a Watcher that invalidates store entries when their
// backing file changes. uriOf maps a filesystem path to the URI key used in
// Store.Get/Invalidate (identity if the two already match).
func NewWatcher(store *Store, log *zap.Logger, uriOf func(path string) string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	if uriOf == nil {
		uriOf = func(path string) string { return path }
	}
	return &Watcher{fs: fsw, store: store, log: log, uriOf: uriOf, done: make(chan struct{})}, nil
}

// Add registers dir (a template root directory) for change notifications.
func (w *Watcher) Add(dir string) error {
	return w.fs.Add(dir)
}

// Run processes filesystem events until Close is called. Intended to run in
// its own goroutine, mirroring the teacher's long-lived server loops.
func (w *Watcher) Run() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("template watcher error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename|fsnotify.Create) == 0 {
		return
	}
	uri := w.uriOf(filepath.Clean(ev.Name))
	w.log.Debug("invalidating template", zap.String("uri", uri), zap.String("op", ev.Op.String()))
	w.store.Invalidate(uri)
}

// Close stops the watch loop and releases the underlying fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}
