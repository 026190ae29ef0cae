package datastore

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matsen/citegraph/internal/logging"
)

// DefaultDebounce is how long Watch waits after the last file event before reloading.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads the store whenever one of a set of local document files changes.
type Watcher struct {
	store    *Store
	loader   Loader
	files    map[string]bool
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher watches the given local files. The parent directory of each file
// is watched as well so that editors which save by rename are noticed.
func NewWatcher(store *Store, loader Loader, files []string, debounce time.Duration) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no local files to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		store:    store,
		loader:   loader,
		files:    make(map[string]bool),
		debounce: debounce,
		watcher:  fw,
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run processes file events until ctx is done. Each burst of changes results in one reload.
// A failed reload keeps the previous snapshot published.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	reload := func() { w.reload(ctx) }

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !w.files[name] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logging.Debug("file event", "path", name, "op", event.Op.String())

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, reload)
			mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Error("file watcher error", "err", err)
		}
	}
}

// reload runs one load unless ctx is already done, which happens when a
// debounce timer fires during shutdown.
func (w *Watcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	logging.Info("document changed, reloading")
	if _, err := w.store.Load(ctx, w.loader); err != nil {
		logging.Error("reload failed, keeping current snapshot", "err", err)
	}
}
