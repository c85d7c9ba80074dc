package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// A Watcher reloads a Store whenever its source file changes on disk. A
// reload that fails to load or validate leaves the Store untouched.
type Watcher struct {
	path     string
	store    *Store
	logger   zerolog.Logger
	debounce time.Duration
	onReload func(err error)
}

// NewWatcher creates a Watcher that keeps store in sync with the file at path.
func NewWatcher(path string, store *Store, logger zerolog.Logger) *Watcher {
	return &Watcher{
		path:     path,
		store:    store,
		logger:   logger,
		debounce: 200 * time.Millisecond,
	}
}

// OnReload registers a callback invoked after every reload attempt.
func (w *Watcher) OnReload(f func(err error)) {
	w.onReload = f
}

// Reload loads the file once and swaps it into the Store.
func (w *Watcher) Reload() error {
	fresh, err := LoadFile(w.path)
	if err == nil {
		err = fresh.Validate()
	}

	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("catalog reload rejected")
	} else {
		w.store.Replace(fresh)
		w.logger.Info().Str("path", w.path).Msg("catalog reloaded")
	}

	if w.onReload != nil {
		w.onReload(err)
	}

	return err
}

// Run watches the directory of the catalog file until ctx is done. The
// directory is watched, not the file, so that editors that save by rename
// are still observed.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	file := filepath.Base(w.path)

	if err := fw.Add(dir); err != nil {
		return err
	}

	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}

			if filepath.Base(ev.Name) != file {
				continue
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(w.debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}

			w.logger.Warn().Err(err).Str("dir", dir).Msg("catalog watch error")
		case <-pending:
			pending = nil
			_ = w.Reload()
		}
	}
}
