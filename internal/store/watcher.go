package store

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the store whenever another process rewrites the backing
// file, notifying subscribers after each reload. The store's own writes
// are suppressed by counting them. The watcher stops when ctx is done.
// Only meaningful on a real filesystem.
func (f *Favorites) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: renames over the file would detach a file watch.
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		watcher.Close()
		return err
	}

	// Writes from before the watch registration never produce events.
	f.mu.Lock()
	f.pendingWrites = 0
	f.mu.Unlock()

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != f.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				f.reloadExternal()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.log.WithError(err).Warn("favorites watcher error")
			}
		}
	}()
	return nil
}

func (f *Favorites) reloadExternal() {
	f.mu.Lock()
	if f.pendingWrites > 0 {
		f.pendingWrites--
		f.mu.Unlock()
		return
	}
	err := f.readLocked()
	f.mu.Unlock()

	if err != nil {
		f.log.WithError(err).Warn("favorites reload failed")
		return
	}
	f.notify()
}
