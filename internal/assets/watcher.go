package assets

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/md5kit/internal/logger"
)

// Watcher invalidates cached assets when files under the manager's directory
// sources change on disk. Archives are not watched.
type Watcher struct {
	manager *Manager
	fsw     *fsnotify.Watcher
	dirs    []*dirSource

	// OnChange, when set, is called with the VFS path of every changed file
	// after its cache entries are dropped.
	OnChange func(path string)
}

// NewWatcher creates a watcher over every directory source added to m so far.
func NewWatcher(m *Manager) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}

	w := &Watcher{manager: m, fsw: fsw, dirs: m.dirSources()}
	for _, d := range w.dirs {
		if err := w.addTree(d.root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// addTree watches root and all of its subdirectories.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !e.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return errors.Wrapf(err, "watching %s", path)
		}
		return nil
	})
}

// Run processes file events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("asset watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename) {
		return
	}

	// New directories need their own watch
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				logger.Warn("asset watcher", zap.String("dir", event.Name), zap.Error(err))
			}
			return
		}
	}

	for _, d := range w.dirs {
		path, ok := d.relative(event.Name)
		if !ok {
			continue
		}
		w.manager.Invalidate(path)
		logger.Debug("asset changed", zap.String("path", path), zap.Stringer("op", event.Op))
		if w.OnChange != nil {
			w.OnChange(path)
		}
		return
	}
}
