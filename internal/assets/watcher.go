package assets

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports writes to a fixed set of image files.
type Watcher struct {
	paths  map[string]struct{}
	logger *slog.Logger
}

// NewWatcher watches the given file paths.
func NewWatcher(logger *slog.Logger, paths ...string) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[filepath.Clean(p)] = struct{}{}
	}
	return &Watcher{paths: set, logger: logger}
}

// Watch emits the path of a watched file each time it is written or recreated.
// The parent directories are watched so editors that replace files are seen.
// The channel closes when ctx is done.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	dirs := make(map[string]struct{})
	for p := range w.paths {
		dirs[filepath.Dir(p)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer fw.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				path := filepath.Clean(event.Name)
				if _, watched := w.paths[path]; !watched {
					continue
				}
				select {
				case out <- path:
				case <-ctx.Done():
					return
				}

			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.logger.Warn("asset watcher error", "error", err)
			}
		}
	}()

	return out, nil
}
