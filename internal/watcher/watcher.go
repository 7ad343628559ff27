// Package watcher follows the pipeline output root and reports artifacts as
// they appear, so a long run can be observed while it is still writing.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"stagehand/internal/artifacts"
	"stagehand/internal/logging"
)

// Event reports one newly written artifact.
type Event struct {
	Artifact artifacts.Artifact
	Kind     artifacts.Kind
}

// Watcher follows an output root and its subdirectories.
type Watcher struct {
	root    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher
}

// New creates a watcher for the given output root. The root must exist;
// callers should treat a missing root as "nothing to watch yet".
func New(root string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{root: root, logger: logger, watcher: fsw}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run delivers events until the context is cancelled. Newly created
// subdirectories are added to the watch set as the pipeline creates them
// (audio/, transcripts/, logs/, metadata/ appear on the first run).
func (w *Watcher) Run(ctx context.Context, onEvent func(Event)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if err := w.addTree(event.Name); err != nil {
					w.logger.Warn("watch new directory failed",
						logging.String("path", event.Name), logging.Error(err))
				}
				continue
			}
			if onEvent != nil {
				onEvent(Event{
					Artifact: artifacts.Artifact{
						Path:    event.Name,
						ModTime: info.ModTime(),
						Size:    info.Size(),
					},
					Kind: artifacts.Classify(event.Name),
				})
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				if errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("output root %s does not exist", root)
				}
				return err
			}
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
