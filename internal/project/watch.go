package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Debounce is how long Watch waits for the file system to settle before
// reloading the tree.
const Debounce = 150 * time.Millisecond

// Watch reloads the tree under root whenever something changes and passes
// the fresh tree to fn. It blocks until ctx is done.
func Watch(ctx context.Context, root string, opts LoadOptions, logger *log.Logger, fn func(*Item)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("project: cannot watch: %w", err)
	}
	defer w.Close()

	if err := addTree(w, root, opts); err != nil {
		return err
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !opts.ShowHidden && hidden(root, ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					//nolint:errcheck // Best effort; the reload still shows the folder
					addTree(w, ev.Name, opts)
				}
			}
			if timer == nil {
				timer = time.NewTimer(Debounce)
			} else {
				timer.Reset(Debounce)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)

		case <-fire:
			fire = nil
			tree, err := Load(root, opts)
			if err != nil {
				logger.Warn("reload failed", "root", root, "err", err)
				continue
			}
			fn(tree)
		}
	}
}

func addTree(w *fsnotify.Watcher, dir string, opts LoadOptions) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && !opts.ShowHidden && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("project: cannot watch %s: %w", path, err)
		}
		return nil
	})
}

func hidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
