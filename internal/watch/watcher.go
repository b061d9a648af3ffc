// Package watch rebuilds the site when content changes on disk and
// republishes scheduled entries when their publish date passes. It is build
// tooling: nothing here serves the generated site.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Watcher monitors content directories and triggers a rebuild callback after
// a debounce window, so editor save bursts collapse into one build.
type Watcher struct {
	watcher      *fsnotify.Watcher
	rebuild      func()
	debounceTime time.Duration
	triggerChan  chan struct{}
}

// NewWatcher creates a watcher over the given content directories,
// recursively registering every subdirectory.
func NewWatcher(dirs []string, rebuild func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:      fsw,
		rebuild:      rebuild,
		debounceTime: 500 * time.Millisecond,
		triggerChan:  make(chan struct{}, 1),
	}

	for _, dir := range dirs {
		if err := w.addRecursive(dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
		slog.Debug("Watching directory", logfields.Path(path))
		return nil
	})
}

// Run processes filesystem events until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	go w.debounceLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			return w.watcher.Close()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New subdirectories need registering before their files emit events.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			slog.Debug("Content change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
			w.trigger()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) trigger() {
	select {
	case w.triggerChan <- struct{}{}:
	default: // a rebuild is already pending
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.triggerChan:
		}

		timer := time.NewTimer(w.debounceTime)
	drain:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-w.triggerChan:
				// Another change landed inside the window; restart it.
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(w.debounceTime)
			case <-timer.C:
				break drain
			}
		}

		w.rebuild()
	}
}
