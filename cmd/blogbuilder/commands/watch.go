package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/watch"
)

// WatchCmd implements the 'watch' command: rebuild on content changes and
// republish future-dated entries when their publish time passes.
type WatchCmd struct {
	Output      string `short:"o" help:"Output directory for the generated site (overrides config)"`
	Incremental bool   `short:"i" help:"Skip pages whose inputs did not change between rebuilds" default:"true"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Source != nil {
		return fmt.Errorf("watch mode requires a local content tree (source is set to a remote repository)")
	}

	outputDir := cfg.Output.Directory
	if w.Output != "" {
		outputDir = w.Output
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var mu sync.Mutex // one rebuild at a time
	var scheduler *watch.PublishScheduler

	rebuild := func() {
		mu.Lock()
		defer mu.Unlock()
		result, err := RunBuild(ctx, cfg, BuildOptions{OutputDir: outputDir, Incremental: w.Incremental})
		if err != nil {
			slog.Error("Rebuild failed", logfields.Error(err))
			return
		}
		if err := scheduler.Reschedule(result.Scheduled); err != nil {
			slog.Error("Failed to reschedule publish jobs", logfields.Error(err))
		}
	}

	scheduler, err = watch.NewPublishScheduler(rebuild)
	if err != nil {
		return err
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			slog.Warn("Failed to stop publish scheduler", logfields.Error(err))
		}
	}()

	// Initial build before watching, so the site exists immediately.
	rebuild()

	dirs := make([]string, 0, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		dir := filepath.Join(cfg.Content.Dir, cat.Dir)
		if _, err := os.Stat(dir); err != nil {
			slog.Warn("Not watching missing category directory", logfields.Category(cat.Name), logfields.Path(dir))
			continue
		}
		dirs = append(dirs, dir)
	}
	watcher, err := watch.NewWatcher(dirs, rebuild)
	if err != nil {
		return err
	}

	slog.Info("Watching for content changes", logfields.Path(cfg.Content.Dir))
	return watcher.Run(ctx)
}
