package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/buildcache"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/gitsource"
	"git.home.luguber.info/inful/blogbuilder/internal/index"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/routes"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Output directory for the generated site (overrides config)"`
	Incremental bool   `short:"i" help:"Skip pages whose inputs did not change since the last build"`
	Drafts      bool   `help:"Include future-dated entries in the build"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	outputDir := cfg.Output.Directory
	if b.Output != "" {
		outputDir = b.Output
	}

	result, err := RunBuild(context.Background(), cfg, BuildOptions{
		OutputDir:   outputDir,
		Incremental: b.Incremental,
		Drafts:      b.Drafts,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Site built: %d pages written, %d up to date, %d entries (%d scheduled), %d tags\n",
		result.Stats.PagesWritten, result.Stats.PagesSkipped,
		len(result.Ordered)+len(result.Scheduled), len(result.Scheduled), len(result.Tags))
	return nil
}

// BuildOptions selects per-invocation build behavior.
type BuildOptions struct {
	OutputDir   string
	Incremental bool
	Drafts      bool
	Now         time.Time // zero means time.Now
}

// BuildResult carries the outputs later stages (watch, verify) need.
type BuildResult struct {
	Stats     site.Stats
	Ordered   []content.Entry // published entries in index order
	Scheduled []content.Entry // future-dated entries excluded from the build
	Routes    []routes.Route
	Tags      []string
}

// RunBuild executes the full pipeline: fetch (optional), discover, load,
// index, resolve routes, and generate.
func RunBuild(ctx context.Context, cfg *config.Config, opts BuildOptions) (*BuildResult, error) {
	start := time.Now()
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	contentDir := cfg.Content.Dir
	if cfg.Source != nil {
		fetched, err := gitsource.NewFetcher("").Fetch(ctx, cfg.Source)
		if err != nil {
			return nil, err
		}
		contentDir = fetched
	}

	store := content.NewStore(contentDir, cfg.Categories)
	entries, err := store.LoadAll()
	if err != nil {
		return nil, err
	}

	ordered := index.BuildIndex(entries)
	var scheduled []content.Entry
	if !opts.Drafts {
		ordered, scheduled = index.Published(ordered, now)
		if len(scheduled) > 0 {
			slog.Info("Excluding future-dated entries", logfields.Count(len(scheduled)))
		}
	}

	resolver := routes.NewResolver(cfg.Categories, cfg.Tags)
	routeList, err := resolver.Resolve(ordered)
	if err != nil {
		return nil, err
	}

	var cache *buildcache.Cache
	if opts.Incremental {
		cache, err = buildcache.Open(cfg.Output.CacheFile)
		if err != nil {
			return nil, err
		}
		defer func() {
			if cerr := cache.Close(); cerr != nil {
				slog.Warn("Failed to close build cache", logfields.Error(cerr))
			}
		}()
	}

	generator, err := site.NewGenerator(cfg, opts.OutputDir, cache)
	if err != nil {
		return nil, err
	}
	stats, err := generator.Generate(ctx, ordered, routeList)
	if err != nil {
		return nil, err
	}

	var tags []string
	for _, r := range routeList {
		if r.Kind == routes.KindTagListing {
			tags = append(tags, r.Tag)
		}
	}

	slog.Info("Build finished",
		logfields.Path(opts.OutputDir),
		logfields.Count(len(ordered)),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))

	return &BuildResult{
		Stats:     stats,
		Ordered:   ordered,
		Scheduled: scheduled,
		Routes:    routeList,
		Tags:      tags,
	}, nil
}
