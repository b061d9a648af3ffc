package site

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/buildcache"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/index"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
	"git.home.luguber.info/inful/blogbuilder/internal/routes"
)

//go:embed templates/*.html
var templateFS embed.FS

// templateVersion participates in page hashes so template changes invalidate
// the incremental cache. Bump when editing the embedded templates.
const templateVersion = "v2"

// Generator renders the resolved routes into a static site tree.
type Generator struct {
	cfg       *config.Config
	outputDir string
	renderer  *markdown.Renderer
	cache     *buildcache.Cache // nil disables incremental builds

	layouts map[string]*template.Template
	pathFor map[string]string // category/slug -> route path
}

// Stats summarizes one generation pass.
type Stats struct {
	PagesWritten int
	PagesSkipped int
}

// NewGenerator creates a generator for the given config and output directory.
// cache may be nil, disabling incremental page skipping.
func NewGenerator(cfg *config.Config, outputDir string, cache *buildcache.Cache) (*Generator, error) {
	g := &Generator{
		cfg:       cfg,
		outputDir: outputDir,
		renderer:  markdown.NewRenderer(),
		cache:     cache,
		layouts:   make(map[string]*template.Template),
		pathFor:   make(map[string]string),
	}

	funcs := template.FuncMap{
		"humanDate": humanDate,
		"tagPath":   routes.TagPath,
		"entryPath": func(e content.Entry) string { return g.entryPath(e) },
	}
	for _, name := range []string{"post", "taglist", "home", "tagindex"} {
		tpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		g.layouts[name] = tpl
	}
	return g, nil
}

func humanDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format("Jan 2, 2006")
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format("Jan 2, 2006")
	default:
		return ""
	}
}

func (g *Generator) entryPath(e content.Entry) string {
	if e.ExternalURL != "" {
		return e.ExternalURL
	}
	return g.pathFor[string(e.Category)+"/"+e.Slug]
}

type basePage struct {
	Site        config.SiteConfig
	Title       string
	Description string
	Year        int
}

type postPage struct {
	basePage
	Entry   *content.Entry
	Content template.HTML
}

type tagListPage struct {
	basePage
	Tag     string
	Entries []content.Entry
}

type homePage struct {
	basePage
	Entries []content.Entry
}

// tagRef is one row on the tag index page.
type tagRef struct {
	Name  string
	Count int
}

type tagIndexPage struct {
	basePage
	Tags []tagRef
}

// Generate writes all pages for the resolved routes plus the home page, the
// tag index, and the Atom feed. ordered must already be in index order.
func (g *Generator) Generate(ctx context.Context, ordered []content.Entry, routeList []routes.Route) (Stats, error) {
	var stats Stats
	start := time.Now()

	if g.cfg.Output.Clean {
		if err := os.RemoveAll(g.outputDir); err != nil {
			return stats, fmt.Errorf("clean output directory: %w", err)
		}
	}
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return stats, fmt.Errorf("create output directory: %w", err)
	}

	for _, r := range routeList {
		if r.Kind == routes.KindPost && !r.External() {
			g.pathFor[string(r.Entry.Category)+"/"+r.Entry.Slug] = r.Path
		}
	}

	buildID := ""
	if g.cache != nil {
		id, err := g.cache.BeginBuild(ctx)
		if err != nil {
			return stats, err
		}
		buildID = id
		slog.Debug("Started incremental build", logfields.BuildID(buildID))
	}

	var tags []string
	for _, r := range routeList {
		var err error
		switch {
		case r.Kind == routes.KindPost && r.External():
			// Nothing to generate; the route links out.
			continue
		case r.Kind == routes.KindPost:
			err = g.generatePost(ctx, &r, buildID, &stats)
		case r.Kind == routes.KindTagListing:
			tags = append(tags, r.Tag)
			err = g.generateTagListing(ctx, &r, buildID, &stats)
		}
		if err != nil {
			return stats, err
		}
	}

	if err := g.generateHome(ctx, ordered, buildID, &stats); err != nil {
		return stats, err
	}
	if err := g.generateTagIndex(ctx, tags, ordered, buildID, &stats); err != nil {
		return stats, err
	}
	if err := g.generateFeed(ordered); err != nil {
		return stats, err
	}
	if err := g.writeStylesheet(); err != nil {
		return stats, err
	}

	if g.cache != nil {
		if err := g.cache.FinishBuild(ctx, buildID, stats.PagesWritten); err != nil {
			return stats, err
		}
		// Home and tag index are cached too; keep their rows live.
		live := []string{"/", "/tags/"}
		for _, r := range routeList {
			if !r.External() {
				live = append(live, r.Path)
			}
		}
		if pruned, err := g.cache.Prune(ctx, live); err != nil {
			slog.Warn("Failed to prune build cache", logfields.Error(err))
		} else if pruned > 0 {
			slog.Debug("Pruned stale cache entries", slog.Int64("pruned", pruned))
		}
	}

	slog.Info("Site generated",
		logfields.Path(g.outputDir),
		slog.Int("written", stats.PagesWritten),
		slog.Int("skipped", stats.PagesSkipped),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return stats, nil
}

// siteHashParts covers everything the shared layout renders, so site-wide
// metadata edits invalidate every cached page.
func (g *Generator) siteHashParts() [][]byte {
	return [][]byte{
		[]byte(templateVersion),
		[]byte(g.cfg.Site.Title),
		[]byte(g.cfg.Site.Author),
	}
}

// listingHashParts covers the fields the listing templates render per entry,
// including the link target (route path or external URL).
func listingHashParts(e content.Entry) [][]byte {
	return [][]byte{
		[]byte(e.Category),
		[]byte(e.Slug),
		[]byte(e.ExternalURL),
		[]byte(e.Title),
		[]byte(e.PubDate.Format(time.RFC3339)),
	}
}

func (g *Generator) generatePost(ctx context.Context, r *routes.Route, buildID string, stats *Stats) error {
	parts := append(g.siteHashParts(), r.Entry.Body,
		[]byte(r.Entry.Title), []byte(r.Entry.Description), []byte(r.Entry.HeroImage),
		[]byte(r.Entry.PubDate.Format(time.RFC3339)))
	if r.Entry.UpdatedDate != nil {
		parts = append(parts, []byte(r.Entry.UpdatedDate.Format(time.RFC3339)))
	}
	for _, tag := range r.Entry.Tags {
		parts = append(parts, []byte(tag))
	}
	hash := buildcache.HashContent(parts...)
	if skip, err := g.upToDate(ctx, r.Path, hash); err != nil {
		return err
	} else if skip {
		stats.PagesSkipped++
		return nil
	}

	html, err := g.renderer.Render(r.Entry.Body)
	if err != nil {
		return fmt.Errorf("render %s: %w", r.Entry.SourcePath, err)
	}

	page := postPage{
		basePage: g.basePage(r.Entry.Title, r.Entry.Description),
		Entry:    r.Entry,
		Content:  template.HTML(html),
	}
	if err := g.writePage(ctx, "post", r.Path, page, hash, buildID); err != nil {
		return err
	}
	stats.PagesWritten++
	slog.Debug("Generated post page", logfields.Route(r.Path), logfields.Slug(r.Entry.Slug))
	return nil
}

func (g *Generator) generateTagListing(ctx context.Context, r *routes.Route, buildID string, stats *Stats) error {
	parts := append(g.siteHashParts(), []byte(r.Tag))
	for _, e := range r.Entries {
		parts = append(parts, listingHashParts(e)...)
	}
	hash := buildcache.HashContent(parts...)
	if skip, err := g.upToDate(ctx, r.Path, hash); err != nil {
		return err
	} else if skip {
		stats.PagesSkipped++
		return nil
	}

	page := tagListPage{
		basePage: g.basePage(r.Tag+" — "+g.cfg.Site.Title, ""),
		Tag:      r.Tag,
		Entries:  r.Entries,
	}
	if err := g.writePage(ctx, "taglist", r.Path, page, hash, buildID); err != nil {
		return err
	}
	stats.PagesWritten++
	slog.Debug("Generated tag listing", logfields.Route(r.Path), logfields.Tag(r.Tag), logfields.Count(len(r.Entries)))
	return nil
}

func (g *Generator) generateHome(ctx context.Context, ordered []content.Entry, buildID string, stats *Stats) error {
	parts := append(g.siteHashParts(), []byte(g.cfg.Site.Description))
	for _, e := range ordered {
		parts = append(parts, listingHashParts(e)...)
		parts = append(parts, []byte(e.Description))
	}
	hash := buildcache.HashContent(parts...)
	if skip, err := g.upToDate(ctx, "/", hash); err != nil {
		return err
	} else if skip {
		stats.PagesSkipped++
		return nil
	}

	page := homePage{
		basePage: g.basePage(g.cfg.Site.Title, g.cfg.Site.Description),
		Entries:  ordered,
	}
	if err := g.writePage(ctx, "home", "/", page, hash, buildID); err != nil {
		return err
	}
	stats.PagesWritten++
	return nil
}

func (g *Generator) generateTagIndex(ctx context.Context, tags []string, ordered []content.Entry, buildID string, stats *Stats) error {
	byTag := index.BuildTagIndex(ordered)
	refs := make([]tagRef, 0, len(tags))
	for _, t := range tags {
		refs = append(refs, tagRef{Name: t, Count: len(byTag[t])})
	}

	parts := g.siteHashParts()
	for _, ref := range refs {
		parts = append(parts, []byte(ref.Name), []byte(strconv.Itoa(ref.Count)))
	}
	hash := buildcache.HashContent(parts...)
	if skip, err := g.upToDate(ctx, "/tags/", hash); err != nil {
		return err
	} else if skip {
		stats.PagesSkipped++
		return nil
	}

	page := tagIndexPage{
		basePage: g.basePage("Tags — "+g.cfg.Site.Title, ""),
		Tags:     refs,
	}
	if err := g.writePage(ctx, "tagindex", "/tags/", page, hash, buildID); err != nil {
		return err
	}
	stats.PagesWritten++
	return nil
}

func (g *Generator) basePage(title, description string) basePage {
	return basePage{
		Site:        g.cfg.Site,
		Title:       title,
		Description: description,
		Year:        time.Now().Year(),
	}
}

// upToDate reports whether the page at path already matches hash on disk.
func (g *Generator) upToDate(ctx context.Context, path, hash string) (bool, error) {
	if g.cache == nil {
		return false, nil
	}
	stored, found, err := g.cache.Lookup(ctx, path)
	if err != nil {
		return false, err
	}
	if !found || stored != hash {
		return false, nil
	}
	if _, err := os.Stat(g.filePath(path)); err != nil {
		return false, nil
	}
	return true, nil
}

// filePath maps a route path to its index.html location in the output tree.
func (g *Generator) filePath(routePath string) string {
	return filepath.Join(g.outputDir, filepath.FromSlash(routePath), "index.html")
}

func (g *Generator) writePage(ctx context.Context, layout, routePath string, data any, hash, buildID string) error {
	target := g.filePath(routePath)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create page directory: %w", err)
	}

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create page file: %w", err)
	}
	if err := g.layouts[layout].Execute(out, data); err != nil {
		_ = out.Close()
		return fmt.Errorf("execute %s template for %s: %w", layout, routePath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close page file: %w", err)
	}

	if g.cache != nil {
		if err := g.cache.Store(ctx, routePath, hash, buildID); err != nil {
			return err
		}
	}
	return nil
}

const stylesheet = `body{max-width:42rem;margin:0 auto;padding:0 1rem;font:1rem/1.6 system-ui,sans-serif;color:#222}
nav a{margin-right:1rem}
.post-list{list-style:none;padding:0}
.post-list time{color:#777;margin-right:.75rem;font-variant-numeric:tabular-nums}
.tags{list-style:none;padding:0;display:flex;gap:.5rem}
.meta{color:#777}
.empty{color:#777;font-style:italic}
img.hero{max-width:100%}
`

func (g *Generator) writeStylesheet() error {
	dir := filepath.Join(g.outputDir, "assets")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create assets directory: %w", err)
	}
	// #nosec G306 -- public site asset
	if err := os.WriteFile(filepath.Join(dir, "site.css"), []byte(stylesheet), 0o644); err != nil {
		return fmt.Errorf("write stylesheet: %w", err)
	}
	return nil
}
