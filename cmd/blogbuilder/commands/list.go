package commands

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/index"
	"git.home.luguber.info/inful/blogbuilder/internal/routes"
)

// ListCmd implements the 'list' command: show entries and routes without
// building anything.
type ListCmd struct {
	Tag    string `short:"t" help:"Only list entries carrying this tag"`
	Drafts bool   `help:"Include future-dated entries"`
}

func (l *ListCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store := content.NewStore(cfg.Content.Dir, cfg.Categories)
	entries, err := store.LoadAll()
	if err != nil {
		return err
	}

	ordered := index.BuildIndex(entries)
	var scheduled []content.Entry
	if !l.Drafts {
		ordered, scheduled = index.Published(ordered, time.Now())
	}

	if l.Tag != "" {
		for _, e := range index.FilterByTag(ordered, l.Tag) {
			printEntry(e, "")
		}
		return nil
	}

	resolver := routes.NewResolver(cfg.Categories, cfg.Tags)
	routeList, err := resolver.Resolve(ordered)
	if err != nil {
		return err
	}

	for _, r := range routeList {
		switch r.Kind {
		case routes.KindPost:
			printEntry(*r.Entry, r.Path)
		case routes.KindTagListing:
			fmt.Printf("%-12s %s  %q (%d entries)\n", r.Kind, r.Path, r.Tag, len(r.Entries))
		}
	}
	for _, e := range scheduled {
		fmt.Printf("%-12s (scheduled %s)  %s/%s\n", "pending", e.PubDate.Format("2006-01-02"), e.Category, e.Slug)
	}
	return nil
}

func printEntry(e content.Entry, path string) {
	if path == "" {
		path = e.ExternalURL
	}
	if path == "" {
		path = "/" + e.Slug + "/"
	}
	fmt.Printf("%-12s %s  %s (%s)\n", e.Category, e.PubDate.Format("2006-01-02"), path, e.Title)
}
