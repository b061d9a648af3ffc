package commands

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/index"
	"git.home.luguber.info/inful/blogbuilder/internal/linkverify"
	"git.home.luguber.info/inful/blogbuilder/internal/routes"
)

// VerifyCmd implements the 'verify' command: check that internal links in
// the generated site resolve. Run it after 'build'.
type VerifyCmd struct {
	Site string `short:"s" help:"Generated site directory (overrides config output.directory)"`
}

func (v *VerifyCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	siteDir := cfg.Output.Directory
	if v.Site != "" {
		siteDir = v.Site
	}

	store := content.NewStore(cfg.Content.Dir, cfg.Categories)
	entries, err := store.LoadAll()
	if err != nil {
		return err
	}
	ordered, _ := index.Published(index.BuildIndex(entries), time.Now())

	resolver := routes.NewResolver(cfg.Categories, cfg.Tags)
	routeList, err := resolver.Resolve(ordered)
	if err != nil {
		return err
	}

	paths := []string{"/", "/tags/"}
	for _, r := range routeList {
		if !r.External() {
			paths = append(paths, r.Path)
		}
	}

	issues, err := linkverify.VerifySite(siteDir, paths)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		fmt.Println("All internal links resolve")
		return nil
	}

	for _, issue := range issues {
		fmt.Printf("broken link on %s: %s\n", issue.Page, issue.Target)
	}
	return fmt.Errorf("%d broken internal links", len(issues))
}
