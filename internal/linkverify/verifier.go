package linkverify

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Issue describes one broken internal link.
type Issue struct {
	Page   string // page the link appears on, relative to the site root
	Target string // the broken link target
}

// VerifySite walks every generated HTML page under siteDir and reports
// internal links that resolve to neither a known route nor an emitted file.
// An empty issue list means the site is internally consistent.
func VerifySite(siteDir string, routePaths []string) ([]Issue, error) {
	known := make(map[string]struct{}, len(routePaths))
	for _, p := range routePaths {
		known[normalizePath(p)] = struct{}{}
	}

	var issues []Issue
	err := filepath.Walk(siteDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".html") {
			return nil
		}

		links, err := ExtractLinks(path)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(siteDir, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}

		for _, link := range links {
			if !link.IsInternal {
				continue
			}
			if resolves(siteDir, known, link.URL) {
				continue
			}
			issues = append(issues, Issue{Page: rel, Target: link.URL})
			slog.Debug("Broken internal link", logfields.File(rel), logfields.URL(link.URL))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("verify site %s: %w", siteDir, err)
	}

	slog.Info("Link verification finished", logfields.Path(siteDir), slog.Int("broken", len(issues)))
	return issues, nil
}

// resolves reports whether an internal target matches a known route or an
// existing file in the output tree.
func resolves(siteDir string, known map[string]struct{}, target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	p := normalizePath(u.Path)
	if p == "" {
		// Fragment-only or empty after parsing; nothing to check.
		return true
	}
	if _, ok := known[p]; ok {
		return true
	}

	onDisk := filepath.Join(siteDir, filepath.FromSlash(strings.TrimPrefix(p, "/")))
	if info, err := os.Stat(onDisk); err == nil {
		if info.IsDir() {
			_, ierr := os.Stat(filepath.Join(onDisk, "index.html"))
			return ierr == nil
		}
		return true
	}
	return false
}

// normalizePath canonicalizes a site path for set membership: directory
// paths keep a trailing slash, file paths do not.
func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	if strings.HasSuffix(p, "/index.html") {
		p = strings.TrimSuffix(p, "index.html")
	}
	return p
}
