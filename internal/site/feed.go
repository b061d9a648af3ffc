package site

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
)

// Atom feed types per RFC 4287. No feed library exists in our stack; the
// format is small enough for encoding/xml.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	XMLNS   string      `xml:"xmlns,attr"`
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Author  *atomAuthor `xml:"author,omitempty"`
	Links   []atomLink  `xml:"link"`
	Entries []atomEntry `xml:"entry"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
	Type string `xml:"type,attr,omitempty"`
}

type atomEntry struct {
	Title   string   `xml:"title"`
	ID      string   `xml:"id"`
	Updated string   `xml:"updated"`
	Link    atomLink `xml:"link"`
	Summary string   `xml:"summary,omitempty"`
}

// generateFeed writes feed.xml over the ordered entries. External entries
// appear with their external link, matching the listing pages.
func (g *Generator) generateFeed(ordered []content.Entry) error {
	base := strings.TrimSuffix(g.cfg.Site.BaseURL, "/")

	feed := atomFeed{
		XMLNS:   "http://www.w3.org/2005/Atom",
		Title:   g.cfg.Site.Title,
		ID:      base + "/",
		Updated: time.Now().UTC().Format(time.RFC3339),
		Links: []atomLink{
			{Href: base + "/feed.xml", Rel: "self", Type: "application/atom+xml"},
			{Href: base + "/"},
		},
	}
	if g.cfg.Site.Author != "" {
		feed.Author = &atomAuthor{Name: g.cfg.Site.Author}
	}
	if len(ordered) > 0 {
		feed.Updated = ordered[0].PubDate.UTC().Format(time.RFC3339)
	}

	for _, e := range ordered {
		link := g.entryPath(e)
		if e.ExternalURL == "" {
			link = base + link
		}
		updated := e.PubDate
		if e.UpdatedDate != nil {
			updated = *e.UpdatedDate
		}
		feed.Entries = append(feed.Entries, atomEntry{
			Title:   e.Title,
			ID:      link,
			Updated: updated.UTC().Format(time.RFC3339),
			Link:    atomLink{Href: link},
			Summary: e.Description,
		})
	}

	data, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}
	out := append([]byte(xml.Header), data...)
	out = append(out, '\n')

	target := filepath.Join(g.outputDir, "feed.xml")
	// #nosec G306 -- feed is public content
	if err := os.WriteFile(target, out, 0o644); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	return nil
}
