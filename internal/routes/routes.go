// Package routes enumerates every static path the site must generate: one
// post route per content entry and one listing route per tag. Path collisions
// across the merged category route space are a build-time fatal error.
package routes

import (
	"errors"
	"fmt"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/index"
)

// Kind discriminates the route payload.
type Kind string

const (
	KindPost       Kind = "post"
	KindTagListing Kind = "tag-listing"
)

// Route is one static path the site must generate.
type Route struct {
	Path string
	Kind Kind

	// Entry is set for KindPost routes.
	Entry *content.Entry

	// Tag and Entries are set for KindTagListing routes. Entries preserves
	// the index order and may be empty (the listing renders its empty state).
	Tag     string
	Entries []content.Entry
}

// External reports whether a post route points at an external URL rather
// than a generated page.
func (r *Route) External() bool {
	return r.Kind == KindPost && r.Entry != nil && r.Entry.ExternalURL != ""
}

var (
	// ErrPathCollision indicates two routes resolved to the same path.
	ErrPathCollision = errors.New("route path collision")
	// ErrUndeclaredTag indicates an entry tag missing from the declared tag list.
	ErrUndeclaredTag = errors.New("tag not in declared tag list")
)

// Resolver maps indexed entries and the tag set to the full route list.
type Resolver struct {
	prefixes map[content.Category]string
	tagsCfg  config.TagsConfig
}

// NewResolver builds a resolver from the configured categories and tag mode.
func NewResolver(categories []config.CategoryConfig, tagsCfg config.TagsConfig) *Resolver {
	prefixes := make(map[content.Category]string, len(categories))
	for _, cat := range categories {
		prefixes[content.Category(cat.Name)] = cat.PathPrefix
	}
	return &Resolver{prefixes: prefixes, tagsCfg: tagsCfg}
}

// Resolve enumerates all routes for the ordered entries.
//
// Post routes come first in index order, then one tag listing per tag. The
// tag set is the configured declared list or the derived set depending on
// tags.mode; in declared mode an entry tag outside the list fails the build.
//
// Collision checking covers generated paths only. External routes carry the
// entry's URL as Path but produce no page, so two entries pointing at the
// same external URL are allowed and never collide with a generated path.
func (r *Resolver) Resolve(ordered []content.Entry) ([]Route, error) {
	tags, err := r.tagSet(ordered)
	if err != nil {
		return nil, err
	}

	routes := make([]Route, 0, len(ordered)+len(tags))
	seen := make(map[string]string, len(ordered)+len(tags))

	for i := range ordered {
		entry := &ordered[i]
		path := r.postPath(entry)
		if entry.ExternalURL == "" {
			// External routes link out; only generated paths can collide.
			if prev, dup := seen[path]; dup {
				return nil, fmt.Errorf("%w: %s from %s and %s", ErrPathCollision, path, prev, entry.SourcePath)
			}
			seen[path] = entry.SourcePath
		}
		routes = append(routes, Route{Path: path, Kind: KindPost, Entry: entry})
	}

	for _, tag := range tags {
		path := TagPath(tag)
		if prev, dup := seen[path]; dup {
			return nil, fmt.Errorf("%w: %s from %s and tag %q", ErrPathCollision, path, prev, tag)
		}
		seen[path] = "tag " + tag
		routes = append(routes, Route{
			Path:    path,
			Kind:    KindTagListing,
			Tag:     tag,
			Entries: index.FilterByTag(ordered, tag),
		})
	}

	return routes, nil
}

func (r *Resolver) postPath(entry *content.Entry) string {
	if entry.ExternalURL != "" {
		return entry.ExternalURL
	}
	if prefix := r.prefixes[entry.Category]; prefix != "" {
		return "/" + prefix + "/" + entry.Slug + "/"
	}
	return "/" + entry.Slug + "/"
}

// TagPath returns the listing path for a tag. The tag itself stays exact for
// filtering; only the path form is slugified.
func TagPath(tag string) string {
	return "/tags/" + content.Slugify(tag) + "/"
}

// tagSet returns the tags that get listing pages, honoring tags.mode.
func (r *Resolver) tagSet(ordered []content.Entry) ([]string, error) {
	derived := index.CollectTags(ordered)
	if r.tagsCfg.Mode != config.TagModeDeclared {
		return derived, nil
	}

	declared := make(map[string]struct{}, len(r.tagsCfg.Declared))
	for _, tag := range r.tagsCfg.Declared {
		declared[tag] = struct{}{}
	}
	for _, tag := range derived {
		if _, ok := declared[tag]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUndeclaredTag, tag)
		}
	}
	return r.tagsCfg.Declared, nil
}
