// Package index builds the per-build post index: a deterministic
// date-descending ordering of all content entries, the derived tag set, and
// order-preserving tag filtering. Everything here is a pure function over its
// input; the index is rebuilt from scratch on every build invocation.
package index

import (
	"sort"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
)

// BuildIndex returns the entries ordered by publish date, most recent first.
//
// The sort is stable: entries sharing a publish date keep their relative
// input order, since no secondary key exists in the source data. The input
// slice is not modified.
func BuildIndex(entries []content.Entry) []content.Entry {
	ordered := make([]content.Entry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PubDate.After(ordered[j].PubDate)
	})
	return ordered
}

// CollectTags returns the distinct tags across all entries, sorted lexically
// for stable listing output.
func CollectTags(entries []content.Entry) []string {
	seen := make(map[string]struct{})
	for _, e := range entries {
		for _, tag := range e.Tags {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// TagIndex maps each tag to the slugs of the entries carrying it, in index
// order. Derived, never stored.
type TagIndex map[string][]string

// BuildTagIndex derives the tag-to-slugs mapping from ordered entries.
func BuildTagIndex(ordered []content.Entry) TagIndex {
	idx := make(TagIndex)
	for _, e := range ordered {
		for _, tag := range e.Tags {
			idx[tag] = append(idx[tag], e.Slug)
		}
	}
	return idx
}

// FilterByTag returns the subsequence of ordered entries carrying the tag
// (exact, case-sensitive match), preserving the established order. An
// unknown tag yields an empty, non-nil slice so listing pages can render
// their empty state.
func FilterByTag(ordered []content.Entry, tag string) []content.Entry {
	filtered := make([]content.Entry, 0)
	for _, e := range ordered {
		if e.HasTag(tag) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Published splits ordered entries into those published at or before now and
// those still scheduled for the future. Relative order is preserved in both
// halves.
func Published(ordered []content.Entry, now time.Time) (published, scheduled []content.Entry) {
	for _, e := range ordered {
		if e.PubDate.After(now) {
			scheduled = append(scheduled, e)
		} else {
			published = append(published, e)
		}
	}
	return published, scheduled
}
