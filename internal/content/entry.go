package content

import "time"

// Category identifies which content collection an entry belongs to.
// Categories share one route space; each contributes its own path prefix.
type Category string

// Entry represents a single content file after front-matter parsing.
type Entry struct {
	Category    Category   // configured category name (e.g. "blog", "code")
	Slug        string     // URL-safe identifier, unique within the category
	Title       string
	Description string
	PubDate     time.Time
	UpdatedDate *time.Time // nil when the entry was never updated
	Tags        []string   // optional; entries without tags carry nil
	HeroImage   string     // optional
	ExternalURL string     // optional link override; empty means self-hosted
	SourcePath  string     // originating file, for diagnostics
	Body        []byte     // markdown body with front-matter removed
}

// HasTag reports whether the entry carries the given tag (exact,
// case-sensitive match).
func (e *Entry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// meta is the typed front-matter shape of a content file.
type meta struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	PubDate     *yamlDate `yaml:"pubDate"`
	UpdatedDate *yamlDate `yaml:"updatedDate"`
	Tags        []string  `yaml:"tags"`
	HeroImage   string    `yaml:"heroImage"`
	URL         string    `yaml:"url"`
}
