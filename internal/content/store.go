package content

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Store discovers and loads content entries from the configured category
// directories. It holds no state between LoadAll calls; every build reads
// the content tree fresh.
type Store struct {
	contentDir string
	categories []config.CategoryConfig
}

// NewStore creates a content store rooted at contentDir.
func NewStore(contentDir string, categories []config.CategoryConfig) *Store {
	return &Store{contentDir: contentDir, categories: categories}
}

// LoadAll walks every category directory and returns all entries in
// discovery order (lexical within a category, categories in configured
// order). Validation failures are fatal and name the offending file.
func (s *Store) LoadAll() ([]Entry, error) {
	var entries []Entry
	for _, cat := range s.categories {
		dir := filepath.Join(s.contentDir, cat.Dir)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			slog.Warn("Category directory not found", logfields.Category(cat.Name), logfields.Path(dir))
			continue
		}

		catEntries, err := s.loadCategory(cat, dir)
		if err != nil {
			return nil, err
		}

		slog.Info("Content loaded", logfields.Category(cat.Name), logfields.Count(len(catEntries)))
		entries = append(entries, catEntries...)
	}
	slog.Info("Total content entries loaded", logfields.Count(len(entries)))
	return entries, nil
}

func (s *Store) loadCategory(cat config.CategoryConfig, dir string) ([]Entry, error) {
	var entries []Entry
	slugSources := make(map[string]string)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		if !isMarkdownFile(path) {
			return nil
		}

		entry, err := loadEntry(path, cat)
		if err != nil {
			return err
		}

		if prev, dup := slugSources[entry.Slug]; dup {
			return fmt.Errorf("%w: %q from %s and %s", ErrDuplicateSlug, entry.Slug, prev, path)
		}
		slugSources[entry.Slug] = path

		entries = append(entries, entry)
		slog.Debug("Loaded entry",
			logfields.Category(cat.Name),
			logfields.Slug(entry.Slug),
			logfields.File(entry.SourcePath))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrContentDirWalkFailed, dir, err)
	}
	return entries, nil
}

// loadEntry reads and validates a single content file.
func loadEntry(path string, cat config.CategoryConfig) (Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %s: %w", ErrFileReadFailed, path, err)
	}

	fm, body, _, err := frontmatter.Split(raw)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %s: %w", ErrInvalidFrontmatter, path, err)
	}

	var m meta
	if err := frontmatter.Decode(fm, &m); err != nil {
		return Entry{}, fmt.Errorf("%w: %s: %w", ErrInvalidFrontmatter, path, err)
	}

	if m.PubDate == nil {
		return Entry{}, fmt.Errorf("%w: %s", ErrMissingPubDate, path)
	}
	for _, tag := range m.Tags {
		if strings.TrimSpace(tag) == "" {
			return Entry{}, fmt.Errorf("%w: %s", ErrEmptyTag, path)
		}
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	entry := Entry{
		Category:    Category(cat.Name),
		Slug:        Slugify(stem),
		Title:       m.Title,
		Description: m.Description,
		PubDate:     m.PubDate.Time,
		Tags:        m.Tags,
		HeroImage:   m.HeroImage,
		ExternalURL: m.URL,
		SourcePath:  path,
		Body:        body,
	}
	if m.UpdatedDate != nil {
		t := m.UpdatedDate.Time
		entry.UpdatedDate = &t
	}
	if entry.Title == "" {
		entry.Title = titleFromSlug(entry.Slug)
	}
	return entry, nil
}

// titleFromSlug converts kebab form to Title Case: getting-started -> Getting Started.
func titleFromSlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

// isMarkdownFile checks if a file is a markdown file.
func isMarkdownFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".md" || ext == ".markdown" || ext == ".mdown" || ext == ".mkd"
}
