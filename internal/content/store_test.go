package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func blogCategory() config.CategoryConfig {
	return config.CategoryConfig{Name: "blog", Dir: "blog"}
}

func TestLoadAll_ParsesEntries(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blog"), "first-post.md", `---
title: First Post
description: Opening words
pubDate: 2024-01-01
tags:
  - go
  - blog
---
Hello world.
`)

	store := NewStore(root, []config.CategoryConfig{blogCategory()})
	entries, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	require.Equal(t, Category("blog"), e.Category)
	require.Equal(t, "first-post", e.Slug)
	require.Equal(t, "First Post", e.Title)
	require.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), e.PubDate)
	require.Equal(t, []string{"go", "blog"}, e.Tags)
	require.Equal(t, []byte("Hello world.\n"), e.Body)
	require.Nil(t, e.UpdatedDate)
}

func TestLoadAll_HumanReadableDates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blog"), "post.md", `---
title: Post
pubDate: Jul 8 2022
updatedDate: Aug 11 2022
---
body
`)

	store := NewStore(root, []config.CategoryConfig{blogCategory()})
	entries, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 2022, entries[0].PubDate.Year())
	require.NotNil(t, entries[0].UpdatedDate)
	require.Equal(t, time.Month(8), entries[0].UpdatedDate.Month())
}

func TestLoadAll_MissingPubDate_FailsWithFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blog"), "undated.md", "---\ntitle: No Date\n---\nbody\n")

	store := NewStore(root, []config.CategoryConfig{blogCategory()})
	_, err := store.LoadAll()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingPubDate))
	require.Contains(t, err.Error(), "undated.md")
}

func TestLoadAll_MalformedTags_Fails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blog"), "bad-tags.md", "---\npubDate: 2024-01-01\ntags: not-a-list\n---\nbody\n")

	store := NewStore(root, []config.CategoryConfig{blogCategory()})
	_, err := store.LoadAll()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidFrontmatter))
}

func TestLoadAll_EmptyTagString_Fails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blog"), "empty-tag.md", "---\npubDate: 2024-01-01\ntags:\n  - go\n  - \"\"\n---\nbody\n")

	store := NewStore(root, []config.CategoryConfig{blogCategory()})
	_, err := store.LoadAll()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrEmptyTag))
}

func TestLoadAll_DuplicateSlugWithinCategory_ReportsBothFiles(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "blog")
	writeFile(t, dir, "First Post.md", "---\npubDate: 2024-01-01\n---\na\n")
	writeFile(t, dir, "first-post.md", "---\npubDate: 2024-02-01\n---\nb\n")

	store := NewStore(root, []config.CategoryConfig{blogCategory()})
	_, err := store.LoadAll()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDuplicateSlug))
	require.Contains(t, err.Error(), "First Post.md")
	require.Contains(t, err.Error(), "first-post.md")
}

func TestLoadAll_MissingCategoryDirIsSkipped(t *testing.T) {
	store := NewStore(t.TempDir(), []config.CategoryConfig{blogCategory()})
	entries, err := store.LoadAll()
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestLoadAll_TitleDerivedFromSlug(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blog"), "getting-started.md", "---\npubDate: 2024-01-01\n---\nbody\n")

	store := NewStore(root, []config.CategoryConfig{blogCategory()})
	entries, err := store.LoadAll()
	require.NoError(t, err)
	require.Equal(t, "Getting Started", entries[0].Title)
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"First Post", "first-post"},
		{"Hello, World!", "hello-world"},
		{"Ångström über alles", "angstrom-uber-alles"},
		{"already-a-slug", "already-a-slug"},
		{"  trimmed  ", "trimmed"},
		{"v1.2.3 release", "v1-2-3-release"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Slugify(tc.in), "Slugify(%q)", tc.in)
	}
}

func TestHasTag_ExactCaseSensitiveMatch(t *testing.T) {
	e := Entry{Tags: []string{"Go", "blog"}}
	require.True(t, e.HasTag("Go"))
	require.False(t, e.HasTag("go"))
	require.False(t, e.HasTag("rust"))
}
