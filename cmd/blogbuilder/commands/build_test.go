package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/linkverify"
	"git.home.luguber.info/inful/blogbuilder/internal/routes"
)

func writeContent(t *testing.T, root, category, name, body string) {
	t.Helper()
	dir := filepath.Join(root, category)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func pipelineConfig(t *testing.T) *config.Config {
	t.Helper()
	contentDir := t.TempDir()
	writeContent(t, contentDir, "blog", "first-post.md", `---
title: First Post
description: Opening words
pubDate: 2024-01-01
tags: [go]
---
# Hello

A [link to the snippet](/code/snippet/).
`)
	writeContent(t, contentDir, "code", "snippet.md", `---
title: A Snippet
pubDate: 2024-02-01
tags: [go, til]
---
code here
`)
	writeContent(t, contentDir, "blog", "scheduled.md", `---
title: Scheduled
pubDate: `+time.Now().Add(24*time.Hour).Format("2006-01-02 15:04:05")+`
---
not yet
`)

	return &config.Config{
		Site:    config.SiteConfig{Title: "Pipeline Blog", BaseURL: "https://example.com"},
		Content: config.ContentConfig{Dir: contentDir},
		Categories: []config.CategoryConfig{
			{Name: "blog", Dir: "blog"},
			{Name: "code", Dir: "code", PathPrefix: "code"},
		},
		Tags:   config.TagsConfig{Mode: config.TagModeDerived},
		Output: config.OutputConfig{Clean: true, CacheFile: filepath.Join(t.TempDir(), "cache.db")},
	}
}

func TestRunBuild_FullPipeline(t *testing.T) {
	cfg := pipelineConfig(t)
	outputDir := t.TempDir()

	result, err := RunBuild(context.Background(), cfg, BuildOptions{OutputDir: outputDir})
	require.NoError(t, err)

	require.Len(t, result.Ordered, 2)
	require.Len(t, result.Scheduled, 1)
	require.Equal(t, "scheduled", result.Scheduled[0].Slug)
	require.ElementsMatch(t, []string{"go", "til"}, result.Tags)

	require.FileExists(t, filepath.Join(outputDir, "first-post", "index.html"))
	require.FileExists(t, filepath.Join(outputDir, "code", "snippet", "index.html"))
	require.FileExists(t, filepath.Join(outputDir, "tags", "go", "index.html"))
	require.FileExists(t, filepath.Join(outputDir, "feed.xml"))

	// The scheduled entry must not be generated.
	require.NoDirExists(t, filepath.Join(outputDir, "scheduled"))
}

func TestRunBuild_DraftsIncludesScheduledEntries(t *testing.T) {
	cfg := pipelineConfig(t)
	outputDir := t.TempDir()

	result, err := RunBuild(context.Background(), cfg, BuildOptions{OutputDir: outputDir, Drafts: true})
	require.NoError(t, err)
	require.Len(t, result.Ordered, 3)
	require.Empty(t, result.Scheduled)
	require.FileExists(t, filepath.Join(outputDir, "scheduled", "index.html"))
}

func TestRunBuild_IncrementalSecondBuildSkips(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.Output.Clean = false
	outputDir := t.TempDir()

	first, err := RunBuild(context.Background(), cfg, BuildOptions{OutputDir: outputDir, Incremental: true})
	require.NoError(t, err)
	require.Positive(t, first.Stats.PagesWritten)

	second, err := RunBuild(context.Background(), cfg, BuildOptions{OutputDir: outputDir, Incremental: true})
	require.NoError(t, err)
	require.Zero(t, second.Stats.PagesWritten)
	require.Equal(t, first.Stats.PagesWritten, second.Stats.PagesSkipped)
}

func TestRunBuild_GeneratedSitePassesLinkVerification(t *testing.T) {
	cfg := pipelineConfig(t)
	outputDir := t.TempDir()

	result, err := RunBuild(context.Background(), cfg, BuildOptions{OutputDir: outputDir})
	require.NoError(t, err)

	paths := []string{"/", "/tags/"}
	for _, r := range result.Routes {
		if !r.External() {
			paths = append(paths, r.Path)
		}
	}
	issues, err := linkverify.VerifySite(outputDir, paths)
	require.NoError(t, err)
	require.Empty(t, issues)
}

func TestRunBuild_DeclaredTagModeRejectsStrayTag(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.Tags = config.TagsConfig{Mode: config.TagModeDeclared, Declared: []string{"go"}}

	_, err := RunBuild(context.Background(), cfg, BuildOptions{OutputDir: t.TempDir()})
	require.Error(t, err)
	require.True(t, errors.Is(err, routes.ErrUndeclaredTag))
}

func TestRunBuild_MissingPubDateFailsBuild(t *testing.T) {
	cfg := pipelineConfig(t)
	writeContent(t, cfg.Content.Dir, "blog", "broken.md", "---\ntitle: Broken\n---\nbody\n")

	_, err := RunBuild(context.Background(), cfg, BuildOptions{OutputDir: t.TempDir()})
	require.Error(t, err)
	require.True(t, errors.Is(err, content.ErrMissingPubDate))
	require.Contains(t, err.Error(), "broken.md")
}
