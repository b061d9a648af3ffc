// Package markdown renders entry bodies (frontmatter already removed) to HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown bodies to HTML. Safe for reuse across entries;
// goldmark.Markdown instances are stateless between Convert calls.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds the site renderer: GFM (tables, strikethrough,
// autolinks), auto heading IDs for fragment links, and raw HTML passthrough
// since the content is trusted (the author's own files).
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// Render converts a markdown body to HTML.
func (r *Renderer) Render(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}
