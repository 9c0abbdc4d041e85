// Package markdown converts post and comment bodies to HTML.
//
// Posts are trusted and may embed raw HTML. Comment bodies come from GitHub
// users and always go through RenderSanitized.
package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// DefaultStyle is the chroma style code blocks are highlighted with.
const DefaultStyle = "github"

// Renderer wraps goldmark for markdown rendering.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	style  string
}

// NewRenderer creates a renderer with GitHub flavoured markdown, smart
// punctuation and class-based highlighting of fenced code blocks.
func NewRenderer(style string) *Renderer {
	if style == "" {
		style = DefaultStyle
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // tables, strikethrough, autolinks, task lists
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "span", "pre")
	return &Renderer{md: md, policy: policy, style: style}
}

// Render converts trusted markdown to HTML.
func (r *Renderer) Render(source []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("markdown: convert: %w", err)
	}
	return buf.String(), nil
}

// RenderSanitized converts untrusted markdown and strips anything the UGC
// policy does not allow (scripts, event handlers, iframes).
func (r *Renderer) RenderSanitized(source []byte) (string, error) {
	out, err := r.Render(source)
	if err != nil {
		return "", err
	}
	return r.policy.Sanitize(out), nil
}

// StyleSheet returns the CSS for the highlighting classes emitted by Render.
func (r *Renderer) StyleSheet() (string, error) {
	return StyleSheet(r.style)
}

// StyleSheet returns the CSS of a chroma style. Unknown names fall back to
// chroma's default style.
func StyleSheet(style string) (string, error) {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(style)); err != nil {
		return "", fmt.Errorf("markdown: write %s stylesheet: %w", style, err)
	}
	return buf.String(), nil
}
