// Package post turns markdown sources with a metadata header into the values
// the site pages are rendered from.
package post

import (
	"fmt"
	"html/template"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// wordsPerMinute drives the reading time estimate.
const wordsPerMinute = 150

// dateLayouts are tried in order for the "date" metadata entry.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// LogoResolver maps a "logo" metadata value to an image URL.
type LogoResolver interface {
	Logo(name string) string
}

// Post is a parsed article. HTML and Comments are filled in by the site
// generator once the body has been rendered.
type Post struct {
	Name        string
	Title       string
	Date        time.Time
	Logo        string
	ReadingTime int
	URL         string
	// Issue is the GitHub issue number holding comments, 0 when absent.
	Issue int

	Metadata Metadata
	// Content is the full source, Markdown the part after the metadata block.
	Content  string
	Markdown string

	HTML     template.HTML
	Comments template.HTML
}

// Parse builds a Post named name from its source. now is used when the post
// has no "date" entry.
func Parse(name, content string, logos LogoResolver, now time.Time) (*Post, error) {
	meta, body, err := ParseMetadata(content)
	if err != nil {
		return nil, err
	}
	p := &Post{
		Name:        name,
		Title:       meta["title"],
		Logo:        resolveLogo(logos, meta["logo"]),
		ReadingTime: ReadingTime(content),
		URL:         URL(name),
		Metadata:    meta,
		Content:     content,
		Markdown:    body,
	}
	if raw, ok := meta.Get("date"); ok && raw != "" {
		if p.Date, err = ParseDate(raw); err != nil {
			return nil, fmt.Errorf("post: %s: %w", name, err)
		}
	} else {
		p.Date = now.UTC()
	}
	if raw, ok := meta.Get("issue"); ok && raw != "" {
		issue, err := strconv.Atoi(raw)
		if err != nil || issue <= 0 {
			return nil, fmt.Errorf("post: %s: invalid issue %q", name, raw)
		}
		p.Issue = issue
	}
	return p, nil
}

func resolveLogo(logos LogoResolver, name string) string {
	if logos == nil {
		return ""
	}
	return logos.Logo(name)
}

// ParseDate accepts a calendar date or a timestamp. Dates without a zone are
// taken as UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", raw)
}

// ReadingTime estimates minutes of reading at 150 words per minute, never
// less than one.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	return int(math.Floor(math.Max(1, float64(words)/wordsPerMinute)))
}

// BaseName returns the file name of path without its last extension.
func BaseName(path string) string {
	name := filepath.Base(filepath.ToSlash(path))
	if i := strings.LastIndex(name, "."); i != -1 {
		return name[:i]
	}
	return name
}

// FormatDate renders t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// URL is the site-relative address of the post page.
func URL(name string) string {
	return "/posts/" + name + ".html"
}

// OutputPaths returns the page path and the legacy date-prefixed path,
// relative to the output root.
func (p *Post) OutputPaths() []string {
	return []string{
		filepath.Join("posts", p.Name+".html"),
		filepath.Join("posts", FormatDate(p.Date)+"-"+p.Name+".html"),
	}
}
