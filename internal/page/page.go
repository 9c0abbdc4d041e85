// Package page renders the HTML documents of the site: post pages, the
// index, and the comment block embedded in posts. Every full page is
// minified before it is returned.
package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/kingrea/sigillum/internal/post"
)

//go:embed templates/*.html
var templateFS embed.FS

// Site carries the values shared by every page.
type Site struct {
	Domain      string
	Title       string
	Description string
}

// Comment is one rendered GitHub comment. Body must already be sanitized.
type Comment struct {
	Author string
	Date   time.Time
	URL    string
	Body   template.HTML
}

// ShareButton links a post to a sharing service.
type ShareButton struct {
	Alt   string
	Href  string
	Image string
}

// Renderer executes the embedded templates.
type Renderer struct {
	site Site
	tmpl *template.Template
	min  *minify.M
}

// New parses the embedded templates.
func New(site Site) (*Renderer, error) {
	funcs := template.FuncMap{
		"formatDate": post.FormatDate,
		"countLabel": CountLabel,
	}
	tmpl, err := template.New("page").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("page: parse templates: %w", err)
	}
	return &Renderer{site: site, tmpl: tmpl, min: NewMinifier()}, nil
}

// NewMinifier returns a minifier for HTML documents with inline CSS and JS.
func NewMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)
	return m
}

// Post renders the full page of p. p.HTML and p.Comments are embedded as is.
func (r *Renderer) Post(p *post.Post) (string, error) {
	body, err := r.execute("post", struct {
		Post  *post.Post
		Share []ShareButton
	}{p, ShareButtons(p.Title, r.site.Domain+trimSlash(p.URL))})
	if err != nil {
		return "", err
	}
	return r.wrap(p.Title, body)
}

// Index renders the list of posts grouped by year.
func (r *Renderer) Index(groups []post.YearGroup) (string, error) {
	body, err := r.execute("index", struct{ Groups []post.YearGroup }{groups})
	if err != nil {
		return "", err
	}
	return r.wrap("Posts", body)
}

// Comments renders the collapsible comment block of a post.
func (r *Renderer) Comments(issueURL string, comments []Comment) (template.HTML, error) {
	out, err := r.execute("comments", struct {
		IssueURL string
		Comments []Comment
	}{issueURL, comments})
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil
}

func (r *Renderer) wrap(title, body string) (string, error) {
	doc, err := r.execute("layout", struct {
		Site  Site
		Title string
		Body  template.HTML
	}{r.site, title, template.HTML(body)})
	if err != nil {
		return "", err
	}
	out, err := r.min.String("text/html", doc)
	if err != nil {
		return "", fmt.Errorf("page: minify %q: %w", title, err)
	}
	return out, nil
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("page: render %s: %w", name, err)
	}
	return buf.String(), nil
}

// CountLabel reads "1 comment" or "N comments".
func CountLabel(n int) string {
	if n == 1 {
		return "1 comment"
	}
	return strconv.Itoa(n) + " comments"
}

// ShareButtons returns the sharing links of a post with an absolute URL.
func ShareButtons(title, absURL string) []ShareButton {
	t, u := url.QueryEscape(title), url.QueryEscape(absURL)
	return []ShareButton{
		{Alt: "Share on Facebook", Href: "https://www.facebook.com/sharer/sharer.php?u=" + u + "&t=" + t, Image: "Facebook.svg"},
		{Alt: "Tweet", Href: "https://twitter.com/share?url=" + u + "&text=" + t + "&via=Pythux", Image: "Twitter.svg"},
		{Alt: "Add to Pocket", Href: "https://getpocket.com/save?url=" + u + "&title=" + t, Image: "Pocket.svg"},
		{Alt: "Submit to Hacker News", Href: "https://news.ycombinator.com/submitlink?u=" + u + "&t=" + t, Image: "HackerNews.svg"},
		{Alt: "Submit to Reddit", Href: "https://www.reddit.com/submit?url=" + u + "&title=" + t, Image: "Reddit.svg"},
	}
}

func trimSlash(p string) string {
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	return p
}
