package page

import (
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/sigillum/internal/post"
)

var testSite = Site{
	Domain:      "https://remusao.github.io/",
	Title:       "Simplex Sigillum Veri",
	Description: "Simplex Sigillum Veri",
}

func parse(t *testing.T, doc string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	require.NoError(t, err)
	return d
}

func TestPostPage(t *testing.T) {
	r, err := New(testSite)
	require.NoError(t, err)
	p := &post.Post{
		Name:        "efficient-https-everywhere-engine",
		Title:       "Efficient HTTPS Everywhere <engine>",
		Date:        time.Date(2019, 12, 8, 0, 0, 0, 0, time.UTC),
		ReadingTime: 7,
		URL:         post.URL("efficient-https-everywhere-engine"),
		HTML:        template.HTML(`<p id="body">Rulesets</p>`),
		Comments:    template.HTML(`<div class="comments">c</div>`),
	}
	out, err := r.Post(p)
	require.NoError(t, err)

	doc := parse(t, out)
	assert.Equal(t, "Efficient HTTPS Everywhere <engine>", doc.Find("title").Text())
	assert.Equal(t, "Efficient HTTPS Everywhere <engine>", doc.Find("main > h1").Text())
	assert.Contains(t, doc.Find("section.header").Text(), "2019-12-08")
	assert.Contains(t, doc.Find("section.header em").Text(), "Reading time: ~7 minutes")
	assert.Equal(t, "Rulesets", doc.Find("article #body").Text())
	assert.Equal(t, 1, doc.Find("article .comments").Length())
	assert.Equal(t, "Simplex Sigillum Veri", doc.Find("header h1 span").Text())
	desc, _ := doc.Find(`meta[name="description"]`).Attr("content")
	assert.Equal(t, "Simplex Sigillum Veri", desc)

	links := doc.Find("footer .share a")
	require.Equal(t, 5, links.Length())
	href, _ := links.First().Attr("href")
	assert.Contains(t, href, "u=https%3A%2F%2Fremusao.github.io%2Fposts%2Fefficient-https-everywhere-engine.html")
}

func TestPostPageIsMinified(t *testing.T) {
	r, err := New(testSite)
	require.NoError(t, err)
	out, err := r.Post(&post.Post{Name: "x", Title: "x", URL: "/posts/x.html"})
	require.NoError(t, err)
	assert.NotContains(t, out, "\n  ")
}

func TestIndexPage(t *testing.T) {
	r, err := New(testSite)
	require.NoError(t, err)
	posts := []*post.Post{
		{Name: "a", Title: "Alpha", URL: "/posts/a.html", Logo: "/images/logos/v8.svg", Date: time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "b", Title: "Beta", URL: "/posts/b.html", Logo: "/images/favicon.ico", Date: time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Name: "c", Title: "Gamma", URL: "/posts/c.html", Logo: "/images/favicon.ico", Date: time.Date(2019, 11, 1, 0, 0, 0, 0, time.UTC)},
	}
	out, err := r.Index(post.GroupByYear(posts))
	require.NoError(t, err)

	doc := parse(t, out)
	assert.Equal(t, "Posts", doc.Find("title").Text())
	var years []string
	doc.Find(".blogIndex h2").Each(func(_ int, s *goquery.Selection) {
		years = append(years, s.Text())
	})
	assert.Equal(t, []string{"2019", "2017"}, years)

	var titles []string
	doc.Find(".blogIndex ul.index li a").Each(func(_ int, s *goquery.Selection) {
		titles = append(titles, s.Text())
	})
	assert.Equal(t, []string{"Gamma", "Alpha", "Beta"}, titles)

	logo, _ := doc.Find("img.logo").First().Attr("src")
	assert.Equal(t, "/images/favicon.ico", logo)
	assert.Contains(t, doc.Find(".blogIndex li span").First().Text(), "2019-11-01")
}

func TestCommentsBlock(t *testing.T) {
	r, err := New(testSite)
	require.NoError(t, err)
	block, err := r.Comments("https://github.com/remusao/remusao.github.io/issues/12", []Comment{
		{Author: "alice", Date: time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), URL: "https://github.com/c/1", Body: template.HTML("<p>Great</p>")},
		{Author: "bob", Date: time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC), URL: "https://github.com/c/2", Body: template.HTML("<p>Thanks</p>")},
	})
	require.NoError(t, err)

	doc := parse(t, string(block))
	assert.Equal(t, "2 comments", doc.Find("#showCommentsButton").Text())
	assert.Equal(t, 2, doc.Find("#commentsList li.comment").Length())
	assert.Equal(t, "alice", doc.Find(".author").First().Text())
	assert.Equal(t, "Great", doc.Find(".content p").First().Text())
	href, _ := doc.Find(".leaveComment a").Attr("href")
	assert.Equal(t, "https://github.com/remusao/remusao.github.io/issues/12", href)
	assert.Equal(t, 1, doc.Find("script").Length())
}

func TestCountLabel(t *testing.T) {
	assert.Equal(t, "0 comments", CountLabel(0))
	assert.Equal(t, "1 comment", CountLabel(1))
	assert.Equal(t, "12 comments", CountLabel(12))
}

func TestShareButtonsEscapeTitle(t *testing.T) {
	buttons := ShareButtons("C++ & Rust", "https://x.org/posts/a.html")
	require.Len(t, buttons, 5)
	assert.Contains(t, buttons[1].Href, "text=C%2B%2B+%26+Rust")
	assert.Contains(t, buttons[1].Href, "via=Pythux")
}
