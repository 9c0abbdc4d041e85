// Package site builds the static blog: post pages, the index and the assets
// they reference.
package site

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kingrea/sigillum/internal/assets"
	"github.com/kingrea/sigillum/internal/comments"
	"github.com/kingrea/sigillum/internal/config"
	"github.com/kingrea/sigillum/internal/logbook"
	"github.com/kingrea/sigillum/internal/markdown"
	"github.com/kingrea/sigillum/internal/page"
	"github.com/kingrea/sigillum/internal/post"
)

// IndexFile is the generated list of posts.
const IndexFile = "index.html"

// CommentSource provides the comments of a post's issue.
type CommentSource interface {
	List(ctx context.Context, issue int) ([]comments.Comment, error)
	IssueURL(issue int) string
}

// Report summarizes a build. Partial reports come from Rebuild and only
// count the post that changed.
type Report struct {
	Posts    int
	Failed   []string
	Duration time.Duration
	CSSBytes int
	Partial  bool
}

// OK reports whether every post was generated.
func (r Report) OK() bool {
	return len(r.Failed) == 0
}

// Generator renders posts into the configured output directory. It keeps the
// parsed posts so single-post rebuilds can regenerate the index.
type Generator struct {
	cfg         *config.Config
	md          *markdown.Renderer
	pages       *page.Renderer
	comments    CommentSource
	logger      *zap.Logger
	book        *logbook.Logbook
	clock       func() time.Time
	concurrency int
	observers   []func(Report)

	mu    sync.RWMutex
	posts map[string]*post.Post
}

// Option customizes generator construction.
type Option func(*Generator)

// WithComments enables comment blocks for posts carrying an issue number.
func WithComments(src CommentSource) Option {
	return func(g *Generator) {
		if src != nil {
			g.comments = src
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithLogbook records build results in the build history.
func WithLogbook(b *logbook.Logbook) Option {
	return func(g *Generator) { g.book = b }
}

// WithClock allows tests to control post dates and durations.
func WithClock(clock func() time.Time) Option {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithConcurrency bounds how many posts are generated at once.
func WithConcurrency(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// WithObserver registers fn to receive every build report.
func WithObserver(fn func(Report)) Option {
	return func(g *Generator) {
		if fn != nil {
			g.observers = append(g.observers, fn)
		}
	}
}

// New prepares a generator for cfg.
func New(cfg *config.Config, opts ...Option) (*Generator, error) {
	if cfg == nil {
		return nil, errors.New("site: config is nil")
	}
	site := cfg.Project.Site
	pages, err := page.New(page.Site{Domain: site.Domain, Title: site.Title, Description: site.Description})
	if err != nil {
		return nil, err
	}
	g := &Generator{
		cfg:         cfg,
		md:          markdown.NewRenderer(markdown.DefaultStyle),
		pages:       pages,
		logger:      zap.NewNop(),
		clock:       time.Now,
		concurrency: runtime.NumCPU(),
		posts:       make(map[string]*post.Post),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// Build wipes the output directory and regenerates the whole site. Posts that
// fail are listed in the report; only infrastructure failures (output tree,
// assets, index) return an error.
func (g *Generator) Build(ctx context.Context) (Report, error) {
	start := g.clock()
	out := g.cfg.OutputDir()
	report := Report{}

	if err := assets.Clean(out); err != nil {
		return g.fail(report, err)
	}
	if err := assets.Sync(g.cfg.RootDir, out, g.cfg.AssetDirs(), g.logger); err != nil {
		return g.fail(report, err)
	}
	highlight, err := g.md.StyleSheet()
	if err != nil {
		return g.fail(report, err)
	}
	if report.CSSBytes, err = assets.BundleCSS(g.cfg.StylePaths(), highlight, out); err != nil {
		return g.fail(report, err)
	}

	paths, err := filepath.Glob(g.cfg.PostsGlob())
	if err != nil {
		return g.fail(report, fmt.Errorf("site: glob posts: %w", err))
	}
	g.mu.Lock()
	g.posts = make(map[string]*post.Post, len(paths))
	g.mu.Unlock()

	report.Posts, report.Failed = g.GenerateAll(ctx, paths)
	if err := g.GenerateIndex(); err != nil {
		return g.fail(report, err)
	}
	report.Duration = g.clock().Sub(start)

	g.logger.Info("site built",
		zap.Int("posts", report.Posts),
		zap.Int("failed", len(report.Failed)),
		zap.Duration("duration", report.Duration),
		zap.Int("css_bytes", report.CSSBytes))
	if report.OK() {
		g.book.Info("built %d posts in %s", report.Posts, report.Duration.Round(time.Millisecond))
	} else {
		g.book.Warn("built %d posts, %d failed: %v", report.Posts, len(report.Failed), report.Failed)
	}
	g.notify(report)
	return report, nil
}

func (g *Generator) fail(report Report, err error) (Report, error) {
	g.logger.Error("site build failed", zap.Error(err))
	g.book.Error("build failed: %v", err)
	report.Failed = append(report.Failed, err.Error())
	g.notify(report)
	return report, err
}

// GenerateAll generates every path with bounded concurrency. A failing post
// is logged and reported but never stops the others.
func (g *Generator) GenerateAll(ctx context.Context, paths []string) (int, []string) {
	var (
		mu        sync.Mutex
		generated int
		failed    []string
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for _, path := range paths {
		path := path
		eg.Go(func() error {
			err := g.Generate(ctx, path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, path)
				return nil
			}
			generated++
			return nil
		})
	}
	_ = eg.Wait()
	sort.Strings(failed)
	return generated, failed
}

// Generate renders the post at path and writes its page to both the current
// and the legacy date-prefixed location.
func (g *Generator) Generate(ctx context.Context, path string) error {
	p, err := g.render(ctx, path)
	if err != nil {
		g.logger.Error("post failed", zap.String("path", path), zap.Error(err))
		return err
	}
	g.mu.Lock()
	prev := g.posts[p.Name]
	g.posts[p.Name] = p
	g.mu.Unlock()
	if prev != nil {
		g.removeStale(prev, p)
	}
	g.logger.Info("post generated", zap.String("post", p.Name), zap.String("url", p.URL))
	return nil
}

func (g *Generator) render(ctx context.Context, path string) (*post.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("site: read post: %w", err)
	}
	p, err := post.Parse(post.BaseName(path), string(content), g.cfg, g.clock())
	if err != nil {
		return nil, err
	}
	body, err := g.md.Render([]byte(p.Markdown))
	if err != nil {
		return nil, fmt.Errorf("site: %s: %w", p.Name, err)
	}
	p.HTML = template.HTML(body)

	if p.Issue > 0 && g.comments != nil {
		if p.Comments, err = g.renderComments(ctx, p.Issue); err != nil {
			return nil, fmt.Errorf("site: %s: %w", p.Name, err)
		}
	}

	doc, err := g.pages.Post(p)
	if err != nil {
		return nil, err
	}
	for _, rel := range p.OutputPaths() {
		if err := writeFile(filepath.Join(g.cfg.OutputDir(), rel), doc); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (g *Generator) renderComments(ctx context.Context, issue int) (template.HTML, error) {
	list, err := g.comments.List(ctx, issue)
	if err != nil {
		return "", err
	}
	rendered := make([]page.Comment, 0, len(list))
	for _, c := range list {
		body, err := g.md.RenderSanitized([]byte(c.Body))
		if err != nil {
			return "", err
		}
		rendered = append(rendered, page.Comment{
			Author: c.Author,
			Date:   c.Date,
			URL:    c.URL,
			Body:   template.HTML(body),
		})
	}
	return g.pages.Comments(g.comments.IssueURL(issue), rendered)
}

// GenerateIndex writes the index page from the posts generated so far.
func (g *Generator) GenerateIndex() error {
	doc, err := g.pages.Index(post.GroupByYear(g.Posts()))
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(g.cfg.OutputDir(), IndexFile), doc)
}

// Rebuild regenerates a single post and the index. A deleted source drops
// the post and its pages.
func (g *Generator) Rebuild(ctx context.Context, path string) (Report, error) {
	start := g.clock()
	report := Report{Partial: true}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		g.remove(post.BaseName(path))
	} else if err := g.Generate(ctx, path); err != nil {
		report.Failed = []string{path}
		g.book.Error("rebuild %s failed: %v", filepath.Base(path), err)
	} else {
		report.Posts = 1
		g.book.Info("rebuilt %s", filepath.Base(path))
	}
	if err := g.GenerateIndex(); err != nil {
		return g.fail(report, err)
	}
	report.Duration = g.clock().Sub(start)
	g.notify(report)
	return report, nil
}

func (g *Generator) remove(name string) {
	g.mu.Lock()
	p, ok := g.posts[name]
	delete(g.posts, name)
	g.mu.Unlock()
	if !ok {
		return
	}
	for _, rel := range p.OutputPaths() {
		_ = os.Remove(filepath.Join(g.cfg.OutputDir(), rel))
	}
	g.logger.Info("post removed", zap.String("post", name))
	g.book.Info("removed %s", name)
}

// removeStale deletes pages of prev that cur no longer writes, such as the
// legacy date-prefixed page after the post's date changed.
func (g *Generator) removeStale(prev, cur *post.Post) {
	keep := make(map[string]bool)
	for _, rel := range cur.OutputPaths() {
		keep[rel] = true
	}
	for _, rel := range prev.OutputPaths() {
		if keep[rel] {
			continue
		}
		if err := os.Remove(filepath.Join(g.cfg.OutputDir(), rel)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			g.logger.Warn("remove stale page", zap.String("page", rel), zap.Error(err))
		}
	}
}

// Posts returns the generated posts, newest first.
func (g *Generator) Posts() []*post.Post {
	g.mu.RLock()
	out := make([]*post.Post, 0, len(g.posts))
	for _, p := range g.posts {
		out = append(out, p)
	}
	g.mu.RUnlock()
	post.SortByDate(out)
	return out
}

func (g *Generator) notify(report Report) {
	for _, fn := range g.observers {
		fn(report)
	}
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("site: ensure dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("site: write %s: %w", path, err)
	}
	return nil
}
