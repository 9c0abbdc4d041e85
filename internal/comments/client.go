// Package comments fetches the GitHub issue comments attached to posts.
package comments

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
)

// perPage is the largest page size the issues API accepts.
const perPage = 100

// Comment is one issue comment. Body is the raw markdown written by Author.
type Comment struct {
	Author string
	Body   string
	URL    string
	Date   time.Time
}

// Client lists the comments of issues in a single repository.
type Client struct {
	owner string
	repo  string
	gh    *github.Client
}

// Option customizes client construction.
type Option func(*clientOptions)

type clientOptions struct {
	token   string
	baseURL string
	http    *http.Client
}

// WithToken authenticates requests. Anonymous calls are rate limited hard
// enough that a full build with many posts may fail without one.
func WithToken(token string) Option {
	return func(o *clientOptions) { o.token = strings.TrimSpace(token) }
}

// WithBaseURL points the client at another API endpoint.
func WithBaseURL(raw string) Option {
	return func(o *clientOptions) { o.baseURL = strings.TrimSpace(raw) }
}

// WithHTTPClient overrides the transport.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		if c != nil {
			o.http = c
		}
	}
}

// New returns a client for owner/repo.
func New(owner, repo string, opts ...Option) (*Client, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("comments: owner and repo are required")
	}
	var o clientOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	gh := github.NewClient(o.http)
	if o.token != "" {
		gh = gh.WithAuthToken(o.token)
	}
	if o.baseURL != "" {
		base, err := url.Parse(o.baseURL)
		if err != nil {
			return nil, fmt.Errorf("comments: parse base url %q: %w", o.baseURL, err)
		}
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		gh.BaseURL = base
	}
	return &Client{owner: owner, repo: repo, gh: gh}, nil
}

// IssueURL is where readers leave a comment on issue.
func (c *Client) IssueURL(issue int) string {
	return fmt.Sprintf("https://github.com/%s/%s/issues/%d", c.owner, c.repo, issue)
}

// List returns every comment of issue, oldest first.
func (c *Client) List(ctx context.Context, issue int) ([]Comment, error) {
	opts := &github.IssueListCommentsOptions{
		Sort:        github.String("created"),
		Direction:   github.String("asc"),
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	var out []Comment
	for {
		page, resp, err := c.gh.Issues.ListComments(ctx, c.owner, c.repo, issue, opts)
		if err != nil {
			if resp != nil {
				return nil, fmt.Errorf("comments: list issue %d: status %d: %w", issue, resp.StatusCode, err)
			}
			return nil, fmt.Errorf("comments: list issue %d: %w", issue, err)
		}
		for _, ic := range page {
			out = append(out, Comment{
				Author: ic.GetUser().GetLogin(),
				Body:   ic.GetBody(),
				URL:    ic.GetHTMLURL(),
				Date:   ic.GetCreatedAt().Time.UTC(),
			})
		}
		if resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}
