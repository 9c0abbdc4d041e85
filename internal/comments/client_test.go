package comments

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFollowsPagination(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/remusao/remusao.github.io/issues/12/comments", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"user":{"login":"bob"},"body":"second","html_url":"https://github.com/c/2","created_at":"2020-01-03T00:00:00Z"}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/remusao/remusao.github.io/issues/12/comments?per_page=100&page=2>; rel="next"`, srvURL))
		fmt.Fprint(w, `[{"user":{"login":"alice"},"body":"first","html_url":"https://github.com/c/1","created_at":"2020-01-02T03:04:05Z"}]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	c, err := New("remusao", "remusao.github.io", WithToken("secret"), WithBaseURL(srv.URL))
	require.NoError(t, err)
	got, err := c.List(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Comment{
		Author: "alice",
		Body:   "first",
		URL:    "https://github.com/c/1",
		Date:   time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
	}, got[0])
	assert.Equal(t, "bob", got[1].Author)
}

func TestListReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	}))
	defer srv.Close()

	c, err := New("remusao", "remusao.github.io", WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)
	_, err = c.List(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "comments: list issue 7: status 404"), err.Error())
}

func TestNewRequiresRepository(t *testing.T) {
	_, err := New("", "repo")
	assert.Error(t, err)
}

func TestIssueURL(t *testing.T) {
	c, err := New("remusao", "remusao.github.io")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/remusao/remusao.github.io/issues/3", c.IssueURL(3))
}
