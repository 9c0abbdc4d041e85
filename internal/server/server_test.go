package server

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kingrea/sigillum/internal/config"
	"github.com/kingrea/sigillum/internal/site"
)

func TestSettingsFromConfigHonorsEnv(t *testing.T) {
	t.Setenv("SIGILLUM_PORT", "9001")
	t.Setenv("SIGILLUM_HOST", "0.0.0.0")
	settings := SettingsFromConfig(&config.Config{})
	if settings.Port != 9001 {
		t.Fatalf("expected port 9001, got %d", settings.Port)
	}
	if settings.Host != "0.0.0.0" {
		t.Fatalf("expected host override, got %s", settings.Host)
	}
}

func TestSettingsFromConfigDefaults(t *testing.T) {
	t.Setenv("SIGILLUM_PORT", "not-a-port")
	cfg := &config.Config{}
	cfg.Project.Server.Port = 70000
	settings := SettingsFromConfig(cfg)
	if settings.Address() != "127.0.0.1:8080" {
		t.Fatalf("unexpected address %s", settings.Address())
	}
	if settings.URL() != "http://127.0.0.1:8080" {
		t.Fatalf("unexpected url %s", settings.URL())
	}
}

func newRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	page := "<!DOCTYPE html><html><body>" + strings.Repeat("<p>ruleset</p>", 200) + "</body></html>"
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte(page), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	return root
}

func TestServerServesSite(t *testing.T) {
	t.Parallel()
	settings := Settings{Host: "127.0.0.1", Port: 0, ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second}
	srv := New(settings, newRoot(t))
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}
	if err := srv.Start(context.Background()); err == nil {
		t.Fatalf("expected error on second start")
	}
	base := srv.BaseURL()

	resp, err := http.Get(base + "/healthz")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", resp.StatusCode)
	}

	resp, err = http.Get(base + "/")
	if err != nil {
		t.Fatalf("index request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "ruleset") {
		t.Fatalf("index not served: %q", body)
	}

	resp, err = http.Get(base + "/missing.html")
	if err != nil {
		t.Fatalf("missing request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if srv.Addr() != "" {
		t.Fatalf("addr should be empty after shutdown")
	}
}

func TestHandlerCompresses(t *testing.T) {
	h := New(Settings{}, newRoot(t)).Handler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip encoding, got %q", rec.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	body, _ := io.ReadAll(zr)
	if !strings.Contains(string(body), "ruleset") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.ObserveBuild(site.Report{Posts: 3, Duration: 40 * time.Millisecond})
	m.ObserveBuild(site.Report{Posts: 1, Failed: []string{"posts/broken.md"}, Partial: true})

	if got := testutil.ToFloat64(m.builds.WithLabelValues("ok")); got != 1 {
		t.Fatalf("ok builds = %v", got)
	}
	if got := testutil.ToFloat64(m.builds.WithLabelValues("failed")); got != 1 {
		t.Fatalf("failed builds = %v", got)
	}
	if got := testutil.ToFloat64(m.posts); got != 4 {
		t.Fatalf("posts = %v", got)
	}

	h := New(Settings{}, t.TempDir(), WithMetrics(m)).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "sigillum_posts_generated_total 4") {
		t.Fatalf("metrics output missing counter:\n%s", rec.Body.String())
	}
}

func TestNilMetricsIgnoresBuilds(t *testing.T) {
	var m *Metrics
	m.ObserveBuild(site.Report{Posts: 1})
}
