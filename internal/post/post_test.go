package post

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type logoTable map[string]string

func (l logoTable) Logo(name string) string {
	if v, ok := l[name]; ok {
		return v
	}
	return "/images/favicon.ico"
}

const sample = `---
title: Efficient HTTPS Everywhere: the engine
date: 2019-12-08
logo: v8
issue: 12
---

# Rulesets

Some *markdown* here.
`

func TestParseMetadata(t *testing.T) {
	meta, body, err := ParseMetadata(sample)
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	want := Metadata{
		"title": "Efficient HTTPS Everywhere: the engine",
		"date":  "2019-12-08",
		"logo":  "v8",
		"issue": "12",
	}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(body, "\n\n# Rulesets") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestParseMetadataHandlesCRLF(t *testing.T) {
	meta, _, err := ParseMetadata("---\r\ntitle: a\r\n\r\ndate: 2020-01-02\r\n---\r\nbody")
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if meta["title"] != "a" || meta["date"] != "2020-01-02" {
		t.Fatalf("unexpected metadata %v", meta)
	}
}

func TestParseMetadataErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    error
	}{
		{"no block", "# Title\n", ErrMissingMetadata},
		{"leading space", " ---\ntitle: x\n---\n", ErrMissingMetadata},
		{"unclosed", "---\ntitle: x\n", ErrMalformedMetadata},
		{"no colon", "---\ntitle x\n---\n", ErrMalformedMetadata},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ParseMetadata(tc.content)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p, err := Parse("efficient-https-everywhere-engine", sample, logoTable{"v8": "/images/logos/v8.svg"}, now)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Title != "Efficient HTTPS Everywhere: the engine" {
		t.Fatalf("title = %q", p.Title)
	}
	if !p.Date.Equal(time.Date(2019, 12, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date = %s", p.Date)
	}
	if p.Logo != "/images/logos/v8.svg" {
		t.Fatalf("logo = %q", p.Logo)
	}
	if p.Issue != 12 {
		t.Fatalf("issue = %d", p.Issue)
	}
	if p.URL != "/posts/efficient-https-everywhere-engine.html" {
		t.Fatalf("url = %q", p.URL)
	}
	if p.ReadingTime != 1 {
		t.Fatalf("reading time = %d", p.ReadingTime)
	}
	wantPaths := []string{
		"posts/efficient-https-everywhere-engine.html",
		"posts/2019-12-08-efficient-https-everywhere-engine.html",
	}
	if diff := cmp.Diff(wantPaths, p.OutputPaths()); diff != "" {
		t.Fatalf("output paths (-want +got):\n%s", diff)
	}
}

func TestParseDefaults(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	p, err := Parse("draft", "---\nlogo: unknown\n---\nbody", logoTable{}, now)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Title != "" {
		t.Fatalf("missing title should be empty, got %q", p.Title)
	}
	if !p.Date.Equal(now) || p.Date.Location() != time.UTC {
		t.Fatalf("missing date should be now in UTC, got %s", p.Date)
	}
	if p.Logo != "/images/favicon.ico" {
		t.Fatalf("unknown logo should fall back, got %q", p.Logo)
	}
	if p.Issue != 0 {
		t.Fatalf("issue should be zero")
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	if _, err := Parse("x", "---\ndate: tomorrow\n---\n", nil, time.Now()); err == nil {
		t.Fatalf("expected date error")
	}
	if _, err := Parse("x", "---\nissue: twelve\n---\n", nil, time.Now()); err == nil {
		t.Fatalf("expected issue error")
	}
}

func TestReadingTime(t *testing.T) {
	cases := map[int]int{0: 1, 149: 1, 150: 1, 299: 1, 300: 2, 1000: 6}
	for words, want := range cases {
		content := strings.Repeat("word ", words)
		if got := ReadingTime(content); got != want {
			t.Fatalf("ReadingTime(%d words) = %d, want %d", words, got, want)
		}
	}
}

func TestBaseName(t *testing.T) {
	cases := map[string]string{
		"./posts/hello.md":     "hello",
		"posts/a.b.md":         "a.b",
		"README":               "README",
		"/abs/path/x.markdown": "x",
	}
	for in, want := range cases {
		if got := BaseName(in); got != want {
			t.Fatalf("BaseName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDateUsesUTC(t *testing.T) {
	late := time.Date(2019, 12, 31, 23, 30, 0, 0, time.FixedZone("PST", -8*3600))
	if got := FormatDate(late); got != "2020-01-01" {
		t.Fatalf("FormatDate = %q", got)
	}
	if got := FormatDate(time.Date(2019, 3, 4, 0, 0, 0, 0, time.UTC)); got != "2019-03-04" {
		t.Fatalf("FormatDate should zero-pad, got %q", got)
	}
}

func TestGroupByYear(t *testing.T) {
	mk := func(name string, y int, m time.Month, d int) *Post {
		return &Post{Name: name, Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
	}
	posts := []*Post{
		mk("old", 2017, 1, 1),
		mk("b-new", 2019, 12, 8),
		mk("mid", 2018, 6, 1),
		mk("a-new", 2019, 12, 8),
		mk("early-2019", 2019, 2, 1),
	}
	groups := GroupByYear(posts)
	var got [][]string
	for _, g := range groups {
		var names []string
		for _, p := range g.Posts {
			names = append(names, p.Name)
		}
		got = append(got, append([]string{time.Date(g.Year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006")}, names...))
	}
	want := [][]string{
		{"2019", "a-new", "b-new", "early-2019"},
		{"2018", "mid"},
		{"2017", "old"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("groups (-want +got):\n%s", diff)
	}
	if posts[0].Name != "old" {
		t.Fatalf("GroupByYear must not reorder its input")
	}
}
