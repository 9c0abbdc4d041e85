package post

import (
	"sort"
)

// YearGroup is one section of the index page.
type YearGroup struct {
	Year  int
	Posts []*Post
}

// SortByDate orders posts newest first. Posts sharing a date are ordered by
// name so the index is stable between builds.
func SortByDate(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Name < posts[j].Name
	})
}

// GroupByYear sorts a copy of posts and buckets it by year, newest year first.
func GroupByYear(posts []*Post) []YearGroup {
	sorted := append([]*Post(nil), posts...)
	SortByDate(sorted)

	var groups []YearGroup
	for _, p := range sorted {
		year := p.Date.UTC().Year()
		if n := len(groups); n > 0 && groups[n-1].Year == year {
			groups[n-1].Posts = append(groups[n-1].Posts, p)
			continue
		}
		groups = append(groups, YearGroup{Year: year, Posts: []*Post{p}})
	}
	return groups
}
