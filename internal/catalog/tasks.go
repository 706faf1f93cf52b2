package catalog

import (
	"fmt"
	"net/url"
	"strings"
)

// Query is one reading-list entry to look up across every catalog.
type Query struct {
	Title  string
	Author string
}

// BuildTasks produces one Task per (query, catalog) pair. Titles are
// normalized before the search URL is built; the normalized title is what the
// task (and therefore the result row) carries. Generation order is
// deterministic: queries in input order, catalogs sorted by name.
func BuildTasks(queries []Query, catalogs Registry) []Task {
	names := catalogs.Names()
	tasks := make([]Task, 0, len(queries)*len(names))
	for _, q := range queries {
		title := NormalizeTitle(q.Title)
		encoded := encodeQuery(title, q.Author)
		for _, name := range names {
			tasks = append(tasks, Task{
				Catalog: name,
				URL:     searchURL(catalogs[name], encoded),
				Title:   title,
				Author:  q.Author,
			})
		}
	}
	return tasks
}

func encodeQuery(title, author string) string {
	query := title
	if author != "" {
		query = title + " " + author
	}
	return url.PathEscape(query)
}

func searchURL(base, encodedQuery string) string {
	return fmt.Sprintf("%s/search/query-%s/page-1", strings.TrimRight(base, "/"), encodedQuery)
}
