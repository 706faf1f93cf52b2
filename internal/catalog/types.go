// Package catalog defines the core types shared across subsystems: search
// tasks, lookup results, and the availability classification contract.
package catalog

import "sort"

// Availability represents what a catalog reported for one title.
type Availability string

// Availability values serialized into result rows.
const (
	// Available means the title can be borrowed right now.
	Available Availability = "AVAILABLE"
	// Owned means the catalog holds copies but all are checked out.
	Owned Availability = "OWNED"
	// NotFound means the catalog has no matching title.
	NotFound Availability = "NOT_FOUND"
	// Unknown means the page matched none of the recognized markers,
	// including pages that failed to load at all.
	Unknown Availability = "UNKNOWN"
)

// Task is one (title, catalog) lookup unit submitted to the worker pool.
// Tasks are immutable values; each is consumed exactly once by a worker.
type Task struct {
	Catalog string
	URL     string
	Title   string
	Author  string
}

// Result records the outcome of exactly one Task.
type Result struct {
	Title        string       `json:"title"`
	Author       string       `json:"author"`
	Catalog      string       `json:"catalog"`
	Availability Availability `json:"availability"`
	Audiobook    bool         `json:"audiobook"`
	Ebook        bool         `json:"ebook"`
	URL          string       `json:"search_url"`
	// Note carries the error text for lookups downgraded to Unknown.
	Note string `json:"note,omitempty"`
}

// Registry maps a human-readable catalog name to its base URL.
type Registry map[string]string

// Names returns the catalog names in sorted order so task generation is
// deterministic regardless of map iteration.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
