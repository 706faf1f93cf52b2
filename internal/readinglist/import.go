// Package readinglist imports Goodreads-style library export files.
package readinglist

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// DefaultShelf selects want-to-read rows from an export.
const DefaultShelf = "to-read"

// Entry is one row of the export that the scanner cares about.
type Entry struct {
	Title  string
	Author string
	Shelf  string
}

// Columns the export must carry. Goodreads exports have many more; the rest
// are ignored.
const (
	columnTitle  = "Title"
	columnAuthor = "Author"
	columnShelf  = "Exclusive Shelf"
)

// Load reads an export file and returns every row. Failure to read or parse
// the file is the one fatal error of a scan run; it is returned unwrapped of
// any downgrade so callers can abort before generating tasks.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reading list: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse reading list %q: %w", path, err)
	}
	return entries, nil
}

// Parse decodes export rows from r. The first record is the header; Title,
// Author, and Exclusive Shelf columns are required, in any position.
func Parse(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, required := range []string{columnTitle, columnAuthor, columnShelf} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var entries []Entry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		entries = append(entries, Entry{
			Title:  field(record, idx[columnTitle]),
			Author: field(record, idx[columnAuthor]),
			Shelf:  field(record, idx[columnShelf]),
		})
	}
	return entries, nil
}

// Filter keeps only the rows whose exclusive shelf matches shelf.
func Filter(entries []Entry, shelf string) []Entry {
	if shelf == "" {
		shelf = DefaultShelf
	}
	var kept []Entry
	for _, e := range entries {
		if e.Shelf == shelf {
			kept = append(kept, e)
		}
	}
	return kept
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
