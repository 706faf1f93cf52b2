package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shelfscan/shelfscan/internal/catalog"
)

func sampleResults() []catalog.Result {
	return []catalog.Result{
		{
			Title:        "Going Postal",
			Author:       "Terry Pratchett",
			Catalog:      "utah",
			Availability: catalog.Available,
			Audiobook:    true,
			Ebook:        false,
			URL:          "https://libbyapp.com/library/beehive/search/query-Going%20Postal/page-1",
		},
		{
			Title:        "Piranesi",
			Author:       "Susanna Clarke",
			Catalog:      "hawaii",
			Availability: catalog.Unknown,
			URL:          "https://libbyapp.com/library/hawaii/search/query-Piranesi/page-1",
			Note:         "navigate: context deadline exceeded",
		},
	}
}

func TestCSVWriterOutput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "results.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(sampleResults()))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"Title", "Author", "Library Name", "Availability", "Audiobook", "Ebook", "Search URL"}, rows[0])
	require.Equal(t, "Going Postal", rows[1][0])
	require.Equal(t, "AVAILABLE", rows[1][3])
	require.Equal(t, "true", rows[1][4])
	require.Equal(t, "false", rows[1][5])
	require.Equal(t, "UNKNOWN", rows[2][3])
}

func TestJSONLWriterOutput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.jsonl")
	w, err := NewJSONLWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(sampleResults()))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first catalog.Result
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.Equal(t, "Going Postal", first.Title)
	require.True(t, first.Audiobook)

	var second catalog.Result
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.NotEmpty(t, second.Note)
}

func TestNewPicksFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	w, err := New("csv", filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	require.IsType(t, &CSVWriter{}, w)
	require.NoError(t, w.Close())

	w, err = New("jsonl", filepath.Join(dir, "a.jsonl"))
	require.NoError(t, err)
	require.IsType(t, &JSONLWriter{}, w)
	require.NoError(t, w.Close())

	_, err = New("xml", filepath.Join(dir, "a.xml"))
	require.Error(t, err)
}
