// Package report serializes scan results to tabular output files.
package report

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shelfscan/shelfscan/internal/catalog"
)

// Writer persists a completed run's results.
type Writer interface {
	Write(results []catalog.Result) error
	Close() error
}

// header is the fixed column set of the CSV output.
var header = []string{"Title", "Author", "Library Name", "Availability", "Audiobook", "Ebook", "Search URL"}

// CSVWriter writes one row per result under a fixed header.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates the output file and writes the header row.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := createFile(path)
	if err != nil {
		return nil, err
	}
	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}
	return &CSVWriter{file: f, writer: writer}, nil
}

// Write appends results to the output.
func (w *CSVWriter) Write(results []catalog.Result) error {
	for _, r := range results {
		record := []string{
			r.Title,
			r.Author,
			r.Catalog,
			string(r.Availability),
			strconv.FormatBool(r.Audiobook),
			strconv.FormatBool(r.Ebook),
			r.URL,
		}
		if err := w.writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (w *CSVWriter) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return w.file.Close()
}

// JSONLWriter writes newline-delimited JSON records. Unlike the CSV form it
// keeps the error note on downgraded results.
type JSONLWriter struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
}

// NewJSONLWriter initialises the JSONL writer.
func NewJSONLWriter(path string) (*JSONLWriter, error) {
	f, err := createFile(path)
	if err != nil {
		return nil, err
	}
	buffer := bufio.NewWriter(f)
	return &JSONLWriter{file: f, writer: buffer, encoder: json.NewEncoder(buffer)}, nil
}

// Write appends results in JSONL format.
func (w *JSONLWriter) Write(results []catalog.Result) error {
	for _, r := range results {
		if err := w.encoder.Encode(r); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close flushes buffers and closes the underlying file.
func (w *JSONLWriter) Close() error {
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("flush json writer: %w", err)
	}
	return w.file.Close()
}

// New picks a writer for the configured format ("csv" or "jsonl").
func New(format, path string) (Writer, error) {
	switch format {
	case "", "csv":
		return NewCSVWriter(path)
	case "jsonl":
		return NewJSONLWriter(path)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

func createFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}
