// Package export writes tabular results to disk as CSV, JSON lines,
// Markdown or a PDF report.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hyperifyio/rewind/internal/schema"
	"github.com/hyperifyio/rewind/internal/topics"
)

// Tabular is anything with a header and string rows.
type Tabular interface {
	Header() []string
	Rows() [][]string
}

// typed lets a table hand JSON encoding native values (nulls, numbers)
// instead of strings.
type typed interface {
	TypedRows() [][]any
}

// Format selects a file encoding.
type Format string

const (
	CSV      Format = "csv"
	JSONL    Format = "jsonl"
	Markdown Format = "md"
)

// ErrUnknownFormat is returned for a format name outside CSV, JSONL and
// Markdown.
var ErrUnknownFormat = errors.New("export: unknown format")

// ParseFormat accepts "csv", "jsonl" (or "json") and "md" (or "markdown").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return CSV, nil
	case "jsonl", "json":
		return JSONL, nil
	case "md", "markdown":
		return Markdown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext is the file extension for f, without the dot.
func (f Format) Ext() string { return string(f) }

// Write encodes t to w.
func Write(w io.Writer, f Format, t Tabular) error {
	switch f {
	case CSV:
		return writeCSV(w, t)
	case JSONL:
		return writeJSONL(w, t)
	case Markdown:
		return writeMarkdown(w, t)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// WriteFile writes t to dir/name.ext and returns the path. The file is
// written fully in memory first so a failed encode leaves nothing behind.
func WriteFile(dir, name string, f Format, t Tabular) (string, error) {
	var buf bytes.Buffer
	if err := Write(&buf, f, t); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create dir: %w", err)
	}
	path := filepath.Join(dir, name+"."+f.Ext())
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("export: write %s: %w", path, err)
	}
	return path, nil
}

func writeCSV(w io.Writer, t Tabular) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows()); err != nil {
		return err
	}
	return cw.Error()
}

// writeJSONL emits one object per row with keys in header order.
func writeJSONL(w io.Writer, t Tabular) error {
	header := t.Header()
	var rows [][]any
	if tt, ok := t.(typed); ok {
		rows = tt.TypedRows()
	} else {
		for _, r := range t.Rows() {
			row := make([]any, len(r))
			for i, v := range r {
				row[i] = v
			}
			rows = append(rows, row)
		}
	}
	var line bytes.Buffer
	for _, row := range rows {
		line.Reset()
		line.WriteByte('{')
		for i, key := range header {
			if i > 0 {
				line.WriteByte(',')
			}
			k, _ := json.Marshal(key)
			line.Write(k)
			line.WriteByte(':')
			var v any
			if i < len(row) {
				v = row[i]
			}
			b, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("export: encode %s: %w", key, err)
			}
			line.Write(b)
		}
		line.WriteString("}\n")
		if _, err := w.Write(line.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// RecordTable presents raw records as a table: the given fields followed by
// the year.
type RecordTable struct {
	Fields  []string
	Records []schema.Record
}

func (t RecordTable) Header() []string {
	return append(append([]string(nil), t.Fields...), topics.YearField)
}

func (t RecordTable) Rows() [][]string {
	rows := make([][]string, len(t.Records))
	for i, r := range t.Records {
		row := make([]string, 0, len(t.Fields)+1)
		for _, v := range r.Values(t.Fields) {
			row = append(row, v.String())
		}
		rows[i] = append(row, strconv.Itoa(r.Year))
	}
	return rows
}

// TypedRows keeps nulls distinct from empty strings.
func (t RecordTable) TypedRows() [][]any {
	rows := make([][]any, len(t.Records))
	for i, r := range t.Records {
		row := make([]any, 0, len(t.Fields)+1)
		for _, v := range r.Values(t.Fields) {
			row = append(row, v)
		}
		rows[i] = append(row, r.Year)
	}
	return rows
}
