package grid

import (
	"strconv"
	"strings"

	"github.com/hyperifyio/rewind/internal/dom"
)

// Table is a reconstructed grid split into header labels and data rows.
type Table struct {
	// Header has one label per column. When HasHeader is false the labels
	// are positional placeholders.
	Header    []string
	HasHeader bool
	Rows      [][]Value
}

// Width returns the number of columns.
func (t Table) Width() int { return len(t.Header) }

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Column returns the values of column i, or nil when out of range.
func (t Table) Column(i int) []Value {
	if i < 0 || i >= t.Width() {
		return nil
	}
	col := make([]Value, len(t.Rows))
	for r, row := range t.Rows {
		col[r] = row[i]
	}
	return col
}

// Placeholder returns the synthesized label for column i.
func Placeholder(i int) string { return "column " + strconv.Itoa(i) }

// NewTable splits g into header and data rows. With hasHeader the first grid
// row supplies the labels; blank or null labels fall back to placeholders.
func NewTable(g Grid, hasHeader bool) Table {
	width := g.Width()
	header := make([]string, width)
	for i := range header {
		header[i] = Placeholder(i)
	}
	if len(g.Rows) == 0 {
		return Table{Header: header}
	}
	if !hasHeader {
		return Table{Header: header, Rows: g.Rows}
	}
	for i, v := range g.Rows[0] {
		if s := strings.TrimSpace(v.String()); s != "" {
			header[i] = s
		}
	}
	return Table{Header: header, HasHeader: true, Rows: g.Rows[1:]}
}

// FromBlock reconstructs a table block from a document. The first row is a
// header row when any of its cells is a header cell.
func FromBlock(block dom.TableBlock) Table {
	sourceRows := block.Rows()
	rows := make([]Row, 0, len(sourceRows))
	hasHeader := false
	for i, sr := range sourceRows {
		cells := sr.Cells()
		row := make(Row, 0, len(cells))
		for _, c := range cells {
			if i == 0 && c.Header {
				hasHeader = true
			}
			row = append(row, Cell{
				Text:    c.Text,
				ColSpan: ParseSpan(c.ColSpan),
				RowSpan: ParseSpan(c.RowSpan),
				Header:  c.Header,
			})
		}
		rows = append(rows, row)
	}
	return NewTable(Reconstruct(rows), hasHeader)
}
