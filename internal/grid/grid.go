// Package grid turns the rows of an HTML table into a rectangular grid,
// resolving rowspan and colspan declarations into repeated values.
//
// Reconstruction is a single row-major pass. Spans that reach into later
// rows are carried in a small column-indexed map that is handed from one row
// step to the next and discarded with the table; nothing is shared between
// tables.
package grid

import (
	"encoding/json"
	"strings"
)

// Maximum spans honoured, matching the limits browsers apply.
const (
	MaxColSpan = 1000
	MaxRowSpan = 65534
)

// Value is a grid position: a string or null. The zero Value is null.
type Value struct {
	Text  string
	Valid bool
}

// Null is the empty grid position produced by right padding.
var Null = Value{}

// Str returns a non-null Value holding s.
func Str(s string) Value { return Value{Text: s, Valid: true} }

// String returns the text, or "" for null.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return v.Text
}

// MarshalJSON encodes null values as JSON null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts a JSON string or null.
func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Null
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*v = Str(s)
	return nil
}

// Cell is one source cell with its declared spans. Spans below 1 are read as 1.
type Cell struct {
	Text    string
	ColSpan int
	RowSpan int
	Header  bool
}

// Row is the ordered list of cells a source row declares.
type Row []Cell

// Grid is a fully materialised table: every row has the same length and no
// span artefacts remain.
type Grid struct {
	Rows [][]Value
}

// Width returns the common row length.
func (g Grid) Width() int {
	if len(g.Rows) == 0 {
		return 0
	}
	return len(g.Rows[0])
}

// Len returns the number of rows.
func (g Grid) Len() int { return len(g.Rows) }

// carry is a value still owed to a column by a rowspan from an earlier row.
type carry struct {
	value     Value
	remaining int
}

// spans maps a column index to the value a previous row still owes it.
type spans map[int]carry

// Reconstruct materialises rows into a rectangular Grid. An empty input
// yields an empty Grid.
func Reconstruct(rows []Row) Grid {
	if len(rows) == 0 {
		return Grid{}
	}
	out := make([][]Value, 0, len(rows))
	pending := spans{}
	width := 0
	for _, row := range rows {
		var vals []Value
		vals, pending = step(row, pending)
		if len(vals) > width {
			width = len(vals)
		}
		out = append(out, vals)
	}
	for i, vals := range out {
		for len(vals) < width {
			vals = append(vals, Null)
		}
		out[i] = vals
	}
	return Grid{Rows: out}
}

// step builds one output row. Carried spans that sit before the first new
// cell are emitted first; each new cell is then written colspan times and,
// when it spans rows, registered for the rows below. Carried spans that land
// between two new cells are emitted as soon as the cursor reaches them.
func step(row Row, pending spans) ([]Value, spans) {
	vals := make([]Value, 0, len(row)+len(pending))
	vals = drain(vals, pending)
	for _, c := range row {
		colspan := clamp(c.ColSpan, MaxColSpan)
		rowspan := clamp(c.RowSpan, MaxRowSpan)
		v := Str(c.Text)
		for i := 0; i < colspan; i++ {
			if rowspan > 1 {
				pending[len(vals)] = carry{value: v, remaining: rowspan - 1}
			}
			vals = append(vals, v)
		}
		vals = drain(vals, pending)
	}
	return vals, pending
}

// drain emits carried values while the cursor (the current row length) sits
// on a column that still owes one, retiring entries that are used up.
func drain(vals []Value, pending spans) []Value {
	for {
		col := len(vals)
		c, ok := pending[col]
		if !ok {
			return vals
		}
		vals = append(vals, c.value)
		c.remaining--
		if c.remaining <= 0 {
			delete(pending, col)
		} else {
			pending[col] = c
		}
	}
}

func clamp(n, max int) int {
	if n < 1 {
		return 1
	}
	if n > max {
		return max
	}
	return n
}

// ParseSpan reads a colspan/rowspan attribute the way browsers do: leading
// whitespace is skipped and the leading run of digits is used. Missing,
// non-numeric, zero or negative values read as 1.
func ParseSpan(attr string) int {
	s := strings.TrimSpace(attr)
	n := 0
	digits := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		if n < MaxRowSpan {
			n = n*10 + int(r-'0')
		}
		digits++
	}
	if digits == 0 || n < 1 {
		return 1
	}
	if n > MaxRowSpan {
		return MaxRowSpan
	}
	return n
}
