// Package schema maps reconstructed tables onto a topic's canonical fields.
package schema

import (
	"strconv"
	"strings"

	"github.com/hyperifyio/rewind/internal/grid"
	"github.com/hyperifyio/rewind/internal/topics"
)

// Record is one canonical row. Fields holds every field of the topic,
// null when the source had no value for it.
type Record struct {
	Topic  string
	Year   int
	Fields map[string]grid.Value
}

// Get returns the value of field f. The year field is always set.
func (r Record) Get(f string) grid.Value {
	if f == topics.YearField {
		return grid.Str(strconv.Itoa(r.Year))
	}
	return r.Fields[f]
}

// Values returns the values of fields in order.
func (r Record) Values(fields []string) []grid.Value {
	out := make([]grid.Value, len(fields))
	for i, f := range fields {
		out[i] = r.Get(f)
	}
	return out
}

// Normalized is the outcome of mapping one table.
type Normalized struct {
	Records []Record
	// Mapping maps a source column index to the field it feeds.
	Mapping map[int]string
	// Unmapped lists header labels that matched no rule or lost to an
	// earlier column claiming the same field.
	Unmapped []string
	// SchemaMismatch is set when the table had no header row and the topic
	// has no positional schema; every field is then null.
	SchemaMismatch bool
}

// Covers reports whether every field in fields is fed by some column.
func (n Normalized) Covers(fields []string) bool {
	for _, f := range fields {
		found := false
		for _, m := range n.Mapping {
			if m == f {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Normalize maps table onto topic's fields. With a header row each label
// is matched against the topic rules and the first column to claim a field
// keeps it. Without one, fields are assigned by position; a topic without a
// positional schema then gets all-null records, LeadField included. Rows
// made only of padding are dropped.
func Normalize(table grid.Table, topic topics.Topic) Normalized {
	n := Normalized{Mapping: map[int]string{}}
	claimed := map[string]bool{}
	claim := func(col int, f string) {
		n.Mapping[col] = f
		claimed[f] = true
	}
	width := table.Width()
	lead := func() {
		if topic.LeadField != "" && width > 0 {
			claim(0, topic.LeadField)
		}
	}
	switch {
	case table.HasHeader:
		lead()
		for i, label := range table.Header {
			if _, taken := n.Mapping[i]; taken {
				continue
			}
			f, ok := topic.MatchHeader(label)
			if !ok || claimed[f] {
				n.Unmapped = append(n.Unmapped, label)
				continue
			}
			claim(i, f)
		}
	case len(topic.Positional) > 0:
		lead()
		for i, f := range topic.Positional {
			if i >= width {
				break
			}
			if _, taken := n.Mapping[i]; taken || claimed[f] {
				continue
			}
			claim(i, f)
		}
	default:
		n.SchemaMismatch = true
	}

	for _, row := range table.Rows {
		if padding(row) {
			continue
		}
		rec := newRecord(topic)
		for col, f := range n.Mapping {
			if col < len(row) {
				rec.Fields[f] = row[col]
			}
		}
		n.Records = append(n.Records, rec)
	}
	return n
}

// FromList builds records from list items, splitting each item on the first
// of the topic's separators that occurs in it. The rank field, when set,
// receives the item's 1-based position.
func FromList(items []string, topic topics.Topic) Normalized {
	n := Normalized{Mapping: map[int]string{}}
	for i, f := range topic.ListFields {
		n.Mapping[i] = f
	}
	for i, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		rec := newRecord(topic)
		if topic.ListRankField != "" {
			rec.Fields[topic.ListRankField] = grid.Str(strconv.Itoa(i + 1))
		}
		parts := []string{item}
		for _, sep := range topic.ListSeparators {
			if sep != "" && strings.Contains(item, sep) {
				parts = strings.SplitN(item, sep, max(len(topic.ListFields), 1))
				break
			}
		}
		for j, f := range topic.ListFields {
			if j < len(parts) {
				if s := strings.TrimSpace(parts[j]); s != "" {
					rec.Fields[f] = grid.Str(s)
				}
			}
		}
		n.Records = append(n.Records, rec)
	}
	return n
}

// ForwardFill replaces nulls in the named fields with the closest non-null
// value above them.
func ForwardFill(records []Record, fields []string) {
	for _, f := range fields {
		var last grid.Value
		for _, r := range records {
			v := r.Fields[f]
			if v.Valid {
				last = v
				continue
			}
			if last.Valid {
				r.Fields[f] = last
			}
		}
	}
}

func newRecord(topic topics.Topic) Record {
	fields := make(map[string]grid.Value, len(topic.Fields))
	for _, f := range topic.Fields {
		fields[f] = grid.Null
	}
	return Record{Topic: topic.Name, Fields: fields}
}

func padding(row []grid.Value) bool {
	for _, v := range row {
		if v.Valid {
			return false
		}
	}
	return true
}
