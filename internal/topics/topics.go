// Package topics defines the extraction targets: which page a topic is read
// from, which section holds its data and how source headers map onto the
// topic's canonical fields.
package topics

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hyperifyio/rewind/internal/dom"
)

// YearField is the field every record carries in addition to the topic's
// own fields. Topics may not declare it.
const YearField = "year"

// ErrInvalidTopic reports a topic definition that cannot be used. It is
// fatal for a run and is raised before any year is processed.
var ErrInvalidTopic = errors.New("invalid topic")

// Rule maps any header that contains one of Contains onto Field. Rules are
// evaluated in order and the first hit wins.
type Rule struct {
	Field    string   `yaml:"field" json:"field"`
	Contains []string `yaml:"contains" json:"contains"`
}

// Topic is one configured extraction target.
type Topic struct {
	Name string
	// Page names the source document. Topics that share a page share the
	// cached copy of it.
	Page string
	// URL is the source address; "{year}" is replaced by the year.
	URL string
	// Keywords are tried in order; the first that anchors a section is used.
	Keywords []string
	Fields   []string
	Rules    []Rule
	// Positional assigns fields by column index when a table has no header row.
	Positional []string
	// ForwardFill lists fields whose nulls are filled from the row above.
	ForwardFill []string
	// LeadField, when set, always claims the first column.
	LeadField string
	// Require drops tables whose header mapping lacks any of these fields.
	Require []string
	// AllTables extracts every table in the section instead of the first.
	AllTables bool
	// ListFallback reads list items when the section holds no table.
	ListFallback   bool
	ListFields     []string
	ListRankField  string
	ListSeparators []string
}

// URLFor returns the source address for year.
func (t Topic) URLFor(year int) string {
	return strings.ReplaceAll(t.URL, "{year}", strconv.Itoa(year))
}

// CacheName returns the cache file name for year.
func (t Topic) CacheName(year int) string {
	return fmt.Sprintf("%d_%s.html", year, t.Page)
}

// HasField reports whether f is one of the topic's fields.
func (t Topic) HasField(f string) bool {
	for _, x := range t.Fields {
		if x == f {
			return true
		}
	}
	return false
}

// MatchHeader maps a raw header label to a field. A label equal to a field
// name maps to that field; otherwise the rules are tried in order.
func (t Topic) MatchHeader(label string) (string, bool) {
	norm := dom.NormalizeLabel(label)
	if norm == "" {
		return "", false
	}
	for _, f := range t.Fields {
		if norm == dom.NormalizeLabel(f) {
			return f, true
		}
	}
	for _, r := range t.Rules {
		for _, needle := range r.Contains {
			n := dom.NormalizeLabel(needle)
			if n != "" && strings.Contains(norm, n) {
				return r.Field, true
			}
		}
	}
	return "", false
}

// Validate checks the topic for internal consistency.
func (t Topic) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w %q: %s", ErrInvalidTopic, t.Name, fmt.Sprintf(format, args...))
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidTopic)
	}
	if strings.TrimSpace(t.Page) == "" {
		return fail("missing page")
	}
	if !strings.Contains(t.URL, "{year}") {
		return fail("url %q has no {year} placeholder", t.URL)
	}
	hasKeyword := false
	for _, k := range t.Keywords {
		if strings.TrimSpace(k) != "" {
			hasKeyword = true
		}
	}
	if !hasKeyword {
		return fail("no keyword")
	}
	if len(t.Fields) == 0 {
		return fail("no fields")
	}
	seen := map[string]bool{}
	for _, f := range t.Fields {
		switch {
		case strings.TrimSpace(f) == "":
			return fail("blank field name")
		case f == YearField:
			return fail("field %q is reserved", YearField)
		case seen[f]:
			return fail("duplicate field %q", f)
		}
		seen[f] = true
	}
	check := func(what string, fields []string) error {
		for _, f := range fields {
			if !seen[f] {
				return fail("%s references unknown field %q", what, f)
			}
		}
		return nil
	}
	for i, r := range t.Rules {
		if err := check("rule "+strconv.Itoa(i), []string{r.Field}); err != nil {
			return err
		}
		if len(r.Contains) == 0 {
			return fail("rule %d has no patterns", i)
		}
	}
	for _, ref := range []struct {
		what   string
		fields []string
	}{
		{"positional", t.Positional},
		{"forward-fill", t.ForwardFill},
		{"require", t.Require},
		{"list fields", t.ListFields},
	} {
		if err := check(ref.what, ref.fields); err != nil {
			return err
		}
	}
	if t.LeadField != "" {
		if err := check("lead field", []string{t.LeadField}); err != nil {
			return err
		}
	}
	if t.ListRankField != "" {
		if err := check("list rank field", []string{t.ListRankField}); err != nil {
			return err
		}
	}
	if t.ListFallback && len(t.ListFields) == 0 {
		return fail("list fallback without list fields")
	}
	return nil
}

// clone deep-copies the slices so a handed-out Topic cannot alter the
// registry's copy.
func (t Topic) clone() Topic {
	c := t
	c.Keywords = append([]string(nil), t.Keywords...)
	c.Fields = append([]string(nil), t.Fields...)
	c.Positional = append([]string(nil), t.Positional...)
	c.ForwardFill = append([]string(nil), t.ForwardFill...)
	c.Require = append([]string(nil), t.Require...)
	c.ListFields = append([]string(nil), t.ListFields...)
	c.ListSeparators = append([]string(nil), t.ListSeparators...)
	c.Rules = make([]Rule, len(t.Rules))
	for i, r := range t.Rules {
		c.Rules[i] = Rule{Field: r.Field, Contains: append([]string(nil), r.Contains...)}
	}
	return c
}

// Override replaces parts of a topic definition. Unset members keep the
// current value; an explicit empty ForwardFill or Require clears it.
type Override struct {
	Page        string   `yaml:"page" json:"page"`
	URL         string   `yaml:"url" json:"url"`
	Keywords    []string `yaml:"keywords" json:"keywords"`
	Rules       []Rule   `yaml:"rules" json:"rules"`
	Positional  []string `yaml:"positional" json:"positional"`
	ForwardFill []string `yaml:"forwardFill" json:"forwardFill"`
	LeadField   string   `yaml:"leadField" json:"leadField"`
	Require     []string `yaml:"require" json:"require"`
	AllTables   *bool    `yaml:"allTables" json:"allTables"`
}

func (o Override) apply(t Topic) Topic {
	if o.Page != "" {
		t.Page = o.Page
	}
	if o.URL != "" {
		t.URL = o.URL
	}
	if len(o.Keywords) > 0 {
		t.Keywords = append([]string(nil), o.Keywords...)
	}
	if len(o.Rules) > 0 {
		t.Rules = append([]Rule(nil), o.Rules...)
	}
	if len(o.Positional) > 0 {
		t.Positional = append([]string(nil), o.Positional...)
	}
	if o.ForwardFill != nil {
		t.ForwardFill = append([]string(nil), o.ForwardFill...)
	}
	if o.LeadField != "" {
		t.LeadField = o.LeadField
	}
	if o.Require != nil {
		t.Require = append([]string(nil), o.Require...)
	}
	if o.AllTables != nil {
		t.AllTables = *o.AllTables
	}
	return t
}

// Registry holds the configured topics. It is built and overridden during
// configuration and only read afterwards.
type Registry struct {
	topics map[string]Topic
	order  []string
}

// NewRegistry returns a registry holding ts in the given order.
func NewRegistry(ts ...Topic) *Registry {
	r := &Registry{topics: make(map[string]Topic, len(ts))}
	for _, t := range ts {
		if _, dup := r.topics[t.Name]; !dup {
			r.order = append(r.order, t.Name)
		}
		r.topics[t.Name] = t.clone()
	}
	return r
}

// Get returns a copy of the named topic.
func (r *Registry) Get(name string) (Topic, bool) {
	t, ok := r.topics[name]
	if !ok {
		return Topic{}, false
	}
	return t.clone(), true
}

// Names returns the topic names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Override applies o to the named topic. The result is not validated until
// Validate is called.
func (r *Registry) Override(name string, o Override) error {
	t, ok := r.topics[name]
	if !ok {
		return fmt.Errorf("%w: unknown topic %q", ErrInvalidTopic, name)
	}
	r.topics[name] = o.apply(t.clone())
	return nil
}

// Select resolves a list of names, keeping registration order. An empty
// list selects every topic.
func (r *Registry) Select(names []string) ([]Topic, error) {
	if len(names) == 0 {
		names = r.order
	}
	want := map[string]bool{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := r.topics[n]; !ok {
			known := r.Names()
			sort.Strings(known)
			return nil, fmt.Errorf("%w: unknown topic %q (known: %s)", ErrInvalidTopic, n, strings.Join(known, ", "))
		}
		want[n] = true
	}
	var out []Topic
	for _, n := range r.order {
		if want[n] {
			out = append(out, r.topics[n].clone())
		}
	}
	return out, nil
}

// Validate checks every topic and returns the first problem found.
func (r *Registry) Validate() error {
	for _, n := range r.order {
		if err := r.topics[n].Validate(); err != nil {
			return err
		}
	}
	return nil
}
