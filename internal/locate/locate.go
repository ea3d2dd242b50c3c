// Package locate finds the tables and lists that belong to a named section
// of a document.
//
// A section is anchored at the first heading whose normalized text contains
// the keyword. Everything after the anchor in document order belongs to the
// section until the next heading of the same or a higher rank; deeper
// subheadings stay inside the scope.
package locate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/hyperifyio/rewind/internal/dom"
)

// DefaultHeadingTags are the heading ranks considered as anchors: major and
// minor section titles.
var DefaultHeadingTags = []string{"h2", "h3"}

var tagPattern = regexp.MustCompile(`^h[1-6]$`)

// Section is the located scope of a keyword.
type Section struct {
	Heading string
	Level   int
	Tables  []dom.TableBlock
	Lists   []dom.ListBlock
}

// Locator anchors sections on a configurable set of heading tags.
type Locator struct {
	// HeadingTags lists the tags eligible as anchors. Empty means
	// DefaultHeadingTags.
	HeadingTags []string
}

// Default is the locator used by the package-level helpers.
var Default = &Locator{}

// Tables returns every table in the section anchored by keyword, in
// document order. It returns nil when no heading matches.
func Tables(doc *dom.Document, keyword string) []dom.TableBlock {
	sec, ok := Default.Find(doc, keyword)
	if !ok {
		return nil
	}
	return sec.Tables
}

// Lists returns every list in the section anchored by keyword.
func Lists(doc *dom.Document, keyword string) []dom.ListBlock {
	sec, ok := Default.Find(doc, keyword)
	if !ok {
		return nil
	}
	return sec.Lists
}

// Validate checks that every configured tag is a heading tag.
func (l *Locator) Validate() error {
	for _, tag := range l.tags() {
		if !tagPattern.MatchString(tag) {
			return fmt.Errorf("locate: %q is not a heading tag", tag)
		}
	}
	return nil
}

// Find anchors the first heading whose text contains keyword and collects
// the tables and lists that follow it up to the next heading of equal or
// higher rank. The boolean is false when no heading matches or keyword is
// blank; Find never fails otherwise.
func (l *Locator) Find(doc *dom.Document, keyword string) (Section, bool) {
	root := doc.Root()
	needle := dom.NormalizeLabel(keyword)
	if root == nil || needle == "" {
		return Section{}, false
	}
	anchor := l.anchor(root, needle)
	if anchor == nil {
		return Section{}, false
	}
	sec := Section{Heading: dom.Text(anchor), Level: dom.HeadingLevel(anchor)}
	walkScope(anchor, func(n *html.Node) bool {
		if tb, ok := dom.NewTableBlock(n); ok {
			sec.Tables = append(sec.Tables, tb)
			return false
		}
		if lb, ok := dom.NewListBlock(n); ok {
			sec.Lists = append(sec.Lists, lb)
			return false
		}
		return true
	})
	return sec, true
}

// anchor returns the first eligible heading, in document order, whose
// normalized text contains needle.
func (l *Locator) anchor(root *html.Node, needle string) *html.Node {
	headings, err := htmlquery.QueryAll(root, l.expr())
	if err != nil {
		return nil
	}
	for _, h := range headings {
		if strings.Contains(dom.NormalizeLabel(dom.Text(h)), needle) {
			return h
		}
	}
	return nil
}

func (l *Locator) tags() []string {
	if len(l.HeadingTags) == 0 {
		return DefaultHeadingTags
	}
	out := make([]string, 0, len(l.HeadingTags))
	for _, t := range l.HeadingTags {
		out = append(out, strings.ToLower(strings.TrimSpace(t)))
	}
	return out
}

// expr builds a single descendant query so results come back in document
// order, e.g. //*[self::h2 or self::h3].
func (l *Locator) expr() string {
	tags := l.tags()
	preds := make([]string, 0, len(tags))
	for _, t := range tags {
		if tagPattern.MatchString(t) {
			preds = append(preds, "self::"+t)
		}
	}
	if len(preds) == 0 {
		preds = []string{"self::h2", "self::h3"}
	}
	return "//*[" + strings.Join(preds, " or ") + "]"
}
