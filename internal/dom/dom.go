// Package dom parses fetched markup into an immutable document tree and
// exposes the table, row, cell and list views the extraction engine reads.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MaxHTMLSize bounds the markup accepted by Parse.
const MaxHTMLSize = 10 * 1024 * 1024

// ErrTooLarge is returned by Parse when the input exceeds MaxHTMLSize.
var ErrTooLarge = errors.New("html exceeds maximum size")

// Document is a parsed page. It is never mutated after Parse returns.
type Document struct {
	doc *goquery.Document
}

// Parse builds a Document from raw markup. Malformed HTML never fails: the
// tree builder recovers from unclosed tags and stray attributes the same way
// browsers do. Input that is not valid UTF-8 is transcoded using the charset
// declared in the markup or, failing that, the one chardet guesses. A
// declared charset wins even when the bytes happen to be valid UTF-8.
func Parse(raw []byte) (*Document, error) {
	if len(raw) > MaxHTMLSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(raw))
	}
	reader := bytes.NewReader(raw)
	declared := declaresCharset(raw)
	if !declared && utf8.Valid(raw) {
		doc, err := goquery.NewDocumentFromReader(reader)
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
		return &Document{doc: doc}, nil
	}
	contentType := "text/html"
	if !declared {
		contentType += "; charset=" + DetectCharset(raw)
	}
	decoded, err := charset.NewReader(reader, contentType)
	if err != nil {
		doc, perr := goquery.NewDocumentFromReader(bytes.NewReader(raw))
		if perr != nil {
			return nil, fmt.Errorf("parse html: %w", perr)
		}
		return &Document{doc: doc}, nil
	}
	doc, err := goquery.NewDocumentFromReader(decoded)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{doc: doc}, nil
}

// MustParseString is a test and fixture helper that panics on error.
func MustParseString(s string) *Document {
	d, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return d
}

// DetectCharset guesses the encoding of data, defaulting to utf-8.
func DetectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil || result.Charset == "" {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// metaCharsetRe matches <meta charset=...> and the http-equiv form.
var metaCharsetRe = regexp.MustCompile(`(?i)<meta[^>]+charset\s*=`)

// declaresCharset reports whether the head of the markup carries a charset
// declaration the decoder's own prescan will pick up.
func declaresCharset(raw []byte) bool {
	head := raw
	if len(head) > 1024 {
		head = head[:1024]
	}
	return metaCharsetRe.Match(head)
}

// Root returns the document node at the top of the tree.
func (d *Document) Root() *html.Node {
	if d == nil || d.doc == nil || len(d.doc.Nodes) == 0 {
		return nil
	}
	return d.doc.Nodes[0]
}

// Title returns the trimmed <title> text, if any.
func (d *Document) Title() string {
	if d == nil || d.doc == nil {
		return ""
	}
	return Text(d.doc.Find("head title").First().Nodes...)
}

// HeadingLevel returns 1..6 for h1..h6 elements and 0 for anything else.
func HeadingLevel(n *html.Node) int {
	if n == nil || n.Type != html.ElementNode || len(n.Data) != 2 {
		return 0
	}
	name := strings.ToLower(n.Data)
	if name[0] != 'h' || name[1] < '1' || name[1] > '6' {
		return 0
	}
	return int(name[1] - '0')
}

// IsElement reports whether n is an element with one of the given tag names.
func IsElement(n *html.Node, names ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, name := range names {
		if strings.EqualFold(n.Data, name) {
			return true
		}
	}
	return false
}

// Text returns the visible text below the given nodes: every text node is
// trimmed, empty ones are dropped and the rest are joined by single spaces.
// Script, style and display:none subtrees are skipped.
func Text(nodes ...*html.Node) string {
	parts := make([]string, 0, 8)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if s := collapseSpaces(strings.TrimSpace(n.Data)); s != "" {
				parts = append(parts, s)
			}
			return
		case html.ElementNode:
			if isHidden(n) {
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		if n != nil {
			walk(n)
		}
	}
	return strings.Join(parts, " ")
}

// NormalizeLabel folds s for keyword comparisons: NFKC, trimmed, inner
// whitespace collapsed and case-folded.
func NormalizeLabel(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return cases.Fold().String(s)
}

func isHidden(n *html.Node) bool {
	switch strings.ToLower(n.Data) {
	case "script", "style", "noscript", "template":
		return true
	}
	for _, a := range n.Attr {
		if !strings.EqualFold(a.Key, "style") {
			continue
		}
		v := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
		if strings.Contains(v, "display:none") {
			return true
		}
	}
	return false
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}
