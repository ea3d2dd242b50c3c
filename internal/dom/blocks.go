package dom

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// TableBlock is a read-only view of one <table> element in a Document.
type TableBlock struct {
	node *html.Node
}

// NewTableBlock wraps n. It returns false when n is not a <table> element.
func NewTableBlock(n *html.Node) (TableBlock, bool) {
	if !IsElement(n, "table") {
		return TableBlock{}, false
	}
	return TableBlock{node: n}, true
}

// Node returns the underlying <table> element.
func (t TableBlock) Node() *html.Node { return t.node }

// Rows returns the table's own rows in document order. Rows are taken from
// the table itself or from its thead/tbody/tfoot sections; rows belonging to
// tables nested inside a cell are not included.
func (t TableBlock) Rows() []RowBlock {
	if t.node == nil {
		return nil
	}
	var rows []RowBlock
	goquery.NewDocumentFromNode(t.node).Selection.Children().Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "tr":
			rows = append(rows, RowBlock{node: s.Nodes[0]})
		case "thead", "tbody", "tfoot":
			s.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
				rows = append(rows, RowBlock{node: tr.Nodes[0]})
			})
		}
	})
	return rows
}

// RowBlock is one <tr> of a TableBlock.
type RowBlock struct {
	node *html.Node
}

// Cells returns the row's th/td children left to right.
func (r RowBlock) Cells() []Cell {
	if r.node == nil {
		return nil
	}
	var cells []Cell
	for c := r.node.FirstChild; c != nil; c = c.NextSibling {
		if !IsElement(c, "th", "td") {
			continue
		}
		colspan, _ := attr(c, "colspan")
		rowspan, _ := attr(c, "rowspan")
		cells = append(cells, Cell{
			Text:    Text(c),
			ColSpan: colspan,
			RowSpan: rowspan,
			Header:  IsElement(c, "th"),
		})
	}
	return cells
}

// Cell is the raw view of one table cell. Span attributes are kept verbatim;
// interpreting them (including malformed values) is up to the caller.
type Cell struct {
	Text    string
	ColSpan string
	RowSpan string
	Header  bool
}

// ListBlock is a read-only view of one <ul> or <ol> element.
type ListBlock struct {
	node *html.Node
}

// NewListBlock wraps n. It returns false when n is not a list element.
func NewListBlock(n *html.Node) (ListBlock, bool) {
	if !IsElement(n, "ul", "ol") {
		return ListBlock{}, false
	}
	return ListBlock{node: n}, true
}

// Node returns the underlying list element.
func (l ListBlock) Node() *html.Node { return l.node }

// Items returns the text of each direct <li> child, skipping empty ones.
func (l ListBlock) Items() []string {
	if l.node == nil {
		return nil
	}
	var items []string
	goquery.NewDocumentFromNode(l.node).Selection.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		if s := Text(li.Nodes...); s != "" {
			items = append(items, s)
		}
	})
	return items
}
