package locate

import (
	"golang.org/x/net/html"

	"github.com/hyperifyio/rewind/internal/dom"
)

// next returns the node after n in document order. With skipChildren the
// subtree below n is stepped over.
func next(n *html.Node, skipChildren bool) *html.Node {
	if !skipChildren && n.FirstChild != nil {
		return n.FirstChild
	}
	for n != nil {
		if n.NextSibling != nil {
			return n.NextSibling
		}
		n = n.Parent
	}
	return nil
}

// walkScope visits the nodes after anchor in document order until it meets a
// heading whose level is at most the anchor's. The anchor's own subtree is
// not visited. visit returns false to skip the children of the node it was
// given.
func walkScope(anchor *html.Node, visit func(*html.Node) bool) {
	level := dom.HeadingLevel(anchor)
	for cur := next(anchor, true); cur != nil; {
		if cur.Type == html.ElementNode {
			if l := dom.HeadingLevel(cur); l > 0 && l <= level {
				return
			}
			if !visit(cur) {
				cur = next(cur, true)
				continue
			}
		}
		cur = next(cur, false)
	}
}
