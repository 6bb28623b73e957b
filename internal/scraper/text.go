package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// innerText returns the trimmed text of the first element matching selector,
// or "" when nothing matches.
func innerText(doc *goquery.Document, selector string) string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(sel.Text())
}

// labelledText is innerText with the element's first text node dropped.
// Attribute list items render as "<label>value", so the first node is the
// field label.
func labelledText(doc *goquery.Document, selector string) string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	nodes := textNodes(sel.Get(0))
	if len(nodes) == 0 {
		return ""
	}
	return strings.TrimSpace(strings.Join(nodes[1:], ""))
}

// textNodes collects the descendant text nodes of n in document order.
func textNodes(n *html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			out = append(out, n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}
