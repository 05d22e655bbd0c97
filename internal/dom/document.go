package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Document wraps one parsed HTML tree with CSS and XPath access
type Document struct {
	root *html.Node
	doc  *goquery.Document
}

func newDocument(root *html.Node) *Document {
	return &Document{
		root: root,
		doc:  goquery.NewDocumentFromNode(root),
	}
}

// Root returns the underlying document node
func (d *Document) Root() *html.Node {
	return d.root
}

// Find resolves a CSS selector
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// IsXPath reports whether a selector uses XPath syntax
func IsXPath(selector string) bool {
	return strings.HasPrefix(selector, "/") || strings.HasPrefix(selector, "(")
}

// Select resolves a selector in either CSS or XPath syntax. XPath is
// recognized by a leading "/" or "(". Matches are returned as a goquery
// selection over the shared tree.
func (d *Document) Select(selector string) (*goquery.Selection, error) {
	if !IsXPath(selector) {
		return d.Find(selector), nil
	}

	nodes, err := htmlquery.QueryAll(d.root, selector)
	if err != nil {
		return nil, err
	}

	sel := d.doc.Selection.Slice(0, 0)
	return sel.AddNodes(nodes...), nil
}

// ExtractText collects the text content of a node subtree
func ExtractText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
