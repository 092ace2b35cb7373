package dom

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
)

// Document wraps a parsed HTML tree. Mutations made through anchor
// processing are visible when the document is rendered back out.
type Document struct {
	root *html.Node
}

// Parse parses HTML content into a Document. Input must be UTF-8.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseWithCharset parses HTML content whose character set may not be
// UTF-8. When label is non-empty it names the encoding explicitly (e.g.,
// "iso-8859-1", resolved via the WHATWG encoding registry); when empty,
// the encoding is sniffed from the content itself.
func ParseWithCharset(r io.Reader, label string) (*Document, error) {
	var decoded io.Reader
	if label != "" {
		enc, err := htmlindex.Get(label)
		if err != nil {
			return nil, fmt.Errorf("unknown charset %q: %w", label, err)
		}
		decoded = enc.NewDecoder().Reader(r)
	} else {
		var err error
		decoded, err = charset.NewReader(r, "")
		if err != nil {
			return nil, fmt.Errorf("failed to detect charset: %w", err)
		}
	}
	return Parse(decoded)
}

// Root returns the document's root node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Render writes the document back out as HTML.
func (d *Document) Render(w io.Writer) error {
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	return nil
}

// IsAnchor reports whether n is an anchor element carrying an href
// attribute. Anchors without href (named anchors, placeholder links)
// have no destination to rewrite.
func IsAnchor(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == "a" && HasAttr(n, "href")
}

// Anchors returns every anchor element with an href attribute in the
// subtree rooted at n, including n itself. Document-order traversal.
func Anchors(n *html.Node) []*html.Node {
	var anchors []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if IsAnchor(node) {
			anchors = append(anchors, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}

	return anchors
}

// Attr retrieves an attribute value from an HTML node.
func Attr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// HasAttr reports whether the node carries the attribute, regardless of
// its value. An empty-valued attribute is still present.
func HasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets an attribute on the node, replacing an existing value.
func SetAttr(n *html.Node, key, value string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}
