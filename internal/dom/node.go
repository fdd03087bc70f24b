// Package dom provides a uniform in-memory representation of parsed HTML,
// independent of the parser that produced it.
package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Kind identifies the category of a Node.
type Kind int

const (
	KindElement Kind = iota
	KindText
	KindComment
	KindDoctype
)

// Rect is a bounding rectangle in viewport coordinates, attached out-of-band
// by the driver. A nil *Rect on a Node means geometry is unknown.
type Rect struct {
	X, Y, Width, Height float64
}

// Geometry carries layout facts a live driver can supply for an element;
// when absent, callers treat the element as on-screen and visible.
type Geometry struct {
	Rect    *Rect
	Visible bool
	Known   bool
}

// Node is a parser-agnostic DOM node: an element, text run, comment, or doctype.
type Node struct {
	Kind     Kind
	Tag      string            // lowercased tag name, elements only
	Attrs    map[string]string // lowercased attribute names, last-wins
	AttrKeys []string          // attribute insertion order, for deterministic iteration
	Text     string            // raw text, text/comment/doctype nodes only
	Children []*Node
	Geometry Geometry
}

// Attr returns the value of the named attribute and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	if n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[name]
	return v, ok
}

// AttrOr returns the named attribute's value or fallback when absent.
func (n *Node) AttrOr(name, fallback string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return fallback
}

// HasAttr reports whether the attribute is present, regardless of value.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// Parse builds a Node tree from an HTML document or fragment.
func Parse(r io.Reader) (*Node, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return convert(root), nil
}

// ParseString is a convenience wrapper around Parse for in-memory HTML.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

func convert(n *html.Node) *Node {
	switch n.Type {
	case html.ElementNode:
		out := &Node{Kind: KindElement, Tag: strings.ToLower(n.Data)}
		if len(n.Attr) > 0 {
			out.Attrs = make(map[string]string, len(n.Attr))
			for _, a := range n.Attr {
				key := strings.ToLower(a.Key)
				if _, exists := out.Attrs[key]; !exists {
					out.AttrKeys = append(out.AttrKeys, key)
				}
				out.Attrs[key] = a.Val // last-wins per duplicate attribute
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			out.Children = append(out.Children, convert(c))
		}
		return out
	case html.TextNode:
		return &Node{Kind: KindText, Text: n.Data}
	case html.CommentNode:
		return &Node{Kind: KindComment, Text: n.Data}
	case html.DoctypeNode:
		return &Node{Kind: KindDoctype, Text: n.Data}
	default:
		// Document/DocumentFragment nodes: flatten to a synthetic element
		// so callers always receive a single root with Children.
		out := &Node{Kind: KindElement, Tag: "#root"}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			out.Children = append(out.Children, convert(c))
		}
		return out
	}
}

// TextContent concatenates all descendant text nodes, collapsing whitespace
// the way whitespace-insensitive HTML rendering would.
func (n *Node) TextContent() string {
	var sb strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Kind == KindText {
			sb.WriteString(n.Text)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return CollapseWhitespace(sb.String())
}

// CollapseWhitespace trims and collapses runs of whitespace to a single space.
func CollapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// TagGeometry assigns geoms onto n's element nodes by document order: the
// i-th real element visited in a preorder walk receives geoms[i]. It's built
// for whole-page probes where the driver walked the live DOM with
// querySelectorAll('*'), which never yields the document itself, so the
// synthetic "#root" node convert() adds for Document/DocumentFragment inputs
// is skipped rather than consuming a slot. Elements beyond len(geoms) are
// left with their zero Geometry (unknown).
func TagGeometry(n *Node, geoms []Geometry) {
	i := 0
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Kind == KindElement && n.Tag != "#root" {
			if i < len(geoms) {
				n.Geometry = geoms[i]
			}
			i++
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
}
