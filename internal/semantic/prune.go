package semantic

import (
	"strings"

	"pagesense/internal/dom"
)

var droppedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
}

// structuralWrapperTags are elements with no semantic contribution of their
// own. Prune keeps them with their children; P3 collapses the ones that end
// up carrying no name, state or interactivity.
var structuralWrapperTags = map[string]bool{
	"div": true, "span": true, "#root": true, "html": true, "body": true,
}

// Prune implements stage P1: drop script/style/invisible/hidden subtrees and
// whitespace-only text, keeping only <title>/<meta> from <head>.
func Prune(root *dom.Node) *dom.Node {
	pruned := pruneNode(root, false)
	if pruned == nil {
		return &dom.Node{Kind: dom.KindElement, Tag: "#root"}
	}
	return pruned
}

func pruneNode(n *dom.Node, insidePre bool) *dom.Node {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case dom.KindComment, dom.KindDoctype:
		return nil
	case dom.KindText:
		if !insidePre && strings.TrimSpace(n.Text) == "" {
			return nil
		}
		return &dom.Node{Kind: dom.KindText, Text: n.Text}
	}

	if droppedTags[n.Tag] {
		return nil
	}
	if n.Tag == "head" {
		return pruneHead(n)
	}
	if isHidden(n) {
		return nil
	}

	childInsidePre := insidePre || n.Tag == "pre"
	out := &dom.Node{Kind: dom.KindElement, Tag: n.Tag, Attrs: n.Attrs, AttrKeys: n.AttrKeys, Geometry: n.Geometry}
	for _, c := range n.Children {
		if pc := pruneNode(c, childInsidePre); pc != nil {
			out.Children = append(out.Children, pc)
		}
	}

	if structuralWrapperTags[n.Tag] && len(out.Attrs) == 0 {
		// A bare structural wrapper is kept as it is here; P3 removes it
		// (and the head/html/body scaffolding) after role mapping.
	}

	return out
}

// pruneHead keeps only <title> and <meta> children of <head>.
func pruneHead(n *dom.Node) *dom.Node {
	out := &dom.Node{Kind: dom.KindElement, Tag: "head"}
	for _, c := range n.Children {
		if c.Kind != dom.KindElement {
			continue
		}
		if c.Tag == "title" || c.Tag == "meta" {
			out.Children = append(out.Children, c)
		}
	}
	return out
}

var hiddenStyleTokens = []string{"display:none", "display: none", "visibility:hidden", "visibility: hidden"}

func isHidden(n *dom.Node) bool {
	if n.HasAttr("hidden") || n.HasAttr("inert") {
		return true
	}
	if v, ok := n.Attr("aria-hidden"); ok && strings.EqualFold(v, "true") {
		return true
	}
	if style, ok := n.Attr("style"); ok {
		lowered := strings.ToLower(style)
		for _, tok := range hiddenStyleTokens {
			if strings.Contains(lowered, tok) {
				return true
			}
		}
	}
	if n.Geometry.Known && !n.Geometry.Visible {
		return true
	}
	return false
}
