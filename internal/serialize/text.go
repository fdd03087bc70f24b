// Package serialize converts a semantic tree into the line-oriented textual
// form shown to the LLM, and into a parallel JSON form.
package serialize

import (
	"fmt"
	"strings"

	"pagesense/internal/semantic"
)

// Header carries the page metadata printed before the tree.
type Header struct {
	Title          string
	Host           string
	ScrollY        int
	ViewportHeight int
	DocumentHeight int
}

// Text renders the fixed header followed by one indented line per node.
func Text(h Header, root *semantic.Node) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "page: %q [%s]\n", h.Title, h.Host)
	fmt.Fprintf(&sb, "viewport: %d-%d of %dpx\n", h.ScrollY, h.ScrollY+h.ViewportHeight, h.DocumentHeight)
	sb.WriteString("---\n")
	writeNode(&sb, root, 0)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *semantic.Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(string(n.Role))
	if n.Role == semantic.RoleHeading && n.Level > 0 {
		fmt.Fprintf(sb, "[%d]", n.Level)
	}
	if n.HasRef {
		fmt.Fprintf(sb, " @e%d", n.RefID)
	}
	if n.HasName {
		fmt.Fprintf(sb, " %q", n.Name)
	}
	if n.Role == semantic.RoleTextbox && n.InputType != "" {
		fmt.Fprintf(sb, " (%s)", n.InputType)
	}
	if n.Role == semantic.RoleLink && n.Href != "" {
		fmt.Fprintf(sb, " -> %s", n.Href)
	}
	if flags := n.OrderedStates(); len(flags) > 0 {
		sb.WriteString(" [" + strings.Join(flags, ", ") + "]")
	}
	sb.WriteString("\n")
	for _, c := range n.Children {
		writeNode(sb, c, depth+1)
	}
}
