package semantic

import (
	"strings"

	"pagesense/internal/dom"
)

// idIndex maps element id -> the dom.Node carrying it, built once per pruned
// tree so label/aria-labelledby dereferencing doesn't re-walk the tree.
type idIndex map[string]*dom.Node

func buildIDIndex(n *dom.Node, idx idIndex) {
	if n == nil {
		return
	}
	if n.Kind == dom.KindElement {
		if id, ok := n.Attr("id"); ok && id != "" {
			idx[id] = n
		}
	}
	for _, c := range n.Children {
		buildIDIndex(c, idx)
	}
}

// labelForIndex maps a form control's id -> the text of a <label for=id>.
func buildLabelForIndex(n *dom.Node, idx map[string]string) {
	if n == nil {
		return
	}
	if n.Kind == dom.KindElement && n.Tag == "label" {
		if forID, ok := n.Attr("for"); ok && forID != "" {
			idx[forID] = n.TextContent()
		}
	}
	for _, c := range n.Children {
		buildLabelForIndex(c, idx)
	}
}

type rolemapCtx struct {
	ids        idIndex
	labelsFor  map[string]string
	pathCounts map[string]int // parent-path -> per-role ordinal counter, keyed per call site
}

// RoleMap implements stage P2: walk the pruned DOM and produce a SemanticNode tree.
func RoleMap(root *dom.Node) *Node {
	ctx := &rolemapCtx{ids: idIndex{}, labelsFor: map[string]string{}}
	buildIDIndex(root, ctx.ids)
	buildLabelForIndex(root, ctx.labelsFor)

	ordinals := map[AriaRole]int{}
	out := mapNode(root, ctx, "", ordinals, nil)
	if out == nil {
		out = &Node{Role: RolePage}
	}
	return out
}

func mapNode(n *dom.Node, ctx *rolemapCtx, path string, ordinals map[AriaRole]int, wrappingLabel *dom.Node) *Node {
	if n == nil {
		return nil
	}

	if n.Kind == dom.KindText {
		text := dom.CollapseWhitespace(n.Text)
		if text == "" {
			return nil
		}
		return &Node{Role: RoleText, Name: text, HasName: true, StableKey: ComputeRawKey(KeyInputs{
			Role: RoleText, AccessibleName: text, StructuralPath: path,
		})}
	}
	if n.Kind != dom.KindElement {
		return nil
	}
	if n.Tag == "head" || n.Tag == "#root" || n.Tag == "html" || n.Tag == "body" {
		return mapContainer(n, ctx, path, RoleGeneric)
	}

	role, explicit := resolveRole(n)
	childPath := path + ">" + n.Tag

	out := &Node{Role: role}
	if role == RoleHeading {
		out.Level = HeadingLevel(n.Tag)
	}

	name := resolveAccessibleName(n, ctx, role, wrappingLabel)
	if name != "" {
		out.Name = name
		out.HasName = true
	}

	applyStateFlags(n, out)

	if role == RoleTextbox {
		out.InputType = strings.ToLower(n.AttrOr("type", "text"))
	} else if n.Tag == "input" {
		if typ := strings.ToLower(n.AttrOr("type", "")); typ == "checkbox" || typ == "radio" {
			out.InputType = typ
		}
	}
	if role == RoleLink {
		out.Href = n.AttrOr("href", "")
	}
	if v, ok := n.Attr("value"); ok {
		out.Value = v
		out.HasValue = true
	}

	out.Interactive = IsInteractive(role)
	if role == RoleCell && isClickableCell(n) {
		out.Interactive = true
	}

	ordinals[role]++
	out.StableKey = ComputeRawKey(KeyInputs{
		ID: n.AttrOr("id", ""), HasID: n.HasAttr("id"),
		DomName: n.AttrOr("name", ""), HasDomName: n.HasAttr("name"),
		Role: role, AccessibleName: name, InputType: out.InputType,
		Ordinal: ordinals[role], StructuralPath: childPath,
	})
	out.Locator = DomLocator{
		Tag: n.Tag, ID: n.AttrOr("id", ""), Name: n.AttrOr("name", ""),
		StructuralPath: childPath,
	}

	if !n.Geometry.Known {
		// unknown geometry: assume on-screen (no offscreen flag)
	} else if n.Geometry.Rect != nil {
		out.SetState(StateOffscreen, IsOffscreen(*n.Geometry.Rect))
	}

	_ = explicit
	childOrdinals := map[AriaRole]int{}
	for _, c := range n.Children {
		var label *dom.Node
		if c.Kind == dom.KindElement && c.Tag == "label" {
			label = c
		}
		if cn := mapNode(c, ctx, childPath, childOrdinals, label); cn != nil {
			out.Children = append(out.Children, cn)
		}
	}

	return out
}

// mapContainer handles transparent scaffolding (#root/html/body/head) by
// mapping children directly under a synthetic Generic node.
func mapContainer(n *dom.Node, ctx *rolemapCtx, path string, role AriaRole) *Node {
	out := &Node{Role: role}
	ordinals := map[AriaRole]int{}
	for _, c := range n.Children {
		if cn := mapNode(c, ctx, path+">"+n.Tag, ordinals, nil); cn != nil {
			out.Children = append(out.Children, cn)
		}
	}
	out.StableKey = ComputeRawKey(KeyInputs{Role: role, StructuralPath: path + ">" + n.Tag})
	return out
}

func resolveRole(n *dom.Node) (AriaRole, bool) {
	if roleAttr, ok := n.Attr("role"); ok {
		if r, known := ResolveNamedRole(roleAttr); known {
			return r, true
		}
	}
	if r, ok := RoleForTag(n.Tag, n.Attrs); ok {
		return r, false
	}
	return RoleGeneric, false
}

func resolveAccessibleName(n *dom.Node, ctx *rolemapCtx, role AriaRole, wrappingLabel *dom.Node) string {
	if ids, ok := n.Attr("aria-labelledby"); ok {
		var parts []string
		for _, id := range strings.Fields(ids) {
			if target, found := ctx.ids[id]; found {
				if t := target.TextContent(); t != "" {
					parts = append(parts, t)
				}
			}
		}
		if len(parts) > 0 {
			return dom.CollapseWhitespace(strings.Join(parts, " "))
		}
	}
	if v, ok := n.Attr("aria-label"); ok && strings.TrimSpace(v) != "" {
		return dom.CollapseWhitespace(v)
	}

	isFormControl := role == RoleTextbox || role == RoleCheckbox || role == RoleRadio || role == RoleCombobox
	if isFormControl {
		if id, ok := n.Attr("id"); ok {
			if label, found := ctx.labelsFor[id]; found && label != "" {
				return dom.CollapseWhitespace(label)
			}
		}
		if wrappingLabel != nil {
			if t := wrappingLabel.TextContent(); t != "" {
				return dom.CollapseWhitespace(t)
			}
		}
	}

	if role == RoleButton || role == RoleLink {
		if t := n.TextContent(); t != "" {
			return dom.CollapseWhitespace(t)
		}
	}

	if v, ok := n.Attr("title"); ok && strings.TrimSpace(v) != "" {
		return dom.CollapseWhitespace(v)
	}
	if role == RoleTextbox {
		if v, ok := n.Attr("placeholder"); ok && strings.TrimSpace(v) != "" {
			return dom.CollapseWhitespace(v)
		}
	}
	if role == RoleImage {
		if v, ok := n.Attr("alt"); ok {
			return dom.CollapseWhitespace(v)
		}
	}

	if role == RoleHeading || role == RoleParagraph {
		if t := n.TextContent(); t != "" {
			return dom.CollapseWhitespace(t)
		}
	}

	return ""
}

func applyStateFlags(n *dom.Node, out *Node) {
	if v, ok := n.Attr("aria-checked"); ok {
		if strings.EqualFold(v, "true") {
			out.SetState(StateChecked, true)
		} else if strings.EqualFold(v, "false") {
			out.SetState(StateUnchecked, true)
		}
	} else if n.HasAttr("checked") {
		out.SetState(StateChecked, true)
	} else if out.Role == RoleCheckbox || out.Role == RoleRadio {
		out.SetState(StateUnchecked, true)
	}

	if v, ok := n.Attr("aria-required"); ok && strings.EqualFold(v, "true") {
		out.SetState(StateRequired, true)
	} else if n.HasAttr("required") {
		out.SetState(StateRequired, true)
	}

	if v, ok := n.Attr("aria-disabled"); ok && strings.EqualFold(v, "true") {
		out.SetState(StateDisabled, true)
	} else if n.HasAttr("disabled") {
		out.SetState(StateDisabled, true)
	}

	if v, ok := n.Attr("aria-expanded"); ok {
		if strings.EqualFold(v, "true") {
			out.SetState(StateExpanded, true)
		} else if strings.EqualFold(v, "false") {
			out.SetState(StateCollapsed, true)
		}
	}

	if v, ok := n.Attr("aria-selected"); ok && strings.EqualFold(v, "true") {
		out.SetState(StateSelected, true)
	} else if n.HasAttr("selected") {
		out.SetState(StateSelected, true)
	}
}

func isClickableCell(n *dom.Node) bool {
	_, hasClick := n.Attr("onclick")
	return hasClick
}

// IsOffscreen reports whether a rect has scrolled entirely past the top or
// left edge of the viewport. Exported so callers outside this package (the
// scroll re-tagging path) apply the same offscreen decision the pipeline does.
func IsOffscreen(r Rect) bool {
	return r.Y+r.Height < 0 || r.X+r.Width < 0
}

// Rect mirrors dom.Rect locally to avoid importing the type twice in signatures.
type Rect = dom.Rect
