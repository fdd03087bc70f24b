package serialize

import "pagesense/internal/semantic"

// JSONNode mirrors semantic.Node's fields as a nested object form.
type JSONNode struct {
	Role     string      `json:"role"`
	Level    int         `json:"level,omitempty"`
	Ref      *uint32     `json:"ref,omitempty"`
	Name     string      `json:"name,omitempty"`
	Type     string      `json:"type,omitempty"`
	Href     string      `json:"href,omitempty"`
	Value    string      `json:"value,omitempty"`
	Flags    []string    `json:"flags,omitempty"`
	Children []*JSONNode `json:"children,omitempty"`
}

// JSON converts a semantic tree into its JSON-serializable mirror.
func JSON(n *semantic.Node) *JSONNode {
	if n == nil {
		return nil
	}
	out := &JSONNode{
		Role:  string(n.Role),
		Level: n.Level,
		Type:  n.InputType,
		Href:  n.Href,
		Flags: n.OrderedStates(),
	}
	if n.HasRef {
		ref := n.RefID
		out.Ref = &ref
	}
	if n.HasName {
		out.Name = n.Name
	}
	if n.HasValue {
		out.Value = n.Value
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, JSON(c))
	}
	return out
}
