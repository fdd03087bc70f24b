package extract

import (
	"testing"

	"pagesense/internal/semantic"
)

func TestExtractObjectBindsByName(t *testing.T) {
	root := &semantic.Node{Role: semantic.RoleGroup, Children: []*semantic.Node{
		{Role: semantic.RoleText, Name: "Price: $19.99", HasName: true},
	}}
	schema := Schema{
		"type": "object",
		"properties": map[string]interface{}{
			"price": map[string]interface{}{"type": "number"},
		},
	}
	out, err := Extract(root, "", schema)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	m := out.(map[string]interface{})
	if m["price"] != 19.99 {
		t.Errorf("expected price 19.99, got %v", m["price"])
	}
}

func TestExtractMissingPropertyErrors(t *testing.T) {
	root := &semantic.Node{Role: semantic.RoleGroup}
	schema := Schema{
		"type":       "object",
		"properties": map[string]interface{}{"missing": map[string]interface{}{"type": "string"}},
	}
	if _, err := Extract(root, "", schema); err == nil {
		t.Fatal("expected a schema binding error")
	}
}

// TestExtractSeparateLabelAndValueBindsToValue covers <label>Price</label>
// <span>19.99</span>: the label node's name matches "price" on substring, but
// the adjacent value node must win the match, not the label itself.
func TestExtractSeparateLabelAndValueBindsToValue(t *testing.T) {
	root := &semantic.Node{Role: semantic.RoleGroup, Children: []*semantic.Node{
		{Role: semantic.RoleText, Name: "Price", HasName: true},
		{Role: semantic.RoleGeneric, Name: "19.99", HasName: true},
	}}
	schema := Schema{
		"type":       "object",
		"properties": map[string]interface{}{"price": map[string]interface{}{"type": "number"}},
	}
	out, err := Extract(root, "", schema)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	m := out.(map[string]interface{})
	if m["price"] != 19.99 {
		t.Errorf("expected price 19.99, got %v", m["price"])
	}
}

// TestExtractNestedLabelBindsToChildValue covers a label wrapping its value
// as a child rather than a sibling.
func TestExtractNestedLabelBindsToChildValue(t *testing.T) {
	root := &semantic.Node{Role: semantic.RoleGroup, Children: []*semantic.Node{
		{Role: semantic.RoleHeading, Name: "Rating", HasName: true, Children: []*semantic.Node{
			{Role: semantic.RoleText, Name: "4.5", HasName: true},
		}},
	}}
	schema := Schema{
		"type":       "object",
		"properties": map[string]interface{}{"rating": map[string]interface{}{"type": "number"}},
	}
	out, err := Extract(root, "", schema)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	m := out.(map[string]interface{})
	if m["rating"] != 4.5 {
		t.Errorf("expected rating 4.5, got %v", m["rating"])
	}
}

func TestExtractArrayFromTableMatchesColumnsByHeader(t *testing.T) {
	row := func(name, price string) *semantic.Node {
		return &semantic.Node{Role: semantic.RoleRow, Children: []*semantic.Node{
			{Role: semantic.RoleCell, Name: name, HasName: true},
			{Role: semantic.RoleCell, Name: price, HasName: true},
		}}
	}
	table := &semantic.Node{Role: semantic.RoleTable, Children: []*semantic.Node{
		{Role: semantic.RoleRow, Children: []*semantic.Node{
			{Role: semantic.RoleColumnHeader, Name: "Item", HasName: true},
			{Role: semantic.RoleColumnHeader, Name: "Unit Price", HasName: true},
		}},
		row("Widget", "9.99"),
		row("Gadget", "14.50"),
	}}
	root := &semantic.Node{Role: semantic.RoleRegion, Children: []*semantic.Node{table}}

	schema := Schema{
		"type": "array",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"item":  map[string]interface{}{"type": "string"},
				"price": map[string]interface{}{"type": "number"},
			},
		},
	}
	out, err := Extract(root, "", schema)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	rows := out.([]interface{})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0].(map[string]interface{})
	if first["item"] != "Widget" || first["price"] != 9.99 {
		t.Errorf("unexpected first row: %+v", first)
	}
}

func TestExtractArrayFromRepeatedList(t *testing.T) {
	list := &semantic.Node{Role: semantic.RoleList, Children: []*semantic.Node{
		{Role: semantic.RoleListItem, Children: []*semantic.Node{
			{Role: semantic.RoleText, Name: "Label: First", HasName: true},
		}},
		{Role: semantic.RoleListItem, Children: []*semantic.Node{
			{Role: semantic.RoleText, Name: "Label: Second", HasName: true},
		}},
	}}
	root := &semantic.Node{Role: semantic.RoleRegion, Children: []*semantic.Node{list}}

	schema := Schema{
		"type": "array",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"label": map[string]interface{}{"type": "string"},
			},
		},
	}
	out, err := Extract(root, "", schema)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	rows := out.([]interface{})
	if len(rows) != 2 {
		t.Fatalf("expected 2 list items, got %d", len(rows))
	}
}
