package serialize

import (
	"strings"
	"testing"

	"pagesense/internal/semantic"
)

func TestTextHeaderAndFlags(t *testing.T) {
	root := &semantic.Node{Role: semantic.RolePage, Children: []*semantic.Node{
		{Role: semantic.RoleButton, Name: "Sign in", HasName: true, HasRef: true, RefID: 42, Interactive: true},
	}}
	root.Children[0].SetState(semantic.StateDisabled, true)

	out := Text(Header{Title: "Example", Host: "example.com", ScrollY: 0, ViewportHeight: 800, DocumentHeight: 2000}, root)

	if !strings.Contains(out, `page: "Example" [example.com]`) {
		t.Errorf("missing header line: %q", out)
	}
	if !strings.Contains(out, "viewport: 0-800 of 2000px") {
		t.Errorf("missing viewport line: %q", out)
	}
	if !strings.Contains(out, "button @e42 \"Sign in\" [disabled]") {
		t.Errorf("missing button line: %q", out)
	}
}
