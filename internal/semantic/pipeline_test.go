package semantic

import (
	"strconv"
	"strings"
	"testing"

	"pagesense/internal/dom"
)

func mustParse(t *testing.T, html string) *dom.Node {
	t.Helper()
	n, err := dom.ParseString(html)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return n
}

func serializeRoles(n *Node, depth int, sb *strings.Builder) {
	sb.WriteString(strings.Repeat(" ", depth))
	sb.WriteString(string(n.Role))
	if n.HasName {
		sb.WriteString(" \"" + n.Name + "\"")
	}
	sb.WriteString("\n")
	for _, c := range n.Children {
		serializeRoles(c, depth+1, sb)
	}
}

func TestLoginFormRefsDistinct(t *testing.T) {
	html := `<form>
		<label for="email">Email</label><input id="email" type="email" required>
		<label for="pw">Password</label><input id="pw" type="password">
		<input type="checkbox" id="remember">
		<button type="submit">Sign in</button>
	</form>`
	root := mustParse(t, html)
	res := Run(root, nil)

	var refs []uint32
	Walk(res.Root, func(n *Node) {
		if n.Interactive {
			if !n.HasRef {
				t.Errorf("interactive node %v has no ref", n.Role)
			}
			refs = append(refs, n.RefID)
		} else if n.HasRef {
			t.Errorf("non-interactive node %v carries a ref", n.Role)
		}
	})

	if len(refs) != 4 {
		t.Fatalf("expected 4 interactive refs, got %d", len(refs))
	}
	seen := map[uint32]bool{}
	for _, r := range refs {
		if seen[r] {
			t.Errorf("duplicate ref %d", r)
		}
		seen[r] = true
	}
}

func TestMergeLongList(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<ul>")
	for i := 0; i < 50; i++ {
		sb.WriteString("<li><a href=\"/item\">Item ")
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString("</a></li>")
	}
	sb.WriteString("</ul>")
	root := mustParse(t, sb.String())
	res := Run(root, nil)

	var list *Node
	Walk(res.Root, func(n *Node) {
		if n.Role == RoleList {
			list = n
		}
	})
	if list == nil {
		t.Fatal("expected a list node")
	}
	if len(list.Children) != MergeKeep+1 {
		t.Fatalf("expected %d children (kept + summary), got %d", MergeKeep+1, len(list.Children))
	}
	last := list.Children[len(list.Children)-1]
	if last.Role != RoleGeneric || !strings.Contains(last.Name, "more") {
		t.Errorf("expected summary tail, got role=%v name=%q", last.Role, last.Name)
	}
}

func TestCollapseNestedWrappers(t *testing.T) {
	html := `<div><div><div><span>Hello</span></div></div></div>`
	root := mustParse(t, html)
	res := Run(root, nil)

	// The root wraps a single text-bearing leaf; collapse should remove
	// every Generic wrapper with no name/state/interactivity.
	var leaves []*Node
	Walk(res.Root, func(n *Node) {
		if len(n.Children) == 0 {
			leaves = append(leaves, n)
		}
	})
	if len(leaves) != 1 {
		t.Fatalf("expected exactly one leaf, got %d", len(leaves))
	}
	if leaves[0].Role != RoleText || leaves[0].Name != "Hello" {
		t.Errorf("expected text \"Hello\", got role=%v name=%q", leaves[0].Role, leaves[0].Name)
	}
}

func TestAriaHiddenExcludesSubtree(t *testing.T) {
	html := `<div aria-hidden="true"><button>Secret</button></div><button>Visible</button>`
	root := mustParse(t, html)
	res := Run(root, nil)

	var names []string
	Walk(res.Root, func(n *Node) {
		if n.HasName {
			names = append(names, n.Name)
		}
	})
	for _, n := range names {
		if n == "Secret" {
			t.Errorf("aria-hidden subtree leaked into snapshot: %v", names)
		}
	}
}

func TestRefStabilityAcrossResnapshot(t *testing.T) {
	html := `<button id="save">Save</button>`
	root := mustParse(t, html)
	first := Run(root, nil)

	root2 := mustParse(t, html)
	second := Run(root2, first.KeyRef)

	var ref1, ref2 uint32
	Walk(first.Root, func(n *Node) {
		if n.Interactive {
			ref1 = n.RefID
		}
	})
	Walk(second.Root, func(n *Node) {
		if n.Interactive {
			ref2 = n.RefID
		}
	})
	if ref1 != ref2 {
		t.Errorf("expected stable ref across resnapshot, got %d then %d", ref1, ref2)
	}
}
