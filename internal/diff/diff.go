// Package diff computes a structural diff between two semantic snapshots,
// aligning nodes by StableKey rather than by tree position.
package diff

import (
	"fmt"
	"strings"

	"pagesense/internal/semantic"
)

// MaxDiffEntries caps how many change records a Result renders before
// truncating, so a page rewrite doesn't dump thousands of lines on an agent.
const MaxDiffEntries = 50

// ChangeKind classifies one diff record.
type ChangeKind string

const (
	Added    ChangeKind = "added"
	Removed  ChangeKind = "removed"
	Modified ChangeKind = "modified"
)

// Snapshot is the minimal per-node state a Change reports, independent of tree shape.
type Snapshot struct {
	Role   semantic.AriaRole
	Name   string
	Value  string
	Href   string
	RefID  uint32
	HasRef bool
	Flags  []string
}

func snapshotOf(n *semantic.Node) Snapshot {
	return Snapshot{
		Role: n.Role, Name: n.Name, Value: n.Value, Href: n.Href,
		RefID: n.RefID, HasRef: n.HasRef, Flags: n.OrderedStates(),
	}
}

// Change is one record in the diff's ordered output.
type Change struct {
	Kind   ChangeKind
	Path   string
	Before *Snapshot
	After  *Snapshot
}

type flat struct {
	order    []semantic.StableKey
	byKey    map[semantic.StableKey]*semantic.Node
	path     map[semantic.StableKey]string
	children map[semantic.StableKey][]semantic.StableKey
}

func flatten(root *semantic.Node) flat {
	f := flat{
		byKey:    map[semantic.StableKey]*semantic.Node{},
		path:     map[semantic.StableKey]string{},
		children: map[semantic.StableKey][]semantic.StableKey{},
	}
	var walk func(n *semantic.Node, ancestry string)
	walk = func(n *semantic.Node, ancestry string) {
		label := string(n.Role)
		if n.HasName {
			label += "(" + n.Name + ")"
		}
		path := label
		if ancestry != "" {
			path = ancestry + " > " + label
		}
		f.order = append(f.order, n.StableKey)
		f.byKey[n.StableKey] = n
		f.path[n.StableKey] = path
		for _, c := range n.Children {
			f.children[n.StableKey] = append(f.children[n.StableKey], c.StableKey)
		}
		for _, c := range n.Children {
			walk(c, path)
		}
	}
	if root != nil {
		walk(root, "")
	}
	return f
}

// Diff computes the ordered change set between snapshots A (previous) and B (current).
func Diff(a, b *semantic.Node) []Change {
	fa := flatten(a)
	fb := flatten(b)

	inB := map[semantic.StableKey]int{}
	for i, k := range fb.order {
		inB[k] = i
	}
	inA := map[semantic.StableKey]bool{}
	for _, k := range fa.order {
		inA[k] = true
	}

	removedAfter := map[int][]semantic.StableKey{} // anchor position in fb.order -> removed keys
	for i, k := range fa.order {
		if _, ok := inB[k]; ok {
			continue
		}
		anchor := -1
		for j := i - 1; j >= 0; j-- {
			if p, ok := inB[fa.order[j]]; ok {
				anchor = p
				break
			}
		}
		removedAfter[anchor] = append(removedAfter[anchor], k)
	}

	var ordered []semantic.StableKey
	ordered = append(ordered, removedAfter[-1]...)
	for i, k := range fb.order {
		ordered = append(ordered, k)
		ordered = append(ordered, removedAfter[i]...)
	}

	var out []Change
	for _, k := range ordered {
		nodeB, inBTree := fb.byKey[k]
		nodeA, inATree := fa.byKey[k]

		switch {
		case inBTree && !inATree:
			snap := snapshotOf(nodeB)
			out = append(out, Change{Kind: Added, Path: fb.path[k], After: &snap})
		case !inBTree && inATree:
			snap := snapshotOf(nodeA)
			out = append(out, Change{Kind: Removed, Path: fa.path[k], Before: &snap})
		case inBTree && inATree:
			if changed(nodeA, nodeB, fa.children[k], fb.children[k]) {
				before := snapshotOf(nodeA)
				after := snapshotOf(nodeB)
				out = append(out, Change{Kind: Modified, Path: fb.path[k], Before: &before, After: &after})
			}
		}
	}
	return out
}

func changed(a, b *semantic.Node, childrenA, childrenB []semantic.StableKey) bool {
	if a.Role != b.Role || a.Name != b.Name || a.Value != b.Value || a.Href != b.Href {
		return true
	}
	if a.HasRef != b.HasRef || a.RefID != b.RefID {
		return true
	}
	if !sameFlags(a.OrderedStates(), b.OrderedStates()) {
		return true
	}
	if !sameKeys(childrenA, childrenB) {
		return true
	}
	return false
}

func sameFlags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameKeys(a, b []semantic.StableKey) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Text renders the change set as one line per record, prefixed +, -, or ~.
func Text(changes []Change) string {
	var sb strings.Builder
	for _, c := range changes {
		switch c.Kind {
		case Added:
			fmt.Fprintf(&sb, "+ %s: %s %q\n", c.Path, c.After.Role, c.After.Name)
		case Removed:
			fmt.Fprintf(&sb, "- %s: %s %q\n", c.Path, c.Before.Role, c.Before.Name)
		case Modified:
			fmt.Fprintf(&sb, "~ %s: value %q -> %q\n", c.Path, c.Before.Value, c.After.Value)
		}
	}
	return sb.String()
}

// Result bundles a change list truncated to at most a cap with the true,
// untruncated count, so a caller can report total_changes alongside a
// manageable emitted list.
type Result struct {
	Changes      []Change
	TotalChanges int
}

// Cap truncates changes to at most max entries, preserving TotalChanges as
// the untruncated count. max <= 0 disables truncation.
func Cap(changes []Change, max int) Result {
	if max <= 0 || len(changes) <= max {
		return Result{Changes: changes, TotalChanges: len(changes)}
	}
	return Result{Changes: changes[:max], TotalChanges: len(changes)}
}

// Text renders the truncated change list, appending a trailer line when
// entries were dropped.
func (r Result) Text() string {
	s := Text(r.Changes)
	if dropped := r.TotalChanges - len(r.Changes); dropped > 0 {
		s += fmt.Sprintf("...and %d more changes\n", dropped)
	}
	return s
}
