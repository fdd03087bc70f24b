// Package semantic implements the DOM-to-accessibility-tree pipeline: prune,
// role-map, collapse, merge, and the stable ref allocator that sits on top.
package semantic

import (
	"hash/fnv"
	"strconv"

	"pagesense/internal/dom"
)

// Result is the pipeline's full output for one snapshot.
type Result struct {
	Root     *Node
	RefIndex RefIndex
	KeyRef   KeyRefMap
	DomHash  uint64
}

// Run executes the fixed P1->P4 pipeline followed by ref allocation.
// prevKeyRef is the previous snapshot's key->ref map (nil for a first snapshot).
func Run(root *dom.Node, prevKeyRef KeyRefMap) Result {
	pruned := Prune(root)
	domHash := HashDom(pruned)

	tree := RoleMap(pruned)
	DisambiguateKeys(tree)
	tree = Collapse(tree)
	tree = Merge(tree)

	refIndex, keyRef := AllocateRefs(tree, prevKeyRef)

	return Result{Root: tree, RefIndex: refIndex, KeyRef: keyRef, DomHash: domHash}
}

// DisambiguateKeys walks the tree in document order and appends an occurrence
// index to any StableKey already seen, so identical raw keys never collide
// silently (§3: "collisions are resolved by appending the document order of
// the first occurrence").
func DisambiguateKeys(root *Node) {
	seen := map[StableKey]int{}
	Walk(root, func(n *Node) {
		count := seen[n.StableKey]
		seen[n.StableKey] = count + 1
		n.StableKey = Disambiguate(n.StableKey, count)
	})
}

// HashDom computes a deterministic hash of the pruned DOM tree, used to
// short-circuit re-snapshotting when nothing observable has changed.
func HashDom(n *dom.Node) uint64 {
	h := fnv.New64a()
	hashDomInto(n, h)
	return h.Sum64()
}

func hashDomInto(n *dom.Node, h interface{ Write([]byte) (int, error) }) {
	if n == nil {
		_, _ = h.Write([]byte("nil;"))
		return
	}
	switch n.Kind {
	case dom.KindText:
		_, _ = h.Write([]byte("t:" + n.Text + ";"))
		return
	case dom.KindComment, dom.KindDoctype:
		return
	}
	_, _ = h.Write([]byte("e:" + n.Tag + ";"))
	for _, k := range n.AttrKeys {
		_, _ = h.Write([]byte(k + "=" + n.Attrs[k] + ";"))
	}
	_, _ = h.Write([]byte("c:" + strconv.Itoa(len(n.Children)) + ";"))
	for _, c := range n.Children {
		hashDomInto(c, h)
	}
}
