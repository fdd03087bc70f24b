package semantic

const maxRef = 1_000_000

// RefIndex maps an assigned ref id to the locator used to reacquire the
// live element it names.
type RefIndex map[uint32]DomLocator

// KeyRefMap remembers, across snapshots of one tab, which ref a given
// StableKey received, so re-snapshotting assigns the same ref when the key
// survives unchanged.
type KeyRefMap map[StableKey]uint32

// AllocateRefs implements the C3 ref allocator. It walks the tree in
// document order, stamps ref_id on every interactive node, and returns the
// resulting ref index plus an updated key->ref map for the next snapshot.
func AllocateRefs(root *Node, prev KeyRefMap) (RefIndex, KeyRefMap) {
	if prev == nil {
		prev = KeyRefMap{}
	}

	var interactiveNodes []*Node
	Walk(root, func(n *Node) {
		if n.Interactive {
			interactiveNodes = append(interactiveNodes, n)
		}
	})

	used := make(map[uint32]bool, len(interactiveNodes))
	assigned := make(map[*Node]uint32, len(interactiveNodes))

	// First pass: honor preferred (previously-assigned) refs.
	for _, n := range interactiveNodes {
		if ref, ok := prev[n.StableKey]; ok && !used[ref] {
			used[ref] = true
			assigned[n] = ref
		}
	}

	// Second pass: allocate new refs via linear probing.
	for _, n := range interactiveNodes {
		if _, ok := assigned[n]; ok {
			continue
		}
		candidate := RefCandidate(n.StableKey)
		for used[candidate] {
			candidate = (candidate + 1) % maxRef
		}
		used[candidate] = true
		assigned[n] = candidate
	}

	index := make(RefIndex, len(interactiveNodes))
	nextKeyRef := make(KeyRefMap, len(interactiveNodes))
	for _, n := range interactiveNodes {
		ref := assigned[n]
		n.RefID = ref
		n.HasRef = true
		index[ref] = n.Locator
		nextKeyRef[n.StableKey] = ref
	}

	return index, nextKeyRef
}
