// Package taskcontext implements the relevance-scoring filter that produces
// focused snapshots for a declared task.
package taskcontext

import (
	"fmt"
	"sort"
	"strings"

	"pagesense/internal/semantic"
)

// Context narrows subsequent snapshots to nodes relevant to a task.
type Context struct {
	Task            string
	FocusRoles      map[semantic.AriaRole]bool
	InteractiveOnly bool
	MaxNodes        uint32
}

// Filter clones root and prunes it to the nodes relevant to ctx, summarizing
// the remainder via the same merge rule as stage P4. The input tree is never
// mutated and no refs are allocated or invalidated.
func Filter(root *semantic.Node, ctx Context) *semantic.Node {
	clone := root.Clone()
	scores := map[*semantic.Node]int{}
	scoreTree(clone, ctx, scores)
	propagateMax(clone, scores)

	kept := prune(clone, scores)
	if kept == nil {
		kept = &semantic.Node{Role: semantic.RolePage}
	}

	if ctx.MaxNodes > 0 {
		kept = capAndSummarize(kept, scores, ctx.MaxNodes)
	}
	return kept
}

func scoreTree(n *semantic.Node, ctx Context, scores map[*semantic.Node]int) {
	scores[n] = scoreNode(n, ctx)
	for _, c := range n.Children {
		scoreTree(c, ctx, scores)
	}
}

func scoreNode(n *semantic.Node, ctx Context) int {
	score := 0
	if ctx.FocusRoles[n.Role] {
		score += 3
	}
	if n.Interactive && ctx.InteractiveOnly {
		score += 2
	}
	if ctx.Task != "" {
		haystack := strings.ToLower(n.Name + " " + n.Value)
		for _, tok := range strings.Fields(strings.ToLower(ctx.Task)) {
			if tok != "" && strings.Contains(haystack, tok) {
				score++
			}
		}
	}
	return score
}

// propagateMax gives each node the max of its own score and any descendant's,
// so the path to a deep match survives pruning.
func propagateMax(n *semantic.Node, scores map[*semantic.Node]int) int {
	best := scores[n]
	for _, c := range n.Children {
		if s := propagateMax(c, scores); s > best {
			best = s
		}
	}
	scores[n] = best
	return best
}

func prune(n *semantic.Node, scores map[*semantic.Node]int) *semantic.Node {
	if scores[n] <= 0 {
		return nil
	}
	var kept []*semantic.Node
	for _, c := range n.Children {
		if pc := prune(c, scores); pc != nil {
			kept = append(kept, pc)
		}
	}
	n.Children = kept
	return n
}

// capAndSummarize keeps the top-scoring subtrees of root by document order,
// greedily admitting root's children highest-score-first until maxNodes
// would be exceeded, and folds whatever's left into a single node via the
// same merge rule P4 uses for long equivalent-sibling runs.
func capAndSummarize(root *semantic.Node, scores map[*semantic.Node]int, maxNodes uint32) *semantic.Node {
	if subtreeSize(root) <= maxNodes {
		return root
	}

	sizes := make([]uint32, len(root.Children))
	order := make([]int, len(root.Children))
	for i, c := range root.Children {
		sizes[i] = subtreeSize(c)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[root.Children[order[a]]] > scores[root.Children[order[b]]]
	})

	budget := uint32(1) // root itself
	keep := make([]bool, len(root.Children))
	for _, i := range order {
		if budget+sizes[i] <= maxNodes {
			keep[i] = true
			budget += sizes[i]
		}
	}

	var kept, dropped []*semantic.Node
	for i, c := range root.Children {
		if keep[i] {
			kept = append(kept, c)
		} else {
			dropped = append(dropped, c)
		}
	}
	if len(dropped) > 0 {
		kept = append(kept, summarizeRemainder(dropped))
	}
	root.Children = kept
	return root
}

func subtreeSize(n *semantic.Node) uint32 {
	var size uint32
	semantic.Walk(n, func(*semantic.Node) { size++ })
	return size
}

// summarizeRemainder applies P4's merge rule to the subtrees cut by the
// max_nodes cap. Equivalent-sibling runs collapse the way they would in a
// full pipeline pass; whatever heterogeneous content is left after that
// collapses into one overflow marker naming the dropped node count.
func summarizeRemainder(dropped []*semantic.Node) *semantic.Node {
	holder := &semantic.Node{Role: semantic.RoleGeneric, Children: dropped}
	semantic.Merge(holder)
	if len(holder.Children) == 1 {
		return holder.Children[0]
	}
	var total uint32
	for _, d := range dropped {
		total += subtreeSize(d)
	}
	return &semantic.Node{
		Role:    semantic.RoleGeneric,
		Name:    fmt.Sprintf("… %d more", total),
		HasName: true,
		StableKey: semantic.ComputeRawKey(semantic.KeyInputs{
			Role: semantic.RoleGeneric, AccessibleName: "more", Ordinal: int(total),
		}),
	}
}
