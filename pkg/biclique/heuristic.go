package biclique

import (
	"github.com/gfatools/getblunted/pkg/adjacency"
	"github.com/gfatools/getblunted/pkg/handlegraph"
)

// heuristicCover greedily covers the block's edges when the exact path
// declines or fails. Each round considers every uncovered edge as a seed,
// extends it to the maximal biclique containing it (the closure of the seed
// under common neighbourhoods), and keeps the extension covering the most
// uncovered edges. Every round covers at least its seed, so the loop
// terminates with a complete cover.
func heuristicCover(block *adjacency.BipartiteGraph) []Bipartition {
	type edge struct{ l, r handlegraph.Handle }
	uncovered := make(map[edge]bool)
	var order []edge
	for _, l := range block.Left() {
		for _, r := range block.LeftNeighbors(l) {
			e := edge{l, r}
			if !uncovered[e] {
				uncovered[e] = true
				order = append(order, e)
			}
		}
	}

	var cover []Bipartition
	for len(uncovered) > 0 {
		var best Bipartition
		bestGain := 0
		for _, seed := range order {
			if !uncovered[seed] {
				continue
			}
			candidate := extend(block, seed.l, seed.r)
			gain := 0
			for _, l := range candidate.Left {
				for _, r := range candidate.Right {
					if uncovered[edge{l, r}] {
						gain++
					}
				}
			}
			if gain > bestGain {
				bestGain = gain
				best = candidate
			}
		}
		for _, l := range best.Left {
			for _, r := range best.Right {
				delete(uncovered, edge{l, r})
			}
		}
		cover = append(cover, best)
	}
	return cover
}

// extend grows the seed edge (l, r) to a maximal biclique containing it:
// fix l's whole neighbourhood as the right side, keep the lefts adjacent to
// all of it, then shrink the right side to their common neighbourhood.
func extend(block *adjacency.BipartiteGraph, l, r handlegraph.Handle) Bipartition {
	right := block.LeftNeighbors(l)
	rightSet := make(map[handlegraph.Handle]bool, len(right))
	for _, h := range right {
		rightSet[h] = true
	}

	var left []handlegraph.Handle
	for _, cand := range block.RightNeighbors(r) {
		if leftSeesAll(block, cand, rightSet) {
			left = append(left, cand)
		}
	}

	common := make(map[handlegraph.Handle]int)
	for _, cl := range left {
		for _, h := range block.LeftNeighbors(cl) {
			common[h]++
		}
	}
	var finalRight []handlegraph.Handle
	for h, n := range common {
		if n == len(left) {
			finalRight = append(finalRight, h)
		}
	}

	sortHandles(left)
	sortHandles(finalRight)
	return Bipartition{Left: left, Right: finalRight}
}

// leftSeesAll reports whether the left member's neighbourhood contains every
// member of set.
func leftSeesAll(block *adjacency.BipartiteGraph, h handlegraph.Handle, set map[handlegraph.Handle]bool) bool {
	ns := block.LeftNeighbors(h)
	if len(ns) < len(set) {
		return false
	}
	have := make(map[handlegraph.Handle]bool, len(ns))
	for _, n := range ns {
		have[n] = true
	}
	for want := range set {
		if !have[want] {
			return false
		}
	}
	return true
}
