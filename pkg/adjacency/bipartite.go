package adjacency

import (
	"github.com/gfatools/getblunted/pkg/handlegraph"
)

// BipartiteGraph is a bipartite block of an adjacency component: two disjoint
// side sets such that every edge of the block runs between them. A side that
// had to be duplicated to break a self-loop or an odd cycle appears in both
// partitions; its left and right memberships are independent downstream, so
// all neighbour accessors are explicit about which membership they address.
type BipartiteGraph struct {
	left, right []handlegraph.Handle
	leftIndex   map[handlegraph.Handle]int
	rightIndex  map[handlegraph.Handle]int
	leftAdj     map[handlegraph.Handle][]handlegraph.Handle // left member -> right members
	rightAdj    map[handlegraph.Handle][]handlegraph.Handle // right member -> left members
}

// Left returns the left partition, sorted.
func (b *BipartiteGraph) Left() []handlegraph.Handle { return b.left }

// Right returns the right partition, sorted.
func (b *BipartiteGraph) Right() []handlegraph.Handle { return b.right }

// LeftSize returns the size of the left partition.
func (b *BipartiteGraph) LeftSize() int { return len(b.left) }

// RightSize returns the size of the right partition.
func (b *BipartiteGraph) RightSize() int { return len(b.right) }

// LeftIndex returns the position of h in the left partition, or -1.
func (b *BipartiteGraph) LeftIndex(h handlegraph.Handle) int {
	if i, ok := b.leftIndex[h]; ok {
		return i
	}
	return -1
}

// RightIndex returns the position of h in the right partition, or -1.
func (b *BipartiteGraph) RightIndex(h handlegraph.Handle) int {
	if i, ok := b.rightIndex[h]; ok {
		return i
	}
	return -1
}

// LeftNeighbors returns the right-partition sides adjacent to the left
// member h, sorted.
func (b *BipartiteGraph) LeftNeighbors(h handlegraph.Handle) []handlegraph.Handle {
	return b.leftAdj[h]
}

// RightNeighbors returns the left-partition sides adjacent to the right
// member h, sorted.
func (b *BipartiteGraph) RightNeighbors(h handlegraph.Handle) []handlegraph.Handle {
	return b.rightAdj[h]
}

// LeftDegree returns the degree of a left member.
func (b *BipartiteGraph) LeftDegree(h handlegraph.Handle) int { return len(b.leftAdj[h]) }

// RightDegree returns the degree of a right member.
func (b *BipartiteGraph) RightDegree(h handlegraph.Handle) int { return len(b.rightAdj[h]) }

// EdgeCount returns the number of edges in the block.
func (b *BipartiteGraph) EdgeCount() int {
	n := 0
	for _, ns := range b.leftAdj {
		n += len(ns)
	}
	return n
}

// DecomposeIntoBipartiteBlocks streams the component's bipartite blocks to
// emit. Sides are two-coloured by BFS; a side whose edges would join two
// same-coloured sides (a self-loop or an odd cycle) is duplicated into both
// partitions, which is sound because duplicated termini are handled
// independently by the terminus duplicator.
func (c *Component) DecomposeIntoBipartiteBlocks(g *handlegraph.Graph, emit func(*BipartiteGraph)) {
	const (
		uncolored  = 0
		leftColor  = 1
		rightColor = 2
	)
	color := make(map[handlegraph.Handle]int, len(c.Sides))
	inComponent := make(map[handlegraph.Handle]bool, len(c.Sides))
	for _, h := range c.Sides {
		inComponent[h] = true
	}

	for _, seed := range c.Sides {
		if color[seed] != uncolored {
			continue
		}
		var left, right []handlegraph.Handle
		both := make(map[handlegraph.Handle]bool)

		color[seed] = leftColor
		queue := []handlegraph.Handle{seed}
		members := []handlegraph.Handle{seed}
		for len(queue) > 0 {
			h := queue[0]
			queue = queue[1:]
			for _, n := range sideNeighbors(g, h) {
				if !inComponent[n] {
					continue
				}
				switch color[n] {
				case uncolored:
					color[n] = opposite(color[h])
					queue = append(queue, n)
					members = append(members, n)
				case color[h]:
					// Odd cycle or self-adjacency: the neighbour must sit on
					// both sides of the partition.
					both[n] = true
				}
			}
		}

		for _, h := range members {
			if both[h] || color[h] == leftColor {
				left = append(left, h)
			}
			if both[h] || color[h] == rightColor {
				right = append(right, h)
			}
		}
		sortHandles(left)
		sortHandles(right)
		emit(buildBipartite(g, left, right))
	}
}

func opposite(c int) int {
	if c == 1 {
		return 2
	}
	return 1
}

// sideNeighbors lists the sides adjacent to h: flip(h') for every rightward
// edge (h, h').
func sideNeighbors(g *handlegraph.Graph, h handlegraph.Handle) []handlegraph.Handle {
	var ns []handlegraph.Handle
	g.FollowEdges(h, false, func(n handlegraph.Handle) bool {
		ns = append(ns, n.Flip())
		return true
	})
	return ns
}

func buildBipartite(g *handlegraph.Graph, left, right []handlegraph.Handle) *BipartiteGraph {
	b := &BipartiteGraph{
		left:       left,
		right:      right,
		leftIndex:  make(map[handlegraph.Handle]int, len(left)),
		rightIndex: make(map[handlegraph.Handle]int, len(right)),
		leftAdj:    make(map[handlegraph.Handle][]handlegraph.Handle, len(left)),
		rightAdj:   make(map[handlegraph.Handle][]handlegraph.Handle, len(right)),
	}
	for i, h := range left {
		b.leftIndex[h] = i
	}
	for i, h := range right {
		b.rightIndex[h] = i
	}
	for _, l := range left {
		seen := make(map[handlegraph.Handle]bool)
		for _, n := range sideNeighbors(g, l) {
			if _, ok := b.rightIndex[n]; ok && !seen[n] {
				seen[n] = true
				b.leftAdj[l] = append(b.leftAdj[l], n)
			}
		}
		sortHandles(b.leftAdj[l])
	}
	for _, r := range right {
		seen := make(map[handlegraph.Handle]bool)
		for _, n := range sideNeighbors(g, r) {
			if _, ok := b.leftIndex[n]; ok && !seen[n] {
				seen[n] = true
				b.rightAdj[r] = append(b.rightAdj[r], n)
			}
		}
		sortHandles(b.rightAdj[r])
	}
	return b
}
