// Package adjacency partitions a bidirected graph's node sides into
// adjacency components and decomposes each component into bipartite blocks.
//
// A node side is addressed by a handle: the handle's right side in its given
// orientation. Two sides belong to the same adjacency component when one can
// be reached from the other by crossing an edge: every edge (h, h') joins the
// side h with the side flip(h').
package adjacency

import (
	"sort"

	"github.com/gfatools/getblunted/pkg/handlegraph"
)

// Component is a set of node sides closed under crossing edges. A trivial
// component has a single member with no edges: a dead end.
type Component struct {
	Sides []handlegraph.Handle // sorted for deterministic processing
}

// Size returns the number of sides in the component.
func (c *Component) Size() int { return len(c.Sides) }

// IsTrivial reports whether the component is a single dead-end side with no
// edges. Trivial components are skipped downstream. A single side that
// carries a self-adjacent edge (a palindromic overlap) is not trivial.
func (c *Component) IsTrivial(g *handlegraph.Graph) bool {
	if len(c.Sides) != 1 {
		return false
	}
	trivial := true
	g.FollowEdges(c.Sides[0], false, func(handlegraph.Handle) bool {
		trivial = false
		return false
	})
	return trivial
}

// Components computes all adjacency components of the graph, one per
// union-find class over the 2N node sides.
func Components(g *handlegraph.Graph) []*Component {
	uf := newUnionFind()
	g.ForEachHandle(func(h handlegraph.Handle) bool {
		uf.add(h)
		uf.add(h.Flip())
		return true
	})
	g.ForEachEdge(func(e handlegraph.Edge) bool {
		uf.union(e.From, e.To.Flip())
		return true
	})

	byRoot := make(map[handlegraph.Handle][]handlegraph.Handle)
	for h := range uf.parent {
		root := uf.find(h)
		byRoot[root] = append(byRoot[root], h)
	}

	components := make([]*Component, 0, len(byRoot))
	for _, sides := range byRoot {
		sortHandles(sides)
		components = append(components, &Component{Sides: sides})
	}
	sort.Slice(components, func(i, j int) bool {
		return handleLess(components[i].Sides[0], components[j].Sides[0])
	})
	return components
}

type unionFind struct {
	parent map[handlegraph.Handle]handlegraph.Handle
	rank   map[handlegraph.Handle]int
}

func newUnionFind() *unionFind {
	return &unionFind{
		parent: make(map[handlegraph.Handle]handlegraph.Handle),
		rank:   make(map[handlegraph.Handle]int),
	}
}

func (u *unionFind) add(h handlegraph.Handle) {
	if _, ok := u.parent[h]; !ok {
		u.parent[h] = h
	}
}

func (u *unionFind) find(h handlegraph.Handle) handlegraph.Handle {
	for u.parent[h] != h {
		u.parent[h] = u.parent[u.parent[h]]
		h = u.parent[h]
	}
	return h
}

func (u *unionFind) union(a, b handlegraph.Handle) {
	u.add(a)
	u.add(b)
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}

func handleLess(a, b handlegraph.Handle) bool {
	if a.ID != b.ID {
		return a.ID < b.ID
	}
	return !a.Reverse && b.Reverse
}

func sortHandles(hs []handlegraph.Handle) {
	sort.Slice(hs, func(i, j int) bool { return handleLess(hs[i], hs[j]) })
}
